package steps

import (
	"context"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/page"
)

// Acquirer hands out the shared session. *session.Manager implements it.
type Acquirer interface {
	Acquire(ctx context.Context) (core.Session, error)
}

// WorldConfig configures a scenario world.
type WorldConfig struct {
	Manager      Acquirer
	Catalog      *page.Catalog
	ImplicitWait time.Duration // 0 uses core.DefaultImplicitWait
}

// World is the per-scenario execution state shared by step handlers.
type World struct {
	session core.Session
	pages   map[string]*page.Page
}

// NewWorld acquires the shared session, sets the implicit wait and binds every
// page in the catalog. Call it once per scenario.
func NewWorld(ctx context.Context, cfg WorldConfig) (*World, error) {
	if cfg.Manager == nil {
		return nil, core.ErrNoSession.WithMessage("no session manager")
	}
	s, err := cfg.Manager.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	wait := cfg.ImplicitWait
	if wait == 0 {
		wait = core.DefaultImplicitWait
	}
	if err := s.SetImplicitWait(ctx, wait); err != nil {
		return nil, err
	}

	w := &World{
		session: s,
		pages:   make(map[string]*page.Page),
	}
	if cfg.Catalog != nil {
		for _, name := range cfg.Catalog.Names() {
			m, _ := cfg.Catalog.Get(name)
			w.pages[name] = m.Bind(s)
		}
	}
	return w, nil
}

// Session returns the shared session.
func (w *World) Session() core.Session { return w.session }

// Page returns the bound page called name.
func (w *World) Page(name string) (*page.Page, error) {
	p, ok := w.pages[name]
	if !ok {
		return nil, core.ErrConfiguration.WithMessagef("unknown screen %q", name)
	}
	return p, nil
}

// Element resolves field on the named page.
func (w *World) Element(ctx context.Context, pageName, field string) (*page.Element, error) {
	p, err := w.Page(pageName)
	if err != nil {
		return nil, err
	}
	return p.Element(ctx, field)
}
