package page

import (
	"context"
	"fmt"
	"sort"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// Model is a named set of locators for one logical screen. It holds no
// session state.
type Model struct {
	name     string
	fields   []string
	locators map[string]Locator
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{name: name, locators: make(map[string]Locator)}
}

// Define adds a field. Models are declared once at startup, so a duplicate
// field or an unknown strategy is a programming error and panics.
func (m *Model) Define(field string, loc Locator) *Model {
	if _, exists := m.locators[field]; exists {
		panic(fmt.Sprintf("page %s: field %q defined twice", m.name, field))
	}
	if !loc.Strategy.Valid() {
		panic(fmt.Sprintf("page %s: field %q: unknown strategy %q", m.name, field, loc.Strategy))
	}
	m.fields = append(m.fields, field)
	m.locators[field] = loc
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Fields returns field names in declaration order.
func (m *Model) Fields() []string {
	return append([]string(nil), m.fields...)
}

// Locator returns the locator declared for field.
func (m *Model) Locator(field string) (Locator, bool) {
	loc, ok := m.locators[field]
	return loc, ok
}

// Bind attaches the model to a session. It does not check that the screen is
// currently visible.
func (m *Model) Bind(s core.Session) *Page {
	return &Page{model: m, session: s}
}

// Page is a model bound to a live session.
type Page struct {
	model   *Model
	session core.Session
}

// Model returns the underlying model.
func (p *Page) Model() *Model { return p.model }

// Element resolves field against the current UI tree. Every call resolves
// afresh; handles are never cached.
func (p *Page) Element(ctx context.Context, field string) (*Element, error) {
	loc, ok := p.model.Locator(field)
	if !ok {
		return nil, core.ErrConfiguration.WithMessagef("page %s has no element %q", p.model.name, field).
			WithDetails(map[string]interface{}{"page": p.model.name, "field": field})
	}
	el, err := Resolve(ctx, p.session, loc)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", p.model.name, field, err)
	}
	return el, nil
}

// Catalog groups models by name.
type Catalog struct {
	models map[string]*Model
}

// NewCatalog creates a catalog holding models.
func NewCatalog(models ...*Model) *Catalog {
	c := &Catalog{models: make(map[string]*Model)}
	for _, m := range models {
		c.Add(m)
	}
	return c
}

// Add registers m, replacing any model with the same name.
func (c *Catalog) Add(m *Model) {
	c.models[m.name] = m
}

// Get returns the model called name.
func (c *Catalog) Get(name string) (*Model, bool) {
	m, ok := c.models[name]
	return m, ok
}

// Names returns model names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.models))
	for n := range c.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Merge adds every model of other, overriding same-named models.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for _, m := range other.models {
		c.Add(m)
	}
}

// Len returns the number of models.
func (c *Catalog) Len() int { return len(c.models) }
