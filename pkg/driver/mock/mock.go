// Package mock provides an in-memory automation backend for testing without a real device.
package mock

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// Element describes one UI element on the fake device.
type Element struct {
	Text       string
	Hidden     bool
	Disabled   bool
	Attributes map[string]string

	// OnClick runs after the element is clicked; use it to navigate screens.
	OnClick func(d *Device)
}

type locatorKey struct {
	using string
	value string
}

type node struct {
	id    string
	key   locatorKey
	el    Element
	typed string
	click int
}

// Device is a mutable fake UI tree shared by all sessions opened against it.
type Device struct {
	mu     sync.Mutex
	nodes  map[locatorKey]*node
	byID   map[string]*node
	nextID int
	finds  int
}

// NewDevice creates an empty device.
func NewDevice() *Device {
	return &Device{
		nodes: make(map[locatorKey]*node),
		byID:  make(map[string]*node),
	}
}

// Add places an element on screen, replacing any element with the same locator.
func (d *Device) Add(using, value string, el Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := locatorKey{using, value}
	if old, ok := d.nodes[key]; ok {
		delete(d.byID, old.id)
	}
	d.nextID++
	n := &node{id: fmt.Sprintf("mock-%d", d.nextID), key: key, el: el}
	d.nodes[key] = n
	d.byID[n.id] = n
}

// Remove takes an element off screen. Handles to it become stale.
func (d *Device) Remove(using, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := locatorKey{using, value}
	if n, ok := d.nodes[key]; ok {
		delete(d.byID, n.id)
		delete(d.nodes, key)
	}
}

// Clear removes every element, as when the app navigates to a new screen.
func (d *Device) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nodes = make(map[locatorKey]*node)
	d.byID = make(map[string]*node)
}

// Typed returns the text typed into the element at the locator.
func (d *Device) Typed(using, value string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.nodes[locatorKey{using, value}]; ok {
		return n.typed
	}
	return ""
}

// Clicks returns how many times the element at the locator was clicked.
func (d *Device) Clicks(using, value string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.nodes[locatorKey{using, value}]; ok {
		return n.click
	}
	return 0
}

// FindCalls returns the number of element lookups served.
func (d *Device) FindCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}

func (d *Device) find(using, value string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.finds++
	if n, ok := d.nodes[locatorKey{using, value}]; ok {
		return n.id, nil
	}
	return "", core.ErrElementNotFound.WithMessagef("element not found: %s=%s", using, value)
}

// withNode runs fn on the element with id; stale ids fail like Appium does.
func (d *Device) withNode(id string, fn func(n *node)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.byID[id]
	if !ok {
		return core.ErrElementNotFound.WithMessagef("stale element reference: %s", id)
	}
	fn(n)
	return nil
}

func (d *Device) source() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("<hierarchy>")
	for _, id := range ids {
		n := d.byID[id]
		fmt.Fprintf(&b, `<node id=%q using=%q value=%q text=%q displayed="%t"/>`,
			n.id, n.key.using, html.EscapeString(n.key.value), n.el.Text, !n.el.Hidden)
	}
	b.WriteString("</hierarchy>")
	return b.String()
}

// Config configures mock backend behavior.
type Config struct {
	// Device is the UI tree sessions operate on. Nil creates an empty device.
	Device *Device
	// FailOpen makes every Open fail with this error.
	FailOpen error
	// OpenDelay adds artificial delay to session creation
	OpenDelay time.Duration
	// Platform to report
	Platform string
}

// Opener is a core.Opener that counts the sessions it opens.
type Opener struct {
	config Config

	mu       sync.Mutex
	sessions []*Session
	lastCaps core.Capabilities
}

// NewOpener creates a new mock opener.
func NewOpener(cfg Config) *Opener {
	if cfg.Device == nil {
		cfg.Device = NewDevice()
	}
	if cfg.Platform == "" {
		cfg.Platform = "android"
	}
	return &Opener{config: cfg}
}

// Device returns the fake UI tree.
func (o *Opener) Device() *Device {
	return o.config.Device
}

// Open implements core.Opener.
func (o *Opener) Open(ctx context.Context, caps core.Capabilities) (core.Session, error) {
	if o.config.OpenDelay > 0 {
		select {
		case <-time.After(o.config.OpenDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if o.config.FailOpen != nil {
		return nil, o.config.FailOpen
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s := &Session{
		id:           fmt.Sprintf("mock-session-%d", len(o.sessions)+1),
		platform:     o.config.Platform,
		device:       o.config.Device,
		implicitWait: core.DefaultImplicitWait,
	}
	o.sessions = append(o.sessions, s)
	o.lastCaps = caps
	return s, nil
}

// Opened returns how many sessions were opened.
func (o *Opener) Opened() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// Sessions returns the opened sessions in order.
func (o *Opener) Sessions() []*Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Session(nil), o.sessions...)
}

// LastCapabilities returns the capabilities of the most recent Open.
func (o *Opener) LastCapabilities() core.Capabilities {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastCaps
}

// Session is an in-memory core.Session.
type Session struct {
	id       string
	platform string
	device   *Device

	mu           sync.Mutex
	implicitWait time.Duration
	closed       bool
}

// ID implements core.Session.
func (s *Session) ID() string { return s.id }

// Platform implements core.Session.
func (s *Session) Platform() string { return s.platform }

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetImplicitWait implements core.Session.
func (s *Session) SetImplicitWait(_ context.Context, d time.Duration) error {
	if err := s.live(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.implicitWait = d
	return nil
}

// ImplicitWait implements core.Session.
func (s *Session) ImplicitWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitWait
}

// FindElement implements core.Session.
func (s *Session) FindElement(_ context.Context, using, value string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.device.find(using, value)
}

// ClickElement implements core.Session.
func (s *Session) ClickElement(_ context.Context, elementID string) error {
	if err := s.live(); err != nil {
		return err
	}
	var onClick func(d *Device)
	err := s.device.withNode(elementID, func(n *node) {
		n.click++
		onClick = n.el.OnClick
	})
	if err != nil {
		return err
	}
	if onClick != nil {
		onClick(s.device)
	}
	return nil
}

// SendKeys implements core.Session.
func (s *Session) SendKeys(_ context.Context, elementID, text string) error {
	if err := s.live(); err != nil {
		return err
	}
	return s.device.withNode(elementID, func(n *node) {
		n.typed += text
	})
}

// ClearElement implements core.Session.
func (s *Session) ClearElement(_ context.Context, elementID string) error {
	if err := s.live(); err != nil {
		return err
	}
	return s.device.withNode(elementID, func(n *node) {
		n.typed = ""
	})
}

// ElementText implements core.Session.
func (s *Session) ElementText(_ context.Context, elementID string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	var text string
	err := s.device.withNode(elementID, func(n *node) {
		text = n.el.Text
		if n.typed != "" {
			text = n.typed
		}
	})
	return text, err
}

// ElementAttribute implements core.Session.
func (s *Session) ElementAttribute(_ context.Context, elementID, name string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	var value string
	err := s.device.withNode(elementID, func(n *node) {
		value = n.el.Attributes[name]
	})
	return value, err
}

// IsElementDisplayed implements core.Session.
func (s *Session) IsElementDisplayed(_ context.Context, elementID string) (bool, error) {
	if err := s.live(); err != nil {
		return false, err
	}
	var displayed bool
	err := s.device.withNode(elementID, func(n *node) {
		displayed = !n.el.Hidden
	})
	return displayed, err
}

// IsElementEnabled implements core.Session.
func (s *Session) IsElementEnabled(_ context.Context, elementID string) (bool, error) {
	if err := s.live(); err != nil {
		return false, err
	}
	var enabled bool
	err := s.device.withNode(elementID, func(n *node) {
		enabled = !n.el.Disabled
	})
	return enabled, err
}

// Source implements core.Session.
func (s *Session) Source(_ context.Context) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.device.source(), nil
}

// Screenshot returns a mock PNG image.
func (s *Session) Screenshot(_ context.Context) ([]byte, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	// Minimal valid PNG (1x1 transparent pixel)
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// Close implements core.Session. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) live() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrNoSession
	}
	return nil
}
