package appium

import (
	"context"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
)

// DefaultServerURL is the fixed local Appium endpoint.
const DefaultServerURL = "http://localhost:4723/"

// closeTimeout bounds DELETE /session during teardown.
const closeTimeout = 30 * time.Second

// Opener opens Appium sessions against one server.
type Opener struct {
	serverURL string
}

// NewOpener creates an Opener. An empty serverURL selects DefaultServerURL.
func NewOpener(serverURL string) *Opener {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Opener{serverURL: serverURL}
}

// ServerURL returns the endpoint sessions are opened against.
func (o *Opener) ServerURL() string {
	return o.serverURL
}

// Open implements core.Opener.
func (o *Opener) Open(ctx context.Context, caps core.Capabilities) (core.Session, error) {
	client := NewClient(o.serverURL)
	if err := client.Connect(ctx, caps.Map()); err != nil {
		return nil, err
	}

	// Lookups are polled client-side against ImplicitWait; the server must
	// answer each lookup immediately.
	if err := client.SetImplicitWait(ctx, 0); err != nil {
		logger.Warn("could not reset server implicit wait: %v", err)
	}

	logger.Info("appium session %s opened on %s (platform %s)", client.SessionID(), o.serverURL, client.Platform())
	return &Session{client: client, implicitWait: core.DefaultImplicitWait}, nil
}

// Session implements core.Session over an Appium client.
type Session struct {
	client       *Client
	implicitWait time.Duration
}

// ID implements core.Session.
func (s *Session) ID() string {
	return s.client.SessionID()
}

// Platform implements core.Session.
func (s *Session) Platform() string {
	return s.client.Platform()
}

// SetImplicitWait implements core.Session.
func (s *Session) SetImplicitWait(_ context.Context, d time.Duration) error {
	if d < 0 {
		d = 0
	}
	s.implicitWait = d
	return nil
}

// ImplicitWait implements core.Session.
func (s *Session) ImplicitWait() time.Duration {
	return s.implicitWait
}

// FindElement implements core.Session.
func (s *Session) FindElement(ctx context.Context, using, value string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.client.FindElement(ctx, using, value)
}

// ClickElement implements core.Session.
func (s *Session) ClickElement(ctx context.Context, elementID string) error {
	if err := s.live(); err != nil {
		return err
	}
	return s.client.ClickElement(ctx, elementID)
}

// SendKeys implements core.Session.
func (s *Session) SendKeys(ctx context.Context, elementID, text string) error {
	if err := s.live(); err != nil {
		return err
	}
	return s.client.SendElementKeys(ctx, elementID, text)
}

// ClearElement implements core.Session.
func (s *Session) ClearElement(ctx context.Context, elementID string) error {
	if err := s.live(); err != nil {
		return err
	}
	return s.client.ClearElement(ctx, elementID)
}

// ElementText implements core.Session.
func (s *Session) ElementText(ctx context.Context, elementID string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.client.GetElementText(ctx, elementID)
}

// ElementAttribute implements core.Session.
func (s *Session) ElementAttribute(ctx context.Context, elementID, name string) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.client.GetElementAttribute(ctx, elementID, name)
}

// IsElementDisplayed implements core.Session.
func (s *Session) IsElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	if err := s.live(); err != nil {
		return false, err
	}
	return s.client.IsElementDisplayed(ctx, elementID)
}

// IsElementEnabled implements core.Session.
func (s *Session) IsElementEnabled(ctx context.Context, elementID string) (bool, error) {
	if err := s.live(); err != nil {
		return false, err
	}
	return s.client.IsElementEnabled(ctx, elementID)
}

// Source implements core.Session.
func (s *Session) Source(ctx context.Context) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}
	return s.client.Source(ctx)
}

// Screenshot implements core.Session.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	return s.client.Screenshot(ctx)
}

// Close implements core.Session. Closing twice is a no-op.
func (s *Session) Close() error {
	id := s.client.SessionID()
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := s.client.Disconnect(ctx)
	if err != nil {
		logger.Warn("appium session %s close failed: %v", id, err)
	} else {
		logger.Info("appium session %s closed", id)
	}
	return err
}

func (s *Session) live() error {
	if s.client.SessionID() == "" {
		return core.ErrNoSession
	}
	return nil
}
