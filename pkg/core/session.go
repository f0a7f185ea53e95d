// Package core provides the shared session contract, error taxonomy and result
// types for appium-steps.
package core

import (
	"context"
	"time"
)

// DefaultImplicitWait bounds how long element resolution polls before failing.
const DefaultImplicitWait = 20 * time.Second

// Session is a live connection to a device-automation backend.
// Implementations: Appium (W3C WebDriver), in-memory mock.
//
// FindElement performs a single lookup and returns ErrElementNotFound when the
// locator matches nothing right now; waiting up to ImplicitWait is done by the
// caller (see page.Resolve).
type Session interface {
	// ID returns the backend session identifier
	ID() string

	// Platform returns the platform reported by the backend (android, ios)
	Platform() string

	// SetImplicitWait configures the session-wide element wait bound
	SetImplicitWait(ctx context.Context, d time.Duration) error

	// ImplicitWait returns the configured element wait bound
	ImplicitWait() time.Duration

	// FindElement looks up one element by strategy and returns its backend id
	FindElement(ctx context.Context, using, value string) (string, error)

	ClickElement(ctx context.Context, elementID string) error
	SendKeys(ctx context.Context, elementID, text string) error
	ClearElement(ctx context.Context, elementID string) error
	ElementText(ctx context.Context, elementID string) (string, error)
	ElementAttribute(ctx context.Context, elementID, name string) (string, error)
	IsElementDisplayed(ctx context.Context, elementID string) (bool, error)
	IsElementEnabled(ctx context.Context, elementID string) (bool, error)

	// Source returns the current UI tree (XML for Appium)
	Source(ctx context.Context) (string, error)

	// Screenshot captures the current screen as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// Close ends the backend session
	Close() error
}

// Opener creates sessions. Only the session manager calls Open.
type Opener interface {
	Open(ctx context.Context, caps Capabilities) (Session, error)
}

// Capabilities are the backend connection parameters resolved from configuration.
type Capabilities struct {
	PlatformName    string
	AutomationName  string
	PlatformVersion string
	App             string

	// Extra holds additional vendor capabilities, already prefixed (e.g. "appium:noReset").
	Extra map[string]interface{}
}

// Map returns the W3C capability map sent in a new-session request.
func (c Capabilities) Map() map[string]interface{} {
	m := map[string]interface{}{
		"platformName":           c.PlatformName,
		"appium:automationName":  c.AutomationName,
		"appium:platformVersion": c.PlatformVersion,
		"appium:app":             c.App,
	}
	for k, v := range c.Extra {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return m
}

// Missing returns the names of required parameters that are empty.
func (c Capabilities) Missing() []string {
	var missing []string
	if c.PlatformName == "" {
		missing = append(missing, "platformName")
	}
	if c.AutomationName == "" {
		missing = append(missing, "automationName")
	}
	if c.PlatformVersion == "" {
		missing = append(missing, "platformVersion")
	}
	if c.App == "" {
		missing = append(missing, "app")
	}
	return missing
}
