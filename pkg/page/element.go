package page

import (
	"context"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// Element is a live handle to one resolved UI element. It is only valid
// until the UI tree changes; callers resolve again instead of keeping it.
type Element struct {
	id      string
	locator Locator
	session core.Session
}

// ID returns the backend element id.
func (e *Element) ID() string { return e.id }

// Locator returns the locator the element was resolved from.
func (e *Element) Locator() Locator { return e.locator }

func (e *Element) Click(ctx context.Context) error {
	return e.session.ClickElement(ctx, e.id)
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.session.SendKeys(ctx, e.id, text)
}

func (e *Element) Clear(ctx context.Context) error {
	return e.session.ClearElement(ctx, e.id)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.session.ElementText(ctx, e.id)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.session.ElementAttribute(ctx, e.id, name)
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return e.session.IsElementDisplayed(ctx, e.id)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	return e.session.IsElementEnabled(ctx, e.id)
}
