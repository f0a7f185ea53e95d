package steps

import (
	"context"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/page"
)

// Assertf returns ErrAssertionFailed with the message unless cond holds.
func Assertf(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	return core.ErrAssertionFailed.WithMessagef(format, args...)
}

// AssertDisplayed fails unless el is displayed.
func AssertDisplayed(ctx context.Context, el *page.Element) error {
	shown, err := el.IsDisplayed(ctx)
	if err != nil {
		return err
	}
	return Assertf(shown, "expected %s to be displayed", el.Locator())
}

// AssertText fails unless el's text equals want.
func AssertText(ctx context.Context, el *page.Element, want string) error {
	got, err := el.Text(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return core.ErrAssertionFailed.
			WithMessagef("expected %s to have text %q, got %q", el.Locator(), want, got).
			WithDetails(map[string]interface{}{"expected": want, "actual": got})
	}
	return nil
}
