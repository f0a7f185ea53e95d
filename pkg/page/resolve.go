package page

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
)

// PollInterval is the pause between lookups while waiting for an element.
const PollInterval = 250 * time.Millisecond

// Resolve finds the element for loc, retrying until the session's implicit
// wait has elapsed. It fails with core.ErrElementNotFound no earlier than the
// wait bound. Errors other than "not found" are returned at once.
func Resolve(ctx context.Context, s core.Session, loc Locator) (*Element, error) {
	if s == nil {
		return nil, core.ErrNoSession
	}

	bound := s.ImplicitWait()
	start := time.Now()
	deadline := start.Add(bound)
	limiter := rate.NewLimiter(rate.Every(PollInterval), 1)
	limiter.Allow() // first lookup is immediate
	attempts := 0

	for {
		attempts++
		id, err := s.FindElement(ctx, string(loc.Strategy), loc.Value)
		if err == nil {
			return &Element{id: id, locator: loc, session: s}, nil
		}
		if !errors.Is(err, core.ErrElementNotFound) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			logger.Debug("Element %s not found after %d attempts in %s", loc, attempts, time.Since(start))
			return nil, core.ErrElementNotFound.
				WithMessagef("element %s not found within %s", loc, bound).
				WithDetails(map[string]interface{}{
					"strategy": string(loc.Strategy),
					"value":    loc.Value,
					"timeout":  bound.String(),
					"attempts": attempts,
				})
		}

		r := limiter.Reserve()
		delay := r.Delay()
		if delay > remaining {
			// Final lookup lands exactly on the deadline.
			r.Cancel()
			delay = remaining
		}
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
