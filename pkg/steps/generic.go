package steps

import "context"

// RegisterGeneric adds steps that work with any page in the catalog.
// Arguments name the element field first, then the screen.
func RegisterGeneric(r *Registry) {
	r.Then("the {string} element on the {string} screen is displayed", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(1), args.String(0))
		if err != nil {
			return err
		}
		return AssertDisplayed(ctx, el)
	})

	r.When("I tap the {string} element on the {string} screen", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(1), args.String(0))
		if err != nil {
			return err
		}
		return el.Click(ctx)
	})

	r.When("I type {string} into the {string} element on the {string} screen", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(2), args.String(1))
		if err != nil {
			return err
		}
		return el.SendKeys(ctx, args.String(0))
	})

	// The text comes from the step's doc string.
	r.When("I type the following into the {string} element on the {string} screen:", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(1), args.String(0))
		if err != nil {
			return err
		}
		return el.SendKeys(ctx, args.String(2))
	})

	r.When("I clear the {string} element on the {string} screen", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(1), args.String(0))
		if err != nil {
			return err
		}
		return el.Clear(ctx)
	})

	r.Then("the {string} element on the {string} screen has text {string}", func(ctx context.Context, w *World, args Args) error {
		el, err := w.Element(ctx, args.String(1), args.String(0))
		if err != nil {
			return err
		}
		return AssertText(ctx, el, args.String(2))
	})
}

// Default returns a registry with every built-in step.
func Default() *Registry {
	r := NewRegistry()
	RegisterLogin(r)
	RegisterGeneric(r)
	return r
}
