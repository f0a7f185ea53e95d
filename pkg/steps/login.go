package steps

import (
	"context"

	"github.com/devicelab-dev/appium-steps/pkg/screens"
)

func loginScreen(w *World) (*screens.Login, error) {
	p, err := w.Page(screens.LoginPage)
	if err != nil {
		return nil, err
	}
	return screens.NewLogin(p), nil
}

func inicioScreen(w *World) (*screens.Inicio, error) {
	p, err := w.Page(screens.InicioPage)
	if err != nil {
		return nil, err
	}
	return screens.NewInicio(p), nil
}

// RegisterLogin adds the donor app login flow steps.
func RegisterLogin(r *Registry) {
	r.Given("que estou na tela de login", func(ctx context.Context, w *World, _ Args) error {
		login, err := loginScreen(w)
		if err != nil {
			return err
		}
		el, err := login.Email(ctx)
		if err != nil {
			return err
		}
		return AssertDisplayed(ctx, el)
	})

	r.When("digito os campos de email {string} e senha {string}", func(ctx context.Context, w *World, args Args) error {
		login, err := loginScreen(w)
		if err != nil {
			return err
		}
		email, err := login.Email(ctx)
		if err != nil {
			return err
		}
		if err := email.SendKeys(ctx, args.String(0)); err != nil {
			return err
		}
		password, err := login.Password(ctx)
		if err != nil {
			return err
		}
		return password.SendKeys(ctx, args.String(1))
	})

	r.When("clico no botao Entrar", func(ctx context.Context, w *World, _ Args) error {
		login, err := loginScreen(w)
		if err != nil {
			return err
		}
		el, err := login.Button(ctx)
		if err != nil {
			return err
		}
		return el.Click(ctx)
	})

	r.Then("sou redirecionado para a tela inicio do doador", func(ctx context.Context, w *World, _ Args) error {
		inicio, err := inicioScreen(w)
		if err != nil {
			return err
		}
		el, err := inicio.CampanhasRecentes(ctx)
		if err != nil {
			return err
		}
		return AssertDisplayed(ctx, el)
	})
}
