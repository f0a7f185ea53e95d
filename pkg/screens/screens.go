// Package screens declares the page models of the donor app under test.
package screens

import (
	"context"

	"github.com/devicelab-dev/appium-steps/pkg/page"
)

// Page names as used in the catalog and in generic steps.
const (
	LoginPage  = "login"
	InicioPage = "inicio"
)

// Login screen fields.
const (
	EmailInput    = "emailInput"
	PasswordInput = "passwordInput"
	LoginButton   = "loginButton"
)

// Donor home screen fields.
const (
	CampanhasRecentes = "campanhasRecentes"
)

// LoginModel describes the login screen.
func LoginModel() *page.Model {
	return page.NewModel(LoginPage).
		Define(EmailInput, page.ByXPath(`//android.widget.EditText[@resource-id="ion-input-0"]`)).
		Define(PasswordInput, page.ByXPath(`//android.widget.EditText[@resource-id="ion-input-1"]`)).
		Define(LoginButton, page.ByXPath(`//android.widget.Button[@text="Entrar"]`))
}

// InicioModel describes the donor home screen.
func InicioModel() *page.Model {
	return page.NewModel(InicioPage).
		Define(CampanhasRecentes, page.ByXPath(`//android.widget.TextView[@text="Campanhas recentes"]`))
}

// Catalog returns every built-in screen.
func Catalog() *page.Catalog {
	return page.NewCatalog(LoginModel(), InicioModel())
}

// Login wraps a bound login page with typed accessors.
type Login struct {
	*page.Page
}

// NewLogin wraps p, a bound login page.
func NewLogin(p *page.Page) *Login {
	return &Login{Page: p}
}

func (l *Login) Email(ctx context.Context) (*page.Element, error) {
	return l.Element(ctx, EmailInput)
}

func (l *Login) Password(ctx context.Context) (*page.Element, error) {
	return l.Element(ctx, PasswordInput)
}

func (l *Login) Button(ctx context.Context) (*page.Element, error) {
	return l.Element(ctx, LoginButton)
}

// Inicio wraps a bound donor home page.
type Inicio struct {
	*page.Page
}

// NewInicio wraps p, a bound donor home page.
func NewInicio(p *page.Page) *Inicio {
	return &Inicio{Page: p}
}

func (i *Inicio) CampanhasRecentes(ctx context.Context) (*page.Element, error) {
	return i.Element(ctx, CampanhasRecentes)
}
