package screens

import (
	"github.com/devicelab-dev/appium-steps/pkg/driver/mock"
	"github.com/devicelab-dev/appium-steps/pkg/page"
)

// NewFakeApp returns a mock device showing the login screen. Tapping the
// login button with both fields filled navigates to the donor home screen.
func NewFakeApp() *mock.Device {
	d := mock.NewDevice()
	ShowLogin(d)
	return d
}

// ShowLogin puts the login screen on d.
func ShowLogin(d *mock.Device) {
	d.Clear()
	email := locatorOf(LoginModel(), EmailInput)
	password := locatorOf(LoginModel(), PasswordInput)
	button := locatorOf(LoginModel(), LoginButton)

	d.Add(string(email.Strategy), email.Value, mock.Element{Attributes: map[string]string{"resource-id": "ion-input-0"}})
	d.Add(string(password.Strategy), password.Value, mock.Element{Attributes: map[string]string{"resource-id": "ion-input-1"}})
	d.Add(string(button.Strategy), button.Value, mock.Element{
		Text: "Entrar",
		OnClick: func(d *mock.Device) {
			if d.Typed(string(email.Strategy), email.Value) == "" || d.Typed(string(password.Strategy), password.Value) == "" {
				return
			}
			ShowInicio(d)
		},
	})
}

// ShowInicio puts the donor home screen on d.
func ShowInicio(d *mock.Device) {
	d.Clear()
	marker := locatorOf(InicioModel(), CampanhasRecentes)
	d.Add(string(marker.Strategy), marker.Value, mock.Element{Text: "Campanhas recentes"})
}

func locatorOf(m *page.Model, field string) page.Locator {
	loc, _ := m.Locator(field)
	return loc
}
