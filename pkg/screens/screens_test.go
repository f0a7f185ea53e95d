package screens

import (
	"context"
	"testing"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/driver/mock"
)

func TestCatalog(t *testing.T) {
	c := Catalog()
	for _, name := range []string{LoginPage, InicioPage} {
		if _, ok := c.Get(name); !ok {
			t.Errorf("catalog missing %s", name)
		}
	}
	login, _ := c.Get(LoginPage)
	if loc, _ := login.Locator(PasswordInput); loc.Value != `//android.widget.EditText[@resource-id="ion-input-1"]` {
		t.Errorf("passwordInput = %+v", loc)
	}
}

func TestFakeApp_LoginFlow(t *testing.T) {
	ctx := context.Background()
	d := NewFakeApp()
	s, err := mock.NewOpener(mock.Config{Device: d}).Open(ctx, core.Capabilities{})
	if err != nil {
		t.Fatal(err)
	}
	login := NewLogin(LoginModel().Bind(s))

	email, err := login.Email(ctx)
	if err != nil {
		t.Fatalf("Email: %v", err)
	}
	_ = email.SendKeys(ctx, "a@b.com")
	password, err := login.Password(ctx)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}
	_ = password.SendKeys(ctx, "pw")
	button, err := login.Button(ctx)
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	if err := button.Click(ctx); err != nil {
		t.Fatalf("Click: %v", err)
	}

	marker, err := NewInicio(InicioModel().Bind(s)).CampanhasRecentes(ctx)
	if err != nil {
		t.Fatalf("home marker: %v", err)
	}
	if shown, _ := marker.IsDisplayed(ctx); !shown {
		t.Error("home marker not displayed")
	}
}

func TestFakeApp_EmptyFieldsStayOnLogin(t *testing.T) {
	ctx := context.Background()
	d := NewFakeApp()
	s, _ := mock.NewOpener(mock.Config{Device: d}).Open(ctx, core.Capabilities{})

	button, err := NewLogin(LoginModel().Bind(s)).Button(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_ = button.Click(ctx)

	if _, err := NewLogin(LoginModel().Bind(s)).Button(ctx); err != nil {
		t.Errorf("should still be on login: %v", err)
	}
}
