package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/config"
	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/driver/mock"
	"github.com/devicelab-dev/appium-steps/pkg/page"
	"github.com/devicelab-dev/appium-steps/pkg/screens"
	"github.com/devicelab-dev/appium-steps/pkg/session"
)

const props = `
appium.platformName=Android
appium.automationName=UiAutomator2
appium.platformVersion=14
appium.app=/apps/doador.apk
`

func newWorld(t *testing.T, d *mock.Device, wait time.Duration) (*World, *mock.Opener) {
	t.Helper()
	cfg, err := config.Parse([]byte(props), "test.properties")
	if err != nil {
		t.Fatal(err)
	}
	opener := mock.NewOpener(mock.Config{Device: d})
	w, err := NewWorld(context.Background(), WorldConfig{
		Manager:      session.NewManager(opener, cfg),
		Catalog:      screens.Catalog(),
		ImplicitWait: wait,
	})
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	return w, opener
}

func run(ctx context.Context, t *testing.T, r *Registry, w *World, text string) error {
	t.Helper()
	def, args, err := r.Match(text)
	if err != nil {
		t.Fatalf("Match(%q): %v", text, err)
	}
	return def.Handler(ctx, w, args)
}

func TestNewWorld(t *testing.T) {
	w, opener := newWorld(t, mock.NewDevice(), 0)

	if w.Session().ImplicitWait() != core.DefaultImplicitWait {
		t.Errorf("ImplicitWait = %s, want default", w.Session().ImplicitWait())
	}
	for _, name := range []string{screens.LoginPage, screens.InicioPage} {
		if _, err := w.Page(name); err != nil {
			t.Errorf("Page(%s): %v", name, err)
		}
	}
	if _, err := w.Page("checkout"); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if opener.Opened() != 1 {
		t.Errorf("opened %d", opener.Opened())
	}
}

func TestNewWorld_SharesSession(t *testing.T) {
	cfg, _ := config.Parse([]byte(props), "test.properties")
	opener := mock.NewOpener(mock.Config{})
	m := session.NewManager(opener, cfg)

	w1, err := NewWorld(context.Background(), WorldConfig{Manager: m, Catalog: page.NewCatalog()})
	if err != nil {
		t.Fatal(err)
	}
	w2, _ := NewWorld(context.Background(), WorldConfig{Manager: m})
	if w1.Session() != w2.Session() || opener.Opened() != 1 {
		t.Error("worlds should share one session")
	}
}

func TestNewWorld_Errors(t *testing.T) {
	if _, err := NewWorld(context.Background(), WorldConfig{}); !errors.Is(err, core.ErrNoSession) {
		t.Errorf("nil manager: %v", err)
	}

	m := session.NewManager(mock.NewOpener(mock.Config{FailOpen: core.ErrServerUnreachable}), nil)
	_, err := NewWorld(context.Background(), WorldConfig{Manager: m})
	if !errors.Is(err, core.ErrSessionCreation) {
		t.Errorf("expected ErrSessionCreation, got %v", err)
	}
}

func TestLoginSteps_HappyPath(t *testing.T) {
	ctx := context.Background()
	d := screens.NewFakeApp()
	w, opener := newWorld(t, d, 500*time.Millisecond)
	r := Default()

	for _, text := range []string{
		"que estou na tela de login",
		`digito os campos de email "a@b.com" e senha "pw"`,
		"clico no botao Entrar",
		"sou redirecionado para a tela inicio do doador",
	} {
		if err := run(ctx, t, r, w, text); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
	}
	if opener.Opened() != 1 {
		t.Errorf("opened %d sessions", opener.Opened())
	}
}

func TestLoginSteps_TypesIntoFields(t *testing.T) {
	ctx := context.Background()
	d := screens.NewFakeApp()
	w, _ := newWorld(t, d, 200*time.Millisecond)

	if err := run(ctx, t, Default(), w, `digito os campos de email "a@b.com" e senha "pw"`); err != nil {
		t.Fatal(err)
	}
	login := screens.LoginModel()
	email, _ := login.Locator(screens.EmailInput)
	password, _ := login.Locator(screens.PasswordInput)
	if got := d.Typed(string(email.Strategy), email.Value); got != "a@b.com" {
		t.Errorf("email typed = %q", got)
	}
	if got := d.Typed(string(password.Strategy), password.Value); got != "pw" {
		t.Errorf("password typed = %q", got)
	}
}

func TestLoginSteps_NotOnLoginScreen(t *testing.T) {
	d := mock.NewDevice()
	screens.ShowInicio(d)
	w, _ := newWorld(t, d, 200*time.Millisecond)

	err := run(context.Background(), t, Default(), w, "que estou na tela de login")
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
}

func TestLoginSteps_HiddenField(t *testing.T) {
	d := mock.NewDevice()
	loc, _ := screens.LoginModel().Locator(screens.EmailInput)
	d.Add(string(loc.Strategy), loc.Value, mock.Element{Hidden: true})
	w, _ := newWorld(t, d, 200*time.Millisecond)

	err := run(context.Background(), t, Default(), w, "que estou na tela de login")
	if !errors.Is(err, core.ErrAssertionFailed) {
		t.Errorf("expected ErrAssertionFailed, got %v", err)
	}
}

func TestGenericSteps(t *testing.T) {
	ctx := context.Background()
	d := screens.NewFakeApp()
	w, _ := newWorld(t, d, 200*time.Millisecond)
	r := Default()

	steps := []string{
		`the "emailInput" element on the "login" screen is displayed`,
		`I type "a@b.com" into the "emailInput" element on the "login" screen`,
		`the "emailInput" element on the "login" screen has text "a@b.com"`,
		`I clear the "emailInput" element on the "login" screen`,
		`I type "a@b.com" into the "emailInput" element on the "login" screen`,
		`I type "pw" into the "passwordInput" element on the "login" screen`,
		`I tap the "loginButton" element on the "login" screen`,
		`the "campanhasRecentes" element on the "inicio" screen has text "Campanhas recentes"`,
	}
	for _, text := range steps {
		if err := run(ctx, t, r, w, text); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
	}

	err := run(ctx, t, r, w, `the "campanhasRecentes" element on the "inicio" screen has text "Outro"`)
	if !errors.Is(err, core.ErrAssertionFailed) {
		t.Errorf("expected ErrAssertionFailed, got %v", err)
	}
	err = run(ctx, t, r, w, `I tap the "x" element on the "checkout" screen`)
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestAssertf(t *testing.T) {
	if err := Assertf(true, "never"); err != nil {
		t.Errorf("Assertf(true) = %v", err)
	}
	err := Assertf(false, "expected %d", 1)
	if !errors.Is(err, core.ErrAssertionFailed) || err.Error() != "expected 1" {
		t.Errorf("Assertf(false) = %v", err)
	}
}
