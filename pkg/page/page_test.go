package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/driver/appium"
	"github.com/devicelab-dev/appium-steps/pkg/driver/mock"
)

const emailXPath = `//android.widget.EditText[@resource-id="ion-input-0"]`

func openMock(t *testing.T, d *mock.Device) core.Session {
	t.Helper()
	s, err := mock.NewOpener(mock.Config{Device: d}).Open(context.Background(), core.Capabilities{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func loginModel() *Model {
	return NewModel("login").
		Define("emailInput", ByXPath(emailXPath)).
		Define("loginButton", ByXPath(`//android.widget.Button[@text="Entrar"]`))
}

func TestModel_Define(t *testing.T) {
	m := loginModel()
	if m.Name() != "login" {
		t.Errorf("Name() = %q", m.Name())
	}
	fields := m.Fields()
	if len(fields) != 2 || fields[0] != "emailInput" || fields[1] != "loginButton" {
		t.Errorf("Fields() = %v", fields)
	}
	loc, ok := m.Locator("emailInput")
	if !ok || loc.Strategy != XPath || loc.Value != emailXPath {
		t.Errorf("Locator = %+v, %v", loc, ok)
	}
	if _, ok := m.Locator("nope"); ok {
		t.Error("unexpected locator for unknown field")
	}
}

func TestModel_DefinePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"duplicate field", func() { loginModel().Define("emailInput", ByID("x")) }},
		{"unknown strategy", func() { NewModel("x").Define("f", Locator{Strategy: "css", Value: "a"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestPage_ElementResolvesFresh(t *testing.T) {
	d := mock.NewDevice()
	d.Add("xpath", emailXPath, mock.Element{})
	s := openMock(t, d)
	p := loginModel().Bind(s)
	ctx := context.Background()

	first, err := p.Element(ctx, "emailInput")
	if err != nil {
		t.Fatalf("Element failed: %v", err)
	}
	if err := first.SendKeys(ctx, "a@b.com"); err != nil {
		t.Fatalf("SendKeys failed: %v", err)
	}

	// Screen re-rendered: the old handle is stale, a fresh lookup works.
	d.Add("xpath", emailXPath, mock.Element{})
	if err := first.Click(ctx); !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("stale handle click = %v", err)
	}
	second, err := p.Element(ctx, "emailInput")
	if err != nil {
		t.Fatalf("second Element failed: %v", err)
	}
	if second.ID() == first.ID() {
		t.Error("expected a freshly resolved handle")
	}
	if second.Locator().Value != emailXPath {
		t.Errorf("Locator() = %v", second.Locator())
	}
	if d.FindCalls() != 2 {
		t.Errorf("FindCalls() = %d, want 2", d.FindCalls())
	}
}

func TestPage_UnknownField(t *testing.T) {
	p := loginModel().Bind(openMock(t, mock.NewDevice()))
	_, err := p.Element(context.Background(), "passwordInput")
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestResolve_NotFoundWaitsForBound(t *testing.T) {
	d := mock.NewDevice()
	s := openMock(t, d)
	bound := 600 * time.Millisecond
	if err := s.SetImplicitWait(context.Background(), bound); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := Resolve(context.Background(), s, ByXPath("//missing"))
	elapsed := time.Since(start)

	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if elapsed < bound {
		t.Errorf("gave up after %s, before the %s bound", elapsed, bound)
	}
	if elapsed > bound+PollInterval {
		t.Errorf("took %s, much longer than the %s bound", elapsed, bound)
	}
	if calls := d.FindCalls(); calls < 3 || calls > 5 {
		t.Errorf("FindCalls() = %d, want about bound/PollInterval+1", calls)
	}

	var execErr *core.ExecutionError
	if !errors.As(err, &execErr) || execErr.Details["value"] != "//missing" {
		t.Errorf("expected locator in details, got %+v", execErr)
	}
}

func TestResolve_AppearsWhileWaiting(t *testing.T) {
	d := mock.NewDevice()
	s := openMock(t, d)
	_ = s.SetImplicitWait(context.Background(), 2*time.Second)

	go func() {
		time.Sleep(300 * time.Millisecond)
		d.Add("xpath", "//late", mock.Element{})
	}()

	start := time.Now()
	el, err := Resolve(context.Background(), s, ByXPath("//late"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if el.ID() == "" {
		t.Error("empty element id")
	}
	if time.Since(start) > time.Second {
		t.Errorf("took %s to see a late element", time.Since(start))
	}
}

func TestResolve_ZeroWaitSingleAttempt(t *testing.T) {
	d := mock.NewDevice()
	s := openMock(t, d)
	_ = s.SetImplicitWait(context.Background(), 0)

	if _, err := Resolve(context.Background(), s, ByID("nope")); !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
	if d.FindCalls() != 1 {
		t.Errorf("FindCalls() = %d, want 1", d.FindCalls())
	}
}

func TestResolve_OtherErrorsNotRetried(t *testing.T) {
	d := mock.NewDevice()
	s := openMock(t, d)
	_ = s.Close()

	start := time.Now()
	_, err := Resolve(context.Background(), s, ByID("x"))
	if !errors.Is(err, core.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("closed session should fail immediately")
	}
}

func TestResolve_ContextCanceled(t *testing.T) {
	s := openMock(t, mock.NewDevice())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Resolve(ctx, s, ByID("x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline, got %v", err)
	}
}

func TestResolve_NilSession(t *testing.T) {
	if _, err := Resolve(context.Background(), nil, ByID("x")); !errors.Is(err, core.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

// Against a W3C server that never finds anything, the bound still holds.
func TestResolve_AppiumServerTiming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/session":
			_, _ = w.Write([]byte(`{"value":{"sessionId":"s1","capabilities":{"platformName":"Android"}}}`))
		case strings.HasSuffix(r.URL.Path, "/element"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"value":{"error":"no such element","message":"not found"}}`))
		default:
			_, _ = w.Write([]byte(`{"value":null}`))
		}
	}))
	defer server.Close()

	s, err := appium.NewOpener(server.URL).Open(context.Background(), core.Capabilities{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	bound := 500 * time.Millisecond
	_ = s.SetImplicitWait(context.Background(), bound)

	start := time.Now()
	_, err = loginModel().Bind(s).Element(context.Background(), "loginButton")
	elapsed := time.Since(start)

	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if elapsed < bound || elapsed > bound+PollInterval+200*time.Millisecond {
		t.Errorf("elapsed %s outside [%s, %s]", elapsed, bound, bound+PollInterval+200*time.Millisecond)
	}
	if !strings.Contains(err.Error(), "login.loginButton") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestCatalog(t *testing.T) {
	home := NewModel("inicio").Define("campanhasRecentes", ByXPath("//x"))
	c := NewCatalog(loginModel())
	c.Merge(NewCatalog(home))
	c.Merge(nil)

	if c.Len() != 2 {
		t.Errorf("Len() = %d", c.Len())
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "inicio" || names[1] != "login" {
		t.Errorf("Names() = %v", names)
	}
	if m, ok := c.Get("inicio"); !ok || m != home {
		t.Error("Get(inicio) failed")
	}
}

func TestParseCatalog(t *testing.T) {
	data := `
pages:
  login:
    emailInput:
      xpath: //android.widget.EditText[@resource-id="ion-input-0"]
    loginButton: //android.widget.Button[@text="Entrar"]
    help:
      accessibility id: help
`
	c, err := ParseCatalog([]byte(data), "pages.yaml")
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	m, ok := c.Get("login")
	if !ok {
		t.Fatal("login page missing")
	}
	fields := m.Fields()
	if strings.Join(fields, ",") != "emailInput,loginButton,help" {
		t.Errorf("Fields() = %v", fields)
	}
	if loc, _ := m.Locator("emailInput"); loc.Value != emailXPath {
		t.Errorf("emailInput = %+v", loc)
	}
	if loc, _ := m.Locator("loginButton"); loc.Strategy != XPath {
		t.Errorf("bare string should be xpath, got %+v", loc)
	}
	if loc, _ := m.Locator("help"); loc.Strategy != AccessibilityID {
		t.Errorf("help = %+v", loc)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "pages: ["},
		{"pages not mapping", "pages: [a, b]"},
		{"page not mapping", "pages:\n  login: x"},
		{"unknown strategy", "pages:\n  login:\n    f:\n      css: a"},
		{"two strategies", "pages:\n  login:\n    f:\n      xpath: a\n      id: b"},
		{"empty locator", "pages:\n  login:\n    f: ''"},
		{"duplicate field", "pages:\n  login:\n    f: //a\n    f: //b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.data), "pages.yaml"); !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.yaml")
	if err := os.WriteFile(path, []byte("pages:\n  inicio:\n    marker: //m\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if _, ok := c.Get("inicio"); !ok {
		t.Error("inicio missing")
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
