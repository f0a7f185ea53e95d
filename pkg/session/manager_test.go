package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/devicelab-dev/appium-steps/pkg/config"
	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/driver/mock"
)

const validProperties = `
appium.platformName=Android
appium.automationName=UiAutomator2
appium.platformVersion=14
appium.app=/apps/doador.apk
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(validProperties), "test.properties")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

type capsFunc func() (core.Capabilities, error)

func (f capsFunc) Capabilities() (core.Capabilities, error) { return f() }

type failingCloseSession struct {
	core.Session
}

func (failingCloseSession) Close() error { return errors.New("socket closed") }
func (failingCloseSession) ID() string   { return "broken" }

type failingCloseOpener struct{}

func (failingCloseOpener) Open(context.Context, core.Capabilities) (core.Session, error) {
	return failingCloseSession{}, nil
}

func TestAcquire_Idempotent(t *testing.T) {
	opener := mock.NewOpener(mock.Config{})
	m := NewManager(opener, testConfig(t))
	ctx := context.Background()

	first, err := m.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		s, err := m.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire #%d failed: %v", i, err)
		}
		if s != first {
			t.Fatalf("Acquire #%d returned a different session", i)
		}
	}

	if opener.Opened() != 1 {
		t.Errorf("opened %d sessions, want 1", opener.Opened())
	}
	if !m.Active() {
		t.Error("Active() = false after Acquire")
	}
	if got := opener.LastCapabilities().App; got != "/apps/doador.apk" {
		t.Errorf("app capability = %q", got)
	}
}

func TestAcquire_ConcurrentOpensOnce(t *testing.T) {
	opener := mock.NewOpener(mock.Config{})
	m := NewManager(opener, testConfig(t))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if opener.Opened() != 1 {
		t.Errorf("opened %d sessions, want 1", opener.Opened())
	}
}

func TestRelease_NoSession(t *testing.T) {
	m := NewManager(mock.NewOpener(mock.Config{}), testConfig(t))
	if err := m.Release(); err != nil {
		t.Errorf("Release without Acquire = %v, want nil", err)
	}
	if err := m.Release(); err != nil {
		t.Errorf("second Release = %v, want nil", err)
	}
	if m.Active() {
		t.Error("Active() = true")
	}
}

func TestRelease_ThenAcquireReopens(t *testing.T) {
	opener := mock.NewOpener(mock.Config{})
	m := NewManager(opener, testConfig(t))
	ctx := context.Background()

	first, _ := m.Acquire(ctx)
	if err := m.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !opener.Sessions()[0].Closed() {
		t.Error("released session was not closed")
	}

	second, err := m.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after Release failed: %v", err)
	}
	if second == first {
		t.Error("session reused across release boundary")
	}
	if opener.Opened() != 2 || m.Opened() != 2 {
		t.Errorf("opened = %d/%d, want 2", opener.Opened(), m.Opened())
	}
}

func TestAcquire_Failures(t *testing.T) {
	tests := []struct {
		name   string
		opener core.Opener
		source CapabilitySource
		cause  error
	}{
		{
			name:   "nil configuration",
			opener: mock.NewOpener(mock.Config{}),
			source: nil,
			cause:  core.ErrConfiguration,
		},
		{
			name:   "incomplete configuration",
			opener: mock.NewOpener(mock.Config{}),
			source: capsFunc(func() (core.Capabilities, error) {
				return core.Capabilities{}, core.ErrConfiguration.WithMessage("missing appium.app")
			}),
			cause: core.ErrConfiguration,
		},
		{
			name:   "backend unreachable",
			opener: mock.NewOpener(mock.Config{FailOpen: core.ErrServerUnreachable}),
			source: capsFunc(func() (core.Capabilities, error) { return core.Capabilities{App: "x"}, nil }),
			cause:  core.ErrServerUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.opener, tt.source)
			s, err := m.Acquire(context.Background())
			if s != nil {
				t.Error("expected no session")
			}
			if !errors.Is(err, core.ErrSessionCreation) {
				t.Errorf("expected ErrSessionCreation, got %v", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}
			if !core.IsFatal(err) {
				t.Error("session creation failure should be fatal")
			}
			if m.Active() {
				t.Error("Active() = true after failed Acquire")
			}
		})
	}
}

func TestRelease_CloseErrorClearsReference(t *testing.T) {
	m := NewManager(failingCloseOpener{}, capsFunc(func() (core.Capabilities, error) {
		return core.Capabilities{}, nil
	}))
	if _, err := m.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(); err == nil {
		t.Error("expected close error")
	}
	if m.Active() {
		t.Error("reference should be cleared even when close fails")
	}
}
