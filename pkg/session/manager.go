// Package session owns the single automation session shared by a test run.
package session

import (
	"context"
	"sync"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
)

// CapabilitySource supplies connection parameters. *config.Config and
// *config.Provider implement it.
type CapabilitySource interface {
	Capabilities() (core.Capabilities, error)
}

// Manager is a two-state machine: no session, or exactly one live session.
// It is the only caller of core.Opener.Open.
type Manager struct {
	opener core.Opener
	source CapabilitySource

	mu      sync.Mutex
	current core.Session
	opened  int
}

// NewManager creates a manager that opens sessions through opener using
// capabilities read from source.
func NewManager(opener core.Opener, source CapabilitySource) *Manager {
	return &Manager{opener: opener, source: source}
}

// Acquire returns the live session, opening one if none exists.
// Repeated calls without Release return the same session.
func (m *Manager) Acquire(ctx context.Context) (core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return m.current, nil
	}

	if m.source == nil {
		return nil, core.ErrSessionCreation.WithCause(core.ErrConfiguration.WithMessage("no configuration"))
	}
	caps, err := m.source.Capabilities()
	if err != nil {
		return nil, core.ErrSessionCreation.WithCause(err)
	}

	logger.Info("Opening session: platform=%s automation=%s version=%s app=%s",
		caps.PlatformName, caps.AutomationName, caps.PlatformVersion, caps.App)

	s, err := m.opener.Open(ctx, caps)
	if err != nil {
		logger.Error("Session creation failed: %v", err)
		return nil, core.ErrSessionCreation.WithCause(err)
	}

	m.current = s
	m.opened++
	return s, nil
}

// Release closes the live session. It is a no-op when there is none.
// The reference is cleared even if closing fails; the close error is returned.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	s := m.current
	m.current = nil

	if err := s.Close(); err != nil {
		logger.Warn("Closing session %s: %v", s.ID(), err)
		return err
	}
	logger.Info("Session %s released", s.ID())
	return nil
}

// Active reports whether a session is currently held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Opened returns how many sessions this manager has opened.
func (m *Manager) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}
