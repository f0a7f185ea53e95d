package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "APPIUM_STEPS_CONFIG"

// DefaultFileName is the properties file looked up when no path is given.
const DefaultFileName = "application.properties"

// Provider loads a configuration file exactly once and serves lookups from it.
// Concurrent first calls share a single load; a load error is cached as well.
type Provider struct {
	path string

	once sync.Once
	cfg  *Config
	err  error
}

// NewProvider creates a Provider for the properties file at path.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Load returns the configuration, reading the file on first use only.
func (p *Provider) Load() (*Config, error) {
	p.once.Do(func() {
		p.cfg, p.err = Load(p.path)
	})
	return p.cfg, p.err
}

// Get returns the value for key from the loaded configuration.
func (p *Provider) Get(key string) (string, error) {
	cfg, err := p.Load()
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// Capabilities returns the connection parameters from the loaded configuration.
func (p *Provider) Capabilities() (core.Capabilities, error) {
	cfg, err := p.Load()
	if err != nil {
		return core.Capabilities{}, err
	}
	return cfg.Capabilities()
}

// ResolvePath picks the configuration file.
//
// Resolution order:
//  1. explicit (the --config flag)
//  2. $APPIUM_STEPS_CONFIG
//  3. ./application.properties
//  4. ./src/test/resources/application.properties
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}

	candidates := []string{
		DefaultFileName,
		filepath.Join("src", "test", "resources", DefaultFileName),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", core.ErrConfiguration.WithMessagef("no %s found (use --config or $%s)", DefaultFileName, EnvConfigPath)
}
