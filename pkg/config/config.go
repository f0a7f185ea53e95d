// Package config loads the run configuration from a Java-style properties file.
package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: appium.app -> APPIUM_STEPS_APPIUM_APP.
const EnvPrefix = "APPIUM_STEPS"

// Required keys.
const (
	KeyPlatformName    = "appium.platformName"
	KeyAutomationName  = "appium.automationName"
	KeyPlatformVersion = "appium.platformVersion"
	KeyApp             = "appium.app"
)

// RequiredKeys must be present and non-empty for a configuration to load.
var RequiredKeys = []string{KeyPlatformName, KeyAutomationName, KeyPlatformVersion, KeyApp}

const capabilityPrefix = "appium."

// Config is an immutable snapshot of the run configuration.
type Config struct {
	source string
	values map[string]string
}

// Load reads the properties file at path, applies environment overrides and
// validates required keys.
func Load(path string) (*Config, error) {
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, core.ErrConfiguration.WithMessagef("cannot read configuration %s", path).WithCause(err)
	}
	return fromProperties(props, path)
}

// Parse builds a Config from properties text. source names it in errors.
func Parse(data []byte, source string) (*Config, error) {
	props, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, core.ErrConfiguration.WithMessagef("cannot parse configuration %s", source).WithCause(err)
	}
	return fromProperties(props, source)
}

func fromProperties(props *properties.Properties, source string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	keys := props.Keys()
	for _, k := range keys {
		v.SetDefault(k, props.GetString(k, ""))
	}

	values := make(map[string]string, len(keys)+len(RequiredKeys))
	for _, k := range keys {
		values[k] = strings.TrimSpace(v.GetString(k))
	}
	// Required keys may be supplied through the environment alone.
	for _, k := range RequiredKeys {
		if _, ok := values[k]; ok {
			continue
		}
		if val := strings.TrimSpace(v.GetString(k)); val != "" {
			values[k] = val
		}
	}

	cfg := &Config{source: source, values: values}

	var missing []string
	for _, k := range RequiredKeys {
		if val, _ := cfg.lookup(k); val == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, core.ErrConfiguration.
			WithMessagef("%s: missing required keys: %s", source, strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"missing": missing})
	}

	return cfg, nil
}

// Source returns the path or name the configuration was loaded from.
func (c *Config) Source() string {
	return c.source
}

// Get returns the value for key. Lookups are exact first, then case-insensitive.
// A missing key is an error, never a default.
func (c *Config) Get(key string) (string, error) {
	if val, ok := c.lookup(key); ok {
		return val, nil
	}
	return "", core.ErrConfiguration.WithMessagef("%s: missing key %q", c.source, key)
}

func (c *Config) lookup(key string) (string, bool) {
	if val, ok := c.values[key]; ok {
		return val, true
	}
	for k, val := range c.values {
		if strings.EqualFold(k, key) {
			return val, true
		}
	}
	return "", false
}

// Keys returns all keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Capabilities assembles the backend connection parameters. Keys under
// "appium." other than the required ones are forwarded as "appium:<name>".
func (c *Config) Capabilities() (core.Capabilities, error) {
	var caps core.Capabilities
	var err error

	if caps.PlatformName, err = c.Get(KeyPlatformName); err != nil {
		return caps, err
	}
	if caps.AutomationName, err = c.Get(KeyAutomationName); err != nil {
		return caps, err
	}
	if caps.PlatformVersion, err = c.Get(KeyPlatformVersion); err != nil {
		return caps, err
	}
	if caps.App, err = c.Get(KeyApp); err != nil {
		return caps, err
	}
	if missing := caps.Missing(); len(missing) > 0 {
		return caps, core.ErrConfiguration.WithMessagef("%s: empty capabilities: %s", c.source, strings.Join(missing, ", "))
	}

	for _, k := range c.Keys() {
		if !strings.HasPrefix(k, capabilityPrefix) || isRequired(k) {
			continue
		}
		name := strings.TrimPrefix(k, capabilityPrefix)
		if name == "" {
			continue
		}
		if caps.Extra == nil {
			caps.Extra = make(map[string]interface{})
		}
		caps.Extra["appium:"+name] = typedValue(name, c.values[k])
	}
	return caps, nil
}

func isRequired(key string) bool {
	for _, k := range RequiredKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// numericCapabilities are Appium capabilities that must be sent as numbers.
// Any other value is forwarded as written, so ids such as "0123" keep their
// leading zeros.
var numericCapabilities = map[string]bool{
	"newCommandTimeout":                true,
	"adbExecTimeout":                   true,
	"androidInstallTimeout":            true,
	"appWaitDuration":                  true,
	"avdLaunchTimeout":                 true,
	"avdReadyTimeout":                  true,
	"chromedriverPort":                 true,
	"deviceReadyTimeout":               true,
	"mjpegServerPort":                  true,
	"simulatorStartupTimeout":          true,
	"systemPort":                       true,
	"uiautomator2ServerInstallTimeout": true,
	"uiautomator2ServerLaunchTimeout":  true,
	"uiautomator2ServerReadTimeout":    true,
	"wdaConnectionTimeout":             true,
	"wdaLaunchTimeout":                 true,
	"wdaLocalPort":                     true,
	"wdaStartupRetries":                true,
	"wdaStartupRetryInterval":          true,
	"webviewConnectTimeout":            true,
}

// typedValue converts booleans, and integers for numeric capabilities, so
// they keep their JSON types.
func typedValue(name, s string) interface{} {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if numericCapabilities[name] {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return s
}
