package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/logging"
)

// Environment variables consulted by the task layer. The decision
// engine itself never reads the process environment; commands read
// these and pass values in explicitly.
const (
	// ForceCredentialProviderEnv force-enables or -disables the
	// V1/V2 credential provider mechanism ("true"/"false").
	ForceCredentialProviderEnv = "NUGETRUN_FORCE_CREDENTIAL_PROVIDER"

	// ForceCredentialConfigEnv force-enables or -disables config-file
	// credentials ("true"/"false").
	ForceCredentialConfigEnv = "NUGETRUN_FORCE_CREDENTIAL_CONFIG"

	// AccessTokenEnv carries the build-service access token.
	AccessTokenEnv = "NUGETRUN_ACCESS_TOKEN"
)

// keyringService is the OS-keyring service name proxy passwords are
// stored under.
const keyringService = "nugetrun"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Settings       *Settings
}

// Settings represents the nugetrun.yaml structure.
type Settings struct {
	Version           int              `yaml:"version"`
	ToolPath          string           `yaml:"toolPath"`
	OnPremises        bool             `yaml:"onPremises"`
	DisableExtensions bool             `yaml:"disableExtensions"`
	Provider          ProviderSettings `yaml:"credentialProvider"`

	// Override switches; environment variables take precedence over
	// these file values.
	ForceCredentialProvider string `yaml:"forceCredentialProvider,omitempty"`
	ForceCredentialConfig   string `yaml:"forceCredentialConfig,omitempty"`

	URIPrefixes    []string        `yaml:"uriPrefixes,omitempty"`
	TimeoutSeconds int             `yaml:"timeoutSeconds,omitempty"`
	Proxy          ProxySettings   `yaml:"proxy,omitempty"`
	Metrics        MetricsSettings `yaml:"metrics,omitempty"`
}

// ProviderSettings holds the discovered credential-provider locations.
type ProviderSettings struct {
	// Folder is the V1 credential provider directory.
	Folder string `yaml:"folder,omitempty"`
	// PluginPaths is the V2 plugin path list, semicolon-separated.
	PluginPaths string `yaml:"pluginPaths,omitempty"`
}

// ProxySettings holds outbound proxy configuration. Username and
// Password are independently optional.
type ProxySettings struct {
	URL                 string `yaml:"url,omitempty"`
	Username            string `yaml:"username,omitempty"`
	Password            string `yaml:"password,omitempty"`
	PasswordFromKeyring bool   `yaml:"passwordFromKeyring,omitempty"`
}

// MetricsSettings configures the optional Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Load reads and validates the settings file at c.Path.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return dserrors.UserError{
			Message:    fmt.Sprintf("Failed to read config file '%s'", c.Path),
			Details:    err.Error(),
			Suggestion: "Create nugetrun.yaml or pass --config",
			Err:        err,
		}
	}

	if err := validateSettings(data); err != nil {
		return err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return dserrors.UserError{
			Message:    "Failed to parse config file",
			Details:    err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	c.Settings = &settings
	return nil
}

// ProviderOverride returns the raw V1/V2 override switch value, with
// the environment beating the settings file.
func (s *Settings) ProviderOverride(getenv func(string) string) string {
	if v := getenv(ForceCredentialProviderEnv); v != "" {
		return v
	}
	return s.ForceCredentialProvider
}

// ConfigOverride returns the raw config-credential override switch
// value, with the environment beating the settings file.
func (s *Settings) ConfigOverride(getenv func(string) string) string {
	if v := getenv(ForceCredentialConfigEnv); v != "" {
		return v
	}
	return s.ForceCredentialConfig
}

// ResolveProxyPassword fills Proxy.Password from the OS keyring when
// the settings ask for it. A missing keyring entry is not an error;
// the proxy is simply used without credentials.
func (c *Config) ResolveProxyPassword() error {
	s := c.Settings
	if s == nil || !s.Proxy.PasswordFromKeyring || s.Proxy.Password != "" || s.Proxy.Username == "" {
		return nil
	}

	secret, err := keyring.Get(keyringService, s.Proxy.Username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			c.Logger.Warn("No keyring entry for proxy user '%s'", s.Proxy.Username)
			return nil
		}
		return dserrors.UserError{
			Message:    "Failed to read proxy password from OS keyring",
			Details:    err.Error(),
			Suggestion: "Store it with your platform keyring tool under service 'nugetrun', or set proxy.password",
			Err:        err,
		}
	}

	s.Proxy.Password = secret
	c.Logger.Debug("Proxy password loaded from keyring for user '%s'", s.Proxy.Username)
	return nil
}
