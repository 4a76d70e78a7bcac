// Package config loads the librarybuilder YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "librarybuilder.yaml"

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Builder    BuilderConfig    `yaml:"builder"`
	Session    SessionConfig    `yaml:"session"`
	Navigation NavigationConfig `yaml:"navigation"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Address      string   `yaml:"address"`
	AdminAddress string   `yaml:"admin_address"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// BuilderConfig selects and configures the remote library build operation.
type BuilderConfig struct {
	Transport Transport `yaml:"transport"`
	URL       string    `yaml:"url"`
	Subject   string    `yaml:"subject,omitempty"` // NATS only
	Token     string    `yaml:"token,omitempty"`   // HTTP bearer token
	// Timeout bounds a single build request. Zero means no limit.
	Timeout Duration `yaml:"timeout"`
}

// SessionConfig configures credential persistence.
type SessionConfig struct {
	// PersistCredentialsOnSuccess defaults to true when omitted.
	PersistCredentialsOnSuccess *bool  `yaml:"persist_credentials_on_success,omitempty"`
	DBPath                      string `yaml:"db_path"`
}

// PersistCredentials reports the effective persistence setting.
func (s SessionConfig) PersistCredentials() bool {
	return s.PersistCredentialsOnSuccess == nil || *s.PersistCredentialsOnSuccess
}

// NavigationConfig names the views used by the web surface.
type NavigationConfig struct {
	Destination string `yaml:"destination"`
	LoginPath   string `yaml:"login_path"`
}

// RefreshConfig configures periodic rebuilds from the saved session.
type RefreshConfig struct {
	// Interval of zero disables refresh.
	Interval Duration `yaml:"interval"`
}

// HistoryConfig configures the build attempt log.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
	Limit  int    `yaml:"limit"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig toggles the Prometheus endpoint on the admin listener.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Duration is a time.Duration written as a Go duration string ("30s", "1h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes YAML data after ${ENV} expansion, then applies defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config").Build()
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Builder.Token = "${LIBRARYBUILDER_BUILDER_TOKEN}"
	example.Refresh.Interval = Duration(6 * time.Hour)
	example.Metrics.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
