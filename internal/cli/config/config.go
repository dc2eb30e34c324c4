package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/infra/confloader"
	"github.com/kubecloudsinc/kci-client/internal/storage"
)

// CLIConfig is the configuration for kci-cli.
type CLIConfig struct {
	Server  string        `koanf:"server" json:"server" yaml:"server"`
	Output  string        `koanf:"output" json:"output" yaml:"output"` // table, wide, json, yaml
	HTTP    HTTPConfig    `koanf:"http" json:"http" yaml:"http"`
	Store   StoreConfig   `koanf:"store" json:"store" yaml:"store"`
	Session SessionConfig `koanf:"session" json:"session" yaml:"session"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// HTTPConfig tunes the API transport.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// httpConfigText is HTTPConfig with the timeout as a duration string.
type httpConfigText struct {
	Timeout   string  `yaml:"timeout" json:"timeout"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	CAFile    string  `yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
}

// MarshalYAML writes the timeout as a duration string.
func (h HTTPConfig) MarshalYAML() (any, error) {
	return httpConfigText{h.Timeout.String(), h.RateLimit, h.CAFile}, nil
}

// MarshalJSON writes the timeout as a duration string.
func (h HTTPConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(httpConfigText{h.Timeout.String(), h.RateLimit, h.CAFile})
}

// StoreConfig selects where the session token is kept.
type StoreConfig struct {
	Engine string `koanf:"engine" json:"engine" yaml:"engine"` // badger, sqlite
	Path   string `koanf:"path" json:"path" yaml:"path"`
	// Passphrase seals the token at rest when set. Prefer KCI_STORE_PASSPHRASE.
	Passphrase string `koanf:"passphrase" json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

// SessionConfig controls session behaviour.
type SessionConfig struct {
	ExpireOnUnauthorized bool `koanf:"expire_on_unauthorized" json:"expire_on_unauthorized" yaml:"expire_on_unauthorized"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// MetricsConfig controls the node_exporter textfile dump.
type MetricsConfig struct {
	Textfile string `koanf:"textfile" json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// DefaultServer is the API address used when none is configured.
const DefaultServer = "http://localhost:8080"

// Dir returns the per-user kci directory (~/.kci).
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".kci")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "cli.yaml")
}

// DefaultStorePath returns the default token store location for engine.
func DefaultStorePath(engine string) string {
	if strings.EqualFold(engine, storage.EngineSQLite) {
		return filepath.Join(Dir(), "store.db")
	}
	return filepath.Join(Dir(), "store")
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: "table",
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Engine: storage.EngineBadger,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// defaultsMap mirrors Default() as dotted keys for the loader.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"server":                         d.Server,
		"output":                         d.Output,
		"http.timeout":                   d.HTTP.Timeout.String(),
		"http.rate_limit":                d.HTTP.RateLimit,
		"http.ca_file":                   "",
		"store.engine":                   d.Store.Engine,
		"store.path":                     "",
		"store.passphrase":               "",
		"session.expire_on_unauthorized": d.Session.ExpireOnUnauthorized,
		"log.level":                      d.Log.Level,
		"log.format":                     d.Log.Format,
		"metrics.textfile":               "",
	}
}

// Load loads CLI configuration from defaults, the YAML file at path (which
// may be absent) and KCI_* environment variables, then applies overrides
// keyed by dotted path (typically from flags).
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	l := confloader.NewLoader(
		confloader.WithOptionalConfigFile(path),
		confloader.WithDefaults(defaultsMap()),
	)

	cfg := &CLIConfig{}
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath(cfg.Store.Engine)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot use.
func (c *CLIConfig) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("config: server is required")
	}
	switch strings.ToLower(c.Store.Engine) {
	case storage.EngineBadger, storage.EngineSQLite:
	default:
		return fmt.Errorf("config: unknown store.engine %q (want badger or sqlite)", c.Store.Engine)
	}
	switch strings.ToLower(c.Output) {
	case "table", "wide", "json", "yaml":
	default:
		return fmt.Errorf("config: unknown output %q (want table, wide, json or yaml)", c.Output)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("config: http.timeout must not be negative")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("config: http.rate_limit must not be negative")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *CLIConfig) Redacted() *CLIConfig {
	cp := *c
	if cp.Store.Passphrase != "" {
		cp.Store.Passphrase = "***REDACTED***"
	}
	return &cp
}
