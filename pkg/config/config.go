package config

import (
	"time"

	"daybook-hq/daybook/pkg/limits/admission"
)

// Config is the root configuration for the Daybook server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Provider   ProviderConfig   `yaml:"provider"`
	Auth       AuthConfig       `yaml:"auth"`
	Reflection ReflectionConfig `yaml:"reflection"`
	Limits     LimitsConfig     `yaml:"limits"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	ListenAddress string `yaml:"listen_address"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `yaml:"backend"`

	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ProviderConfig configures the text-generation provider.
type ProviderConfig struct {
	// Name selects the adapter. Only "openai" is supported.
	Name string `yaml:"name"`

	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures session token issuance and verification.
type AuthConfig struct {
	// Secret is the HS256 signing key. Required.
	Secret string `yaml:"secret"`

	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

// ReflectionConfig tunes the weekly reflection coordinator.
type ReflectionConfig struct {
	Model          string        `yaml:"model"`
	Temperature    float64       `yaml:"temperature"`
	MaxTokens      int           `yaml:"max_tokens"`
	Cooldown       time.Duration `yaml:"cooldown"`
	MonthlyLimit   int           `yaml:"monthly_limit"`
	MaxPromptBytes int           `yaml:"max_prompt_bytes"`
}

// LimitsConfig configures the admission gate.
type LimitsConfig struct {
	// Rules is the ordered rule list. The final rule must be the catch-all
	// (empty path_prefix).
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is one admission rule in the config file.
type RuleConfig struct {
	Name       string        `yaml:"name"`
	PathPrefix string        `yaml:"path_prefix"`
	Max        int           `yaml:"max"`
	Window     time.Duration `yaml:"window"`
}

// AdmissionRules converts the configured rules to the gate's form.
func (c *LimitsConfig) AdmissionRules() []admission.Rule {
	rules := make([]admission.Rule, len(c.Rules))
	for i, r := range c.Rules {
		rules[i] = admission.Rule{
			Name:       r.Name,
			PathPrefix: r.PathPrefix,
			Max:        r.Max,
			Window:     r.Window,
		}
	}
	return rules
}

// SchedulerConfig configures the weekly sweep job.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`

	// Spec is the cron expression for the sweep.
	Spec string `yaml:"spec"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the scrape endpoint path.
	Path string `yaml:"path"`
}
