package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// DAYBOOK_SECTION_FIELD (e.g. DAYBOOK_SERVER_LISTEN_ADDRESS) and always take
// precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setInt := func(key string, dst *int) {
		if val := os.Getenv(key); val != "" {
			if i, err := strconv.Atoi(val); err == nil {
				*dst = i
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	setString("DAYBOOK_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("DAYBOOK_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("DAYBOOK_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("DAYBOOK_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	setDuration("DAYBOOK_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("DAYBOOK_STORE_BACKEND", &cfg.Store.Backend)
	setString("DAYBOOK_STORE_SQLITE_PATH", &cfg.Store.SQLite.Path)
	setDuration("DAYBOOK_STORE_SQLITE_BUSY_TIMEOUT", &cfg.Store.SQLite.BusyTimeout)

	setString("DAYBOOK_PROVIDER_NAME", &cfg.Provider.Name)
	setString("DAYBOOK_PROVIDER_BASE_URL", &cfg.Provider.BaseURL)
	setString("DAYBOOK_PROVIDER_API_KEY", &cfg.Provider.APIKey)
	setDuration("DAYBOOK_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)

	setString("DAYBOOK_AUTH_SECRET", &cfg.Auth.Secret)
	setString("DAYBOOK_AUTH_ISSUER", &cfg.Auth.Issuer)
	setDuration("DAYBOOK_AUTH_TTL", &cfg.Auth.TTL)

	setString("DAYBOOK_REFLECTION_MODEL", &cfg.Reflection.Model)
	setInt("DAYBOOK_REFLECTION_MAX_TOKENS", &cfg.Reflection.MaxTokens)
	setDuration("DAYBOOK_REFLECTION_COOLDOWN", &cfg.Reflection.Cooldown)
	setInt("DAYBOOK_REFLECTION_MONTHLY_LIMIT", &cfg.Reflection.MonthlyLimit)
	setInt("DAYBOOK_REFLECTION_MAX_PROMPT_BYTES", &cfg.Reflection.MaxPromptBytes)

	setBool("DAYBOOK_SCHEDULER_ENABLED", &cfg.Scheduler.Enabled)
	setString("DAYBOOK_SCHEDULER_SPEC", &cfg.Scheduler.Spec)

	setString("DAYBOOK_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("DAYBOOK_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("DAYBOOK_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("DAYBOOK_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}
