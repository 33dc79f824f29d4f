package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultStoreBackend      = "sqlite"
	DefaultSQLitePath        = "./daybook.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	DefaultProviderName    = "openai"
	DefaultProviderTimeout = 60 * time.Second

	DefaultAuthIssuer = "daybook"
	DefaultAuthTTL    = 7 * 24 * time.Hour

	DefaultReflectionModel       = "gpt-4o-mini"
	DefaultReflectionMaxTokens   = 700
	DefaultReflectionCooldown    = time.Hour
	DefaultReflectionMonthlyCap  = 30
	DefaultReflectionPromptBytes = 5000

	// DefaultSchedulerSpec sweeps every Sunday at 18:00 UTC, late enough in
	// the week for most entries to exist.
	DefaultSchedulerSpec = "0 18 * * 0"

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
)

// DefaultRules returns the built-in admission rule list: a tight quota on the
// expensive weekly trigger, a moderate one on entry writes, and a catch-all.
func DefaultRules() []RuleConfig {
	return []RuleConfig{
		{Name: "weekly", PathPrefix: "/api/weekly", Max: 2, Window: time.Minute},
		{Name: "entries", PathPrefix: "/api/entries", Max: 6, Window: time.Minute},
		{Name: "default", PathPrefix: "", Max: 60, Window: time.Minute},
	}
}

// ApplyDefaults fills in default values for unset configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	if cfg.Provider.Name == "" {
		cfg.Provider.Name = DefaultProviderName
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = DefaultAuthIssuer
	}
	if cfg.Auth.TTL == 0 {
		cfg.Auth.TTL = DefaultAuthTTL
	}

	if cfg.Reflection.Model == "" {
		cfg.Reflection.Model = DefaultReflectionModel
	}
	if cfg.Reflection.MaxTokens == 0 {
		cfg.Reflection.MaxTokens = DefaultReflectionMaxTokens
	}
	if cfg.Reflection.Cooldown == 0 {
		cfg.Reflection.Cooldown = DefaultReflectionCooldown
	}
	if cfg.Reflection.MonthlyLimit == 0 {
		cfg.Reflection.MonthlyLimit = DefaultReflectionMonthlyCap
	}
	if cfg.Reflection.MaxPromptBytes == 0 {
		cfg.Reflection.MaxPromptBytes = DefaultReflectionPromptBytes
	}

	if len(cfg.Limits.Rules) == 0 {
		cfg.Limits.Rules = DefaultRules()
	}

	if cfg.Scheduler.Spec == "" {
		cfg.Scheduler.Spec = DefaultSchedulerSpec
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
