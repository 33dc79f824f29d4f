package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"daybook-hq/daybook/pkg/limits/admission"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field.
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all field errors found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the entire configuration, collecting all errors rather than
// stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateProvider(&cfg.Provider)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateReflection(&cfg.Reflection)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateScheduler(&cfg.Scheduler)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid host:port: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server",
			Message: "timeouts must not be negative",
		})
	}
	return errs
}

func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "store.backend",
			Message: fmt.Sprintf("unknown backend %q (want sqlite or memory)", cfg.Backend),
		})
	}
	return errs
}

func validateProvider(cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	if cfg.Name != "openai" {
		errs = append(errs, FieldError{
			Field:   "provider.name",
			Message: fmt.Sprintf("unknown provider %q (only openai is supported)", cfg.Name),
		})
	}
	if cfg.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   "provider.api_key",
			Message: "field is required",
		})
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "provider.base_url",
				Message: "must be a valid absolute URL",
			})
		}
	}
	return errs
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if cfg.Secret == "" {
		errs = append(errs, FieldError{
			Field:   "auth.secret",
			Message: "field is required",
		})
	}
	if cfg.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "auth.ttl",
			Message: "must not be negative",
		})
	}
	return errs
}

func validateReflection(cfg *ReflectionConfig) []FieldError {
	var errs []FieldError

	if cfg.MonthlyLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "reflection.monthly_limit",
			Message: "must be at least 1",
		})
	}
	if cfg.Cooldown < 0 {
		errs = append(errs, FieldError{
			Field:   "reflection.cooldown",
			Message: "must not be negative",
		})
	}
	if cfg.MaxPromptBytes < 1 {
		errs = append(errs, FieldError{
			Field:   "reflection.max_prompt_bytes",
			Message: "must be at least 1",
		})
	}
	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	if err := admission.ValidateRules(cfg.AdmissionRules()); err != nil {
		return []FieldError{{
			Field:   "limits.rules",
			Message: err.Error(),
		}}
	}
	return nil
}

func validateScheduler(cfg *SchedulerConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(cfg.Spec); err != nil {
		return []FieldError{{
			Field:   "scheduler.spec",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (want json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}
	return errs
}
