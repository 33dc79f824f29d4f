package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"daybook-hq/daybook/pkg/auth"
	"daybook-hq/daybook/pkg/config"
	"daybook-hq/daybook/pkg/limits/admission"
	"daybook-hq/daybook/pkg/limits/ratelimit"
	"daybook-hq/daybook/pkg/providers"
	"daybook-hq/daybook/pkg/providers/openai"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/scheduler"
	"daybook-hq/daybook/pkg/server"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
	"daybook-hq/daybook/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Daybook server",
	Long: `Start the Daybook server with the specified configuration.

Examples:
  # Start with default config
  daybook run

  # Start with custom config
  daybook run --config /etc/daybook/config.yaml

  # Override listen address
  daybook run --listen 0.0.0.0:8080

  # Validate config without starting
  daybook run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// A .env file is optional; shell environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Daybook v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)

	collector := metrics.NewCollector(metrics.Config{
		Enabled: cfg.Telemetry.Metrics.Enabled,
	}, nil)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	fmt.Printf("✓ Store initialized (%s)\n", cfg.Store.Backend)

	provider, err := openai.New(providers.Config{
		Name:    cfg.Provider.Name,
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize provider: %w", err)
	}
	defer provider.Close()

	counter := ratelimit.NewCounter()
	defer counter.Close()

	gate, err := admission.NewGate(counter, cfg.Limits.AdmissionRules())
	if err != nil {
		return fmt.Errorf("failed to build admission gate: %w", err)
	}
	counter.StartSweeper(gate.MaxWindow())

	authn, err := auth.NewTokenAuthenticator(auth.Config{
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	coordinator := reflection.NewCoordinator(st, provider, reflection.Config{
		Model:          cfg.Reflection.Model,
		Temperature:    cfg.Reflection.Temperature,
		MaxTokens:      cfg.Reflection.MaxTokens,
		Cooldown:       cfg.Reflection.Cooldown,
		MonthlyLimit:   cfg.Reflection.MonthlyLimit,
		MaxPromptBytes: cfg.Reflection.MaxPromptBytes,
	}, logger, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.Enabled {
		sweep := scheduler.New(cfg.Scheduler.Spec, st, coordinator, logger)
		if err := sweep.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sweep.Stop()
		if next := sweep.NextRun(); next != nil {
			logger.Info("weekly sweep scheduled", "next_run", next)
		}
	}

	// Hot reload: only the admission rules change at runtime; everything
	// else requires a restart.
	watcher, err := config.NewWatcher(cfgFile, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		go func() {
			_ = watcher.Watch(ctx, func() error {
				fresh, err := config.LoadConfigWithEnvOverrides(cfgFile)
				if err != nil {
					return err
				}
				return gate.SetRules(fresh.Limits.AdmissionRules())
			})
		}()
		defer watcher.Stop()
	}

	srv := server.NewServer(cfg, server.Deps{
		Store:       st,
		Coordinator: coordinator,
		Gate:        gate,
		Auth:        authn,
		Logger:      logger,
		Metrics:     collector,
	})

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		st, err := store.NewSQLiteStoreWithConfig(store.SQLiteConfig{
			Path:        cfg.Store.SQLite.Path,
			BusyTimeout: cfg.Store.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return st, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
