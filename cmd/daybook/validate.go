package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"daybook-hq/daybook/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including environment
variable overrides, without starting the server.

Examples:
  # Validate the default config
  daybook validate

  # Validate a specific file
  daybook validate --config /etc/daybook/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  store backend:  %s\n", cfg.Store.Backend)
	fmt.Printf("  provider:       %s (%s)\n", cfg.Provider.Name, cfg.Reflection.Model)
	fmt.Printf("  admission rules: %d\n", len(cfg.Limits.Rules))
	if cfg.Scheduler.Enabled {
		fmt.Printf("  weekly sweep:   %q\n", cfg.Scheduler.Spec)
	}
	return nil
}
