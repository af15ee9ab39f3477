package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goshape/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate loads the configuration file and checks it: YAML syntax,
engine knob ranges, source connection settings and logging options.

Example:
  goshape validate --config goshape.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	cfg.ApplyOverrides(logLevel, logFormat)

	cmd.Printf("=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n\n", configFile)

	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ %v\n", err)
		return fmt.Errorf("configuration is not valid")
	}

	cmd.Printf("Engine: seed=%d reservoir_size=%d example_count=%d max_depth=%d\n",
		cfg.Engine.Seed, cfg.Engine.ReservoirSize, cfg.Engine.ExampleCount, cfg.Engine.MaxDepth)
	if cfg.Source.Configured() {
		cmd.Printf("Source: %s:%d/%s (tls=%s)\n",
			cfg.Source.Host, cfg.Source.Port, cfg.Source.Database, cfg.Source.TLS)
		switch {
		case cfg.Source.Query != "":
			cmd.Printf("Query: %s\n", cfg.Source.Query)
		case cfg.Source.Table != "":
			cmd.Printf("Table: %s\n", cfg.Source.Table)
		}
	} else {
		cmd.Printf("Source: not configured (file or stdin input)\n")
	}
	cmd.Printf("Logging: level=%s format=%s output=%s\n\n",
		cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	cmd.Printf("✅ Configuration is valid\n")
	return nil
}
