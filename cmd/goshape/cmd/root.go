package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "goshape",
	Short: "Streaming shape profiler for JSON and MySQL record streams",
	Long: `A single-pass shape engine for record streams. It reads NDJSON, a JSON
array document or a MySQL query result and emits three artifacts: a
statistical profile per field path, an inferred JSON schema and a uniform
preview sample of records.

Features:
  - One pass over the stream with bounded memory
  - Deterministic artifacts for a fixed seed, input and worker count
  - Exact distinct counts below a threshold, HyperLogLog above it
  - String format detection (timestamps, dates, emails, URLs, IPs)
  - Depth-, length- and pattern-truncated preview records`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "goshape.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}
