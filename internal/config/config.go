// Package config provides configuration structures and loading for GoShape.
package config

import (
	"github.com/dbsmedya/goshape/internal/truncate"
)

// Config represents the complete application configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// EngineConfig tunes the shape engine.
type EngineConfig struct {
	Seed                      int64   `yaml:"seed" mapstructure:"seed"`
	ReservoirSize             int     `yaml:"reservoir_size" mapstructure:"reservoir_size"`
	ExampleCount              int     `yaml:"example_count" mapstructure:"example_count"`
	MaxStringChars            int     `yaml:"max_string_chars" mapstructure:"max_string_chars"`
	MaxDepth                  int     `yaml:"max_depth" mapstructure:"max_depth"` // preview depth, 0 = unlimited
	StatsMaxDepth             int     `yaml:"stats_max_depth" mapstructure:"stats_max_depth"` // 0 = unlimited
	CardinalitySmallThreshold int     `yaml:"cardinality_small_threshold" mapstructure:"cardinality_small_threshold"`
	EnumMaxCardinality        int     `yaml:"enum_max_cardinality" mapstructure:"enum_max_cardinality"`
	FormatConfidenceThreshold float64 `yaml:"format_confidence_threshold" mapstructure:"format_confidence_threshold"`
	ArraySamplePattern        string  `yaml:"array_sample_pattern" mapstructure:"array_sample_pattern"` // first=N,mid=N,last=N
	BinaryThreshold           float64 `yaml:"binary_threshold" mapstructure:"binary_threshold"`
}

// SourceConfig represents the optional MySQL record source.
type SourceConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	TLS      string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	Query    string `yaml:"query" mapstructure:"query"`
	Table    string `yaml:"table" mapstructure:"table"` // shorthand for SELECT * FROM table
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stderr, stdout, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Seed:                      0,
			ReservoirSize:             5,
			ExampleCount:              5,
			MaxStringChars:            24,
			MaxDepth:                  3,
			StatsMaxDepth:             0,
			CardinalitySmallThreshold: 64,
			EnumMaxCardinality:        16,
			FormatConfidenceThreshold: 0.95,
			ArraySamplePattern:        "first=1,mid=1,last=1",
			BinaryThreshold:           0.98,
		},
		Source: SourceConfig{
			Port: 3306,
			TLS:  "preferred",
		},
		// Artifacts go to stdout, so logs default to stderr.
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// SamplePattern parses the configured array sample pattern.
func (ec *EngineConfig) SamplePattern() (truncate.SamplePattern, error) {
	return truncate.ParsePattern(ec.ArraySamplePattern)
}

// Configured reports whether a MySQL source has been set up.
func (sc *SourceConfig) Configured() bool {
	return sc.Host != ""
}
