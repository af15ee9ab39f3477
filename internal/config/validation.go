package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateEngine(); err != nil {
		errors = append(errors, err...)
	}

	// Validate the MySQL source only when one is configured
	if c.Source.Configured() {
		if err := c.validateSource(); err != nil {
			errors = append(errors, err...)
		}
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateEngine() ValidationErrors {
	var errors ValidationErrors
	e := &c.Engine

	if e.ReservoirSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.reservoir_size",
			Message: "reservoir_size cannot be negative",
		})
	}

	if e.ExampleCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.example_count",
			Message: "example_count cannot be negative",
		})
	}

	if e.MaxStringChars <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.max_string_chars",
			Message: "max_string_chars must be positive",
		})
	}

	if e.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.max_depth",
			Message: "max_depth cannot be negative",
		})
	}

	if e.StatsMaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.stats_max_depth",
			Message: "stats_max_depth cannot be negative",
		})
	}

	if e.CardinalitySmallThreshold < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.cardinality_small_threshold",
			Message: "cardinality_small_threshold cannot be negative",
		})
	}

	if e.EnumMaxCardinality < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.enum_max_cardinality",
			Message: "enum_max_cardinality cannot be negative",
		})
	}

	if e.FormatConfidenceThreshold <= 0 || e.FormatConfidenceThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.format_confidence_threshold",
			Message: "format_confidence_threshold must be in (0, 1]",
		})
	}

	if e.BinaryThreshold <= 0 || e.BinaryThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.binary_threshold",
			Message: "binary_threshold must be in (0, 1]",
		})
	}

	if _, err := e.SamplePattern(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "engine.array_sample_pattern",
			Message: err.Error(),
		})
	}

	return errors
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors

	if c.Source.Port <= 0 || c.Source.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "source.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if c.Source.User == "" {
		errors = append(errors, ValidationError{
			Field:   "source.user",
			Message: "user is required when a source host is set",
		})
	}

	if c.Source.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "source.database",
			Message: "database name is required when a source host is set",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[c.Source.TLS] {
		errors = append(errors, ValidationError{
			Field:   "source.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if c.Source.Query != "" && c.Source.Table != "" {
		errors = append(errors, ValidationError{
			Field:   "source.table",
			Message: "table and query are mutually exclusive",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
