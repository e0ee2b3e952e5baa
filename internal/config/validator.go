package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "batch.workers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidAssemblies returns the list of supported genome assemblies
func ValidAssemblies() []string {
	return []string{coordinate.AssemblyHG19, coordinate.AssemblyHG38}
}

// ValidOutputFormats returns the list of valid record output formats
func ValidOutputFormats() []string {
	return []string{"tsv", "jsonl"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBatch()...)
	errors = append(errors, c.validateCoordinates()...)
	errors = append(errors, c.validateBrowser()...)
	errors = append(errors, c.validatePrimer()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)

	return errors
}

// validateBatch validates the BatchConfig
func (c *Config) validateBatch() []ValidationError {
	var errors []ValidationError

	const minWorkers = 1
	const maxWorkers = 16

	if c.Batch.Workers < minWorkers {
		errors = append(errors, ValidationError{
			Field:   "batch.workers",
			Value:   c.Batch.Workers,
			Message: fmt.Sprintf("must be at least %d", minWorkers),
		})
	}
	if c.Batch.Workers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "batch.workers",
			Value:   c.Batch.Workers,
			Message: fmt.Sprintf("exceeds maximum of %d", maxWorkers),
		})
	}

	const maxAttemptsLimit = 10
	if c.Batch.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "batch.max_attempts",
			Value:   c.Batch.MaxAttempts,
			Message: "must be at least 1",
		})
	}
	if c.Batch.MaxAttempts > maxAttemptsLimit {
		errors = append(errors, ValidationError{
			Field:   "batch.max_attempts",
			Value:   c.Batch.MaxAttempts,
			Message: fmt.Sprintf("exceeds maximum of %d", maxAttemptsLimit),
		})
	}

	if c.Batch.BaseDelay <= 0 {
		errors = append(errors, ValidationError{
			Field:   "batch.base_delay",
			Value:   c.Batch.BaseDelay,
			Message: "must be positive",
		})
	}
	if c.Batch.MaxDelay < c.Batch.BaseDelay {
		errors = append(errors, ValidationError{
			Field:   "batch.max_delay",
			Value:   c.Batch.MaxDelay,
			Message: fmt.Sprintf("cannot be less than base_delay (%v)", c.Batch.BaseDelay),
		})
	}
	if c.Batch.Multiplier < 1.0 {
		errors = append(errors, ValidationError{
			Field:   "batch.multiplier",
			Value:   c.Batch.Multiplier,
			Message: "must be at least 1.0",
		})
	}
	if c.Batch.JitterFraction < 0 || c.Batch.JitterFraction > 1 {
		errors = append(errors, ValidationError{
			Field:   "batch.jitter_fraction",
			Value:   c.Batch.JitterFraction,
			Message: "must be between 0 and 1",
		})
	}
	if c.Batch.PerTaskTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "batch.per_task_timeout",
			Value:   c.Batch.PerTaskTimeout,
			Message: "must be positive",
		})
	}

	return errors
}

// validateCoordinates validates the CoordinatesConfig
func (c *Config) validateCoordinates() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidAssemblies(), c.Coordinates.SourceAssembly) {
		errors = append(errors, ValidationError{
			Field:   "coordinates.source_assembly",
			Value:   c.Coordinates.SourceAssembly,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAssemblies(), ", ")),
		})
	}

	// Empty target means no conversion
	if c.Coordinates.TargetAssembly != "" && !slices.Contains(ValidAssemblies(), c.Coordinates.TargetAssembly) {
		errors = append(errors, ValidationError{
			Field:   "coordinates.target_assembly",
			Value:   c.Coordinates.TargetAssembly,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAssemblies(), ", ")),
		})
	}

	converting := c.Coordinates.TargetAssembly != "" &&
		c.Coordinates.TargetAssembly != c.Coordinates.SourceAssembly

	if converting && c.Coordinates.MappingFile == "" {
		errors = append(errors, ValidationError{
			Field:   "coordinates.mapping_file",
			Value:   c.Coordinates.MappingFile,
			Message: "required when target_assembly differs from source_assembly",
		})
	}

	if c.Coordinates.MappingFile != "" {
		if _, err := os.Stat(c.Coordinates.MappingFile); err != nil {
			errors = append(errors, ValidationError{
				Field:   "coordinates.mapping_file",
				Value:   c.Coordinates.MappingFile,
				Message: "file does not exist",
			})
		}
	}

	return errors
}

// validateBrowser validates the BrowserConfig
func (c *Config) validateBrowser() []ValidationError {
	var errors []ValidationError

	if c.Browser.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "browser.url",
			Value:   c.Browser.URL,
			Message: "cannot be empty",
		})
	} else if !strings.HasPrefix(c.Browser.URL, "http://") && !strings.HasPrefix(c.Browser.URL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "browser.url",
			Value:   c.Browser.URL,
			Message: "must be an http or https URL",
		})
	}

	if c.Browser.PageLoadTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "browser.page_load_timeout",
			Value:   c.Browser.PageLoadTimeout,
			Message: "must be positive",
		})
	}

	return errors
}

// validatePrimer surfaces primer parameter errors under the primer.* prefix
func (c *Config) validatePrimer() []ValidationError {
	var errors []ValidationError

	for _, err := range c.Primer.Validate() {
		errors = append(errors, ValidationError{
			Field:   "primer." + err.Field,
			Value:   err.Value,
			Message: err.Message,
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(logging.ValidLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	if c.Logging.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "cannot be empty",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	return errors
}
