package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "batch.workers",
		Value:   0,
		Message: "must be at least 1",
	}

	expected := "batch.workers: must be at least 1 (got: 0)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "output.format", Value: "xml", Message: "is invalid"},
		}
		expected := "output.format: is invalid (got: xml)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "batch.workers", Value: 0, Message: "must be at least 1"},
			{Field: "logging.dir", Value: "", Message: "cannot be empty"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "batch.workers") || !strings.Contains(result, "logging.dir") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Batch(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "zero workers",
			mutate:    func(c *Config) { c.Batch.Workers = 0 },
			wantField: "batch.workers",
		},
		{
			name:      "too many workers",
			mutate:    func(c *Config) { c.Batch.Workers = 17 },
			wantField: "batch.workers",
		},
		{
			name:      "zero max attempts",
			mutate:    func(c *Config) { c.Batch.MaxAttempts = 0 },
			wantField: "batch.max_attempts",
		},
		{
			name:      "excessive max attempts",
			mutate:    func(c *Config) { c.Batch.MaxAttempts = 11 },
			wantField: "batch.max_attempts",
		},
		{
			name:      "non-positive base delay",
			mutate:    func(c *Config) { c.Batch.BaseDelay = 0 },
			wantField: "batch.base_delay",
		},
		{
			name:      "max delay below base delay",
			mutate:    func(c *Config) { c.Batch.MaxDelay = c.Batch.BaseDelay - time.Second },
			wantField: "batch.max_delay",
		},
		{
			name:      "multiplier below one",
			mutate:    func(c *Config) { c.Batch.Multiplier = 0.5 },
			wantField: "batch.multiplier",
		},
		{
			name:      "jitter above one",
			mutate:    func(c *Config) { c.Batch.JitterFraction = 1.5 },
			wantField: "batch.jitter_fraction",
		},
		{
			name:      "negative jitter",
			mutate:    func(c *Config) { c.Batch.JitterFraction = -0.1 },
			wantField: "batch.jitter_fraction",
		},
		{
			name:      "non-positive per task timeout",
			mutate:    func(c *Config) { c.Batch.PerTaskTimeout = 0 },
			wantField: "batch.per_task_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasFieldError(errs, tt.wantField) {
				t.Errorf("expected error for %s, got: %v", tt.wantField, errs)
			}
		})
	}
}

func TestConfig_Validate_Coordinates(t *testing.T) {
	t.Run("invalid source assembly", func(t *testing.T) {
		cfg := Default()
		cfg.Coordinates.SourceAssembly = "hg17"
		errs := cfg.Validate()
		if !hasFieldError(errs, "coordinates.source_assembly") {
			t.Errorf("expected error for invalid source assembly, got: %v", errs)
		}
	})

	t.Run("invalid target assembly", func(t *testing.T) {
		cfg := Default()
		cfg.Coordinates.TargetAssembly = "grch38"
		errs := cfg.Validate()
		if !hasFieldError(errs, "coordinates.target_assembly") {
			t.Errorf("expected error for invalid target assembly, got: %v", errs)
		}
	})

	t.Run("empty target is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Coordinates.TargetAssembly = ""
		errs := cfg.Validate()
		if hasFieldError(errs, "coordinates.target_assembly") {
			t.Errorf("empty target assembly should be valid, got: %v", errs)
		}
	})

	t.Run("conversion requires mapping file", func(t *testing.T) {
		cfg := Default()
		cfg.Coordinates.SourceAssembly = "hg19"
		cfg.Coordinates.TargetAssembly = "hg38"
		cfg.Coordinates.MappingFile = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "coordinates.mapping_file") {
			t.Errorf("expected error for missing mapping file, got: %v", errs)
		}
	})

	t.Run("missing mapping file on disk", func(t *testing.T) {
		cfg := Default()
		cfg.Coordinates.MappingFile = "/nonexistent/mapping.txt"
		errs := cfg.Validate()
		if !hasFieldError(errs, "coordinates.mapping_file") {
			t.Errorf("expected error for nonexistent mapping file, got: %v", errs)
		}
	})

	t.Run("existing mapping file passes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.txt")
		if err := os.WriteFile(path, []byte("1 100 1 164\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.Coordinates.SourceAssembly = "hg19"
		cfg.Coordinates.TargetAssembly = "hg38"
		cfg.Coordinates.MappingFile = path
		errs := cfg.Validate()
		if hasFieldError(errs, "coordinates.mapping_file") {
			t.Errorf("existing mapping file should be valid, got: %v", errs)
		}
	})
}

func TestConfig_Validate_Browser(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		cfg := Default()
		cfg.Browser.URL = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "browser.url") {
			t.Errorf("expected error for empty url, got: %v", errs)
		}
	})

	t.Run("non-http url", func(t *testing.T) {
		cfg := Default()
		cfg.Browser.URL = "ftp://example.com"
		errs := cfg.Validate()
		if !hasFieldError(errs, "browser.url") {
			t.Errorf("expected error for non-http url, got: %v", errs)
		}
	})

	t.Run("non-positive page load timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Browser.PageLoadTimeout = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "browser.page_load_timeout") {
			t.Errorf("expected error for zero timeout, got: %v", errs)
		}
	})
}

func TestConfig_Validate_Primer(t *testing.T) {
	cfg := Default()
	cfg.Primer.PCRMax = cfg.Primer.PCRMin
	errs := cfg.Validate()
	if !hasFieldError(errs, "primer.pcr_max") {
		t.Errorf("expected primer error surfaced under primer.pcr_max, got: %v", errs)
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "trace"
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.level") {
			t.Errorf("expected error for invalid level, got: %v", errs)
		}
	})

	t.Run("empty dir", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Dir = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.dir") {
			t.Errorf("expected error for empty dir, got: %v", errs)
		}
	})
}

func TestConfig_Validate_Output(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		hasError bool
	}{
		{"valid tsv", "tsv", false},
		{"valid jsonl", "jsonl", false},
		{"empty is valid", "", false},
		{"invalid format", "xml", true},
		{"case sensitive", "TSV", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Output.Format = tt.format
			errs := cfg.Validate()

			got := hasFieldError(errs, "output.format")
			if got != tt.hasError {
				t.Errorf("Validate() for format=%q: hasError=%v, want %v", tt.format, got, tt.hasError)
			}
		})
	}
}
