package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/batch"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/primer"
)

// Config represents the complete primerbatch configuration
type Config struct {
	Batch       BatchConfig       `mapstructure:"batch"`
	Coordinates CoordinatesConfig `mapstructure:"coordinates"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Primer      primer.Params     `mapstructure:"primer"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Output      OutputConfig      `mapstructure:"output"`
}

// BatchConfig controls worker parallelism and the retry schedule
type BatchConfig struct {
	// Workers is the number of concurrent browser sessions (default: 2)
	Workers int `mapstructure:"workers"`
	// MaxAttempts is the total dispatch attempts per task, including the first (default: 3)
	MaxAttempts int `mapstructure:"max_attempts"`
	// BaseDelay is the backoff delay before the first retry (default: 5s)
	BaseDelay time.Duration `mapstructure:"base_delay"`
	// MaxDelay caps the backoff delay (default: 60s)
	MaxDelay time.Duration `mapstructure:"max_delay"`
	// Multiplier grows the delay per additional attempt (default: 2.0)
	Multiplier float64 `mapstructure:"multiplier"`
	// JitterFraction adds up to this fraction of random extra delay (default: 0.2)
	JitterFraction float64 `mapstructure:"jitter_fraction"`
	// PerTaskTimeout bounds a single submission attempt (default: 5m)
	PerTaskTimeout time.Duration `mapstructure:"per_task_timeout"`
}

// RetryPolicy returns the retry schedule described by this section.
func (b *BatchConfig) RetryPolicy() batch.RetryPolicy {
	return batch.RetryPolicy{
		MaxAttempts:    b.MaxAttempts,
		BaseDelay:      b.BaseDelay,
		MaxDelay:       b.MaxDelay,
		Multiplier:     b.Multiplier,
		JitterFraction: b.JitterFraction,
	}
}

// CoordinatesConfig controls how input coordinates are interpreted
type CoordinatesConfig struct {
	// SourceAssembly is the assembly input coordinates are expressed in (default: "hg19")
	SourceAssembly string `mapstructure:"source_assembly"`
	// TargetAssembly converts coordinates before submission when set.
	// Empty keeps coordinates in the source assembly.
	TargetAssembly string `mapstructure:"target_assembly"`
	// MappingFile is the path to a whitespace-delimited coordinate mapping
	// table (chrom pos new_chrom new_pos). Required when TargetAssembly
	// differs from SourceAssembly.
	MappingFile string `mapstructure:"mapping_file"`
}

// BrowserConfig controls the headless browser sessions
type BrowserConfig struct {
	// URL of the Primer-BLAST form
	URL string `mapstructure:"url"`
	// Bin overrides the browser binary path (empty = auto-detect)
	Bin string `mapstructure:"bin"`
	// Headless runs the browser without a window (default: true)
	Headless bool `mapstructure:"headless"`
	// PageLoadTimeout bounds the initial navigation (default: 30s)
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
}

// LoggingConfig controls structured log output
type LoggingConfig struct {
	// Dir is the directory log files are written to (default: "logs")
	Dir string `mapstructure:"dir"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// OutputConfig controls where and how terminal records are written
type OutputConfig struct {
	// Format is the record format: "tsv" or "jsonl" (default: "tsv")
	Format string `mapstructure:"format"`
	// Path is the output file; empty writes to stdout
	Path string `mapstructure:"path"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	retry := batch.DefaultRetryPolicy()
	return &Config{
		Batch: BatchConfig{
			Workers:        2,
			MaxAttempts:    retry.MaxAttempts,
			BaseDelay:      retry.BaseDelay,
			MaxDelay:       retry.MaxDelay,
			Multiplier:     retry.Multiplier,
			JitterFraction: retry.JitterFraction,
			PerTaskTimeout: 5 * time.Minute,
		},
		Coordinates: CoordinatesConfig{
			SourceAssembly: coordinate.AssemblyHG19,
			TargetAssembly: "",
			MappingFile:    "",
		},
		Browser: BrowserConfig{
			URL:             "https://www.ncbi.nlm.nih.gov/tools/primer-blast",
			Bin:             "",
			Headless:        true,
			PageLoadTimeout: 30 * time.Second,
		},
		Primer: primer.DefaultParams(),
		Logging: LoggingConfig{
			Dir:   "logs",
			Level: "info",
		},
		Output: OutputConfig{
			Format: "tsv",
			Path:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Batch defaults
	viper.SetDefault("batch.workers", defaults.Batch.Workers)
	viper.SetDefault("batch.max_attempts", defaults.Batch.MaxAttempts)
	viper.SetDefault("batch.base_delay", defaults.Batch.BaseDelay)
	viper.SetDefault("batch.max_delay", defaults.Batch.MaxDelay)
	viper.SetDefault("batch.multiplier", defaults.Batch.Multiplier)
	viper.SetDefault("batch.jitter_fraction", defaults.Batch.JitterFraction)
	viper.SetDefault("batch.per_task_timeout", defaults.Batch.PerTaskTimeout)

	// Coordinates defaults
	viper.SetDefault("coordinates.source_assembly", defaults.Coordinates.SourceAssembly)
	viper.SetDefault("coordinates.target_assembly", defaults.Coordinates.TargetAssembly)
	viper.SetDefault("coordinates.mapping_file", defaults.Coordinates.MappingFile)

	// Browser defaults
	viper.SetDefault("browser.url", defaults.Browser.URL)
	viper.SetDefault("browser.bin", defaults.Browser.Bin)
	viper.SetDefault("browser.headless", defaults.Browser.Headless)
	viper.SetDefault("browser.page_load_timeout", defaults.Browser.PageLoadTimeout)

	// Primer defaults
	p := defaults.Primer
	viper.SetDefault("primer.pcr_min", p.PCRMin)
	viper.SetDefault("primer.pcr_max", p.PCRMax)
	viper.SetDefault("primer.tm_min", p.TmMin)
	viper.SetDefault("primer.tm_opt", p.TmOpt)
	viper.SetDefault("primer.tm_max", p.TmMax)
	viper.SetDefault("primer.tm_max_diff", p.TmMaxDiff)
	viper.SetDefault("primer.size_min", p.SizeMin)
	viper.SetDefault("primer.size_opt", p.SizeOpt)
	viper.SetDefault("primer.size_max", p.SizeMax)
	viper.SetDefault("primer.num_return", p.NumReturn)
	viper.SetDefault("primer.max_end_gc", p.MaxEndGC)
	viper.SetDefault("primer.max_poly_x", p.MaxPolyX)
	viper.SetDefault("primer.extension_left", p.ExtensionLeft)
	viper.SetDefault("primer.extension_right", p.ExtensionRight)

	// Logging defaults
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.path", defaults.Output.Path)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "primerbatch")
	}
	// Fall back to ~/.config/primerbatch
	home, err := os.UserHomeDir()
	if err != nil {
		return ".primerbatch"
	}
	return filepath.Join(home, ".config", "primerbatch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
