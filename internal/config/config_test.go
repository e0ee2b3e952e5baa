package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Batch.Workers != 2 {
		t.Errorf("Batch.Workers = %d, want 2", cfg.Batch.Workers)
	}
	if cfg.Batch.MaxAttempts != 3 {
		t.Errorf("Batch.MaxAttempts = %d, want 3", cfg.Batch.MaxAttempts)
	}
	if cfg.Coordinates.SourceAssembly != "hg19" {
		t.Errorf("Coordinates.SourceAssembly = %q, want hg19", cfg.Coordinates.SourceAssembly)
	}
	if cfg.Coordinates.TargetAssembly != "" {
		t.Errorf("Coordinates.TargetAssembly = %q, want empty (no conversion)", cfg.Coordinates.TargetAssembly)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should default to true")
	}
	if cfg.Primer.PCRMin != 100 || cfg.Primer.PCRMax != 1200 {
		t.Errorf("Primer product range = %d-%d, want 100-1200", cfg.Primer.PCRMin, cfg.Primer.PCRMax)
	}
	if cfg.Output.Format != "tsv" {
		t.Errorf("Output.Format = %q, want tsv", cfg.Output.Format)
	}
}

func TestBatchConfig_RetryPolicy(t *testing.T) {
	b := BatchConfig{
		MaxAttempts:    4,
		BaseDelay:      2 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     1.5,
		JitterFraction: 0.1,
	}

	p := b.RetryPolicy()
	if p.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", p.MaxAttempts)
	}
	if p.BaseDelay != 2*time.Second || p.MaxDelay != 30*time.Second {
		t.Errorf("delays = %v/%v, want 2s/30s", p.BaseDelay, p.MaxDelay)
	}
	if p.Multiplier != 1.5 || p.JitterFraction != 0.1 {
		t.Errorf("multiplier/jitter = %v/%v, want 1.5/0.1", p.Multiplier, p.JitterFraction)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("derived policy should validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}
	if cfg.Batch.Workers != Default().Batch.Workers {
		t.Errorf("Workers = %d, want %d", cfg.Batch.Workers, Default().Batch.Workers)
	}
	if cfg.Batch.PerTaskTimeout != 5*time.Minute {
		t.Errorf("PerTaskTimeout = %v, want 5m", cfg.Batch.PerTaskTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("batch.workers", 4)
	viper.Set("output.format", "jsonl")
	viper.Set("primer.num_return", 5)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Batch.Workers)
	}
	if cfg.Output.Format != "jsonl" {
		t.Errorf("Format = %q, want jsonl", cfg.Output.Format)
	}
	if cfg.Primer.NumReturn != 5 {
		t.Errorf("NumReturn = %d, want 5", cfg.Primer.NumReturn)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("batch.workers", 0)
	viper.Set("output.format", "xml")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for invalid values")
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error should be ValidationErrors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestGet_FallsBackToDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("batch.workers", -1)

	cfg := Get()
	if cfg.Batch.Workers != Default().Batch.Workers {
		t.Errorf("Get() should fall back to defaults, Workers = %d", cfg.Batch.Workers)
	}
}
