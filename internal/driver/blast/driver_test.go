package blast

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.URL != PrimerBlastURL {
		t.Errorf("URL = %q, want %q", cfg.URL, PrimerBlastURL)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
	if cfg.PageLoadTimeout != 30*time.Second {
		t.Errorf("PageLoadTimeout = %v, want 30s", cfg.PageLoadTimeout)
	}
}

func TestJobKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "standard results url",
			url:  "https://www.ncbi.nlm.nih.gov/tools/primer-blast/primertool.cgi?job_key=abc123XYZ",
			want: "abc123XYZ",
		},
		{
			name: "extra query params",
			url:  "https://www.ncbi.nlm.nih.gov/tools/primer-blast/primertool.cgi?ctg_time=1&job_key=k-42&x=1",
			want: "k-42",
		},
		{
			name: "no job key",
			url:  "https://www.ncbi.nlm.nih.gov/tools/primer-blast/",
			want: "",
		},
		{
			name: "unparseable",
			url:  "://not-a-url",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jobKeyFromURL(tt.url); got != tt.want {
				t.Errorf("jobKeyFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
