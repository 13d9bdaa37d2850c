package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "REQUEST_TIMEOUT", "WORKERS", "STORAGE_BACKEND", "MAX_IMAGE_PIXELS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Expected default address, got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.Workers != 0 {
		t.Errorf("Expected 0 workers (NumCPU), got %d", cfg.Workers)
	}
	if cfg.StorageBackend != BackendHTTP {
		t.Errorf("Expected http backend, got %s", cfg.StorageBackend)
	}
	if cfg.MaxImagePixels != 40_000_000 {
		t.Errorf("Expected default pixel limit, got %d", cfg.MaxImagePixels)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORKERS", "6")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("STORAGE_BACKEND", "LOCAL")
	t.Setenv("LOCAL_IMAGE_ROOT", "/data")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.Workers != 6 || cfg.AnalysisTimeout != 5*time.Second {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.StorageBackend != BackendLocal || cfg.LocalImageRoot != "/data" {
		t.Errorf("Expected local backend rooted at /data, got %s %s", cfg.StorageBackend, cfg.LocalImageRoot)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"PORT": "99999"}, "invalid PORT"},
		{"negative workers", map[string]string{"WORKERS": "-2"}, "WORKERS"},
		{"zero pixels", map[string]string{"MAX_IMAGE_PIXELS": "0"}, "MAX_IMAGE_PIXELS"},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "ftp"}, "unsupported STORAGE_BACKEND"},
		{"azure without credentials", map[string]string{"STORAGE_BACKEND": "azure", "AZURE_STORAGE_ACCOUNT": "", "AZURE_STORAGE_KEY": ""}, "AZURE_STORAGE_ACCOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("Expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWorkersFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 0},
		{"4", 4},
		{" 12 ", 12},
		{"many", 0},
	}
	for _, tt := range tests {
		t.Setenv("WORKERS", tt.value)
		if got := WorkersFromEnv(); got != tt.want {
			t.Errorf("WORKERS=%q: got %d, want %d", tt.value, got, tt.want)
		}
	}
}
