package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenlink.yaml")
	if err := os.WriteFile(path, []byte(""), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Fatalf("expected default backend url, got %q", cfg.BackendURL)
	}
	if cfg.StaleTime != DefaultStaleTime {
		t.Fatalf("expected default stale time, got %v", cfg.StaleTime)
	}
	if cfg.CacheSize != DefaultCacheSize {
		t.Fatalf("expected default cache size, got %d", cfg.CacheSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenlink.yaml")
	body := "backend_url: http://backend.test:9000\nstale_time: 5s\ncache_size: 32\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://backend.test:9000" {
		t.Fatalf("backend url not loaded: %q", cfg.BackendURL)
	}
	if cfg.StaleTime != 5*time.Second {
		t.Fatalf("stale time not loaded: %v", cfg.StaleTime)
	}
	if cfg.CacheSize != 32 {
		t.Fatalf("cache size not loaded: %d", cfg.CacheSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenlink.yaml")
	if err := os.WriteFile(path, []byte("cache_size: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(WithConfigFile(path)); err == nil {
		t.Fatal("expected validation error for negative cache size")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenlink.yaml")
	if err := os.WriteFile(path, []byte("backend_url: http://file.test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZENLINK_BACKEND_URL", "http://env.test")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://env.test" {
		t.Fatalf("env should override file, got %q", cfg.BackendURL)
	}
}
