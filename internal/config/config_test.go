package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("ENRICH_STAGE_TIMEOUT", "")
	t.Setenv("BATCH_MAX_PRODUCTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NATSSubject != "products.enrich" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.EnrichStageTimeout != 30*time.Second {
		t.Fatalf("expected 30s stage timeout, got %v", cfg.EnrichStageTimeout)
	}
	if cfg.BatchMaxProducts != 10 {
		t.Fatalf("expected batch limit 10, got %d", cfg.BatchMaxProducts)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MiB upload ceiling, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "api_port: \"9999\"\ngemini_model: from-file\nbatch_max_products: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("GEMINI_MODEL", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("file value not applied, got %q", cfg.APIPort)
	}
	if cfg.BatchMaxProducts != 5 {
		t.Fatalf("file value not applied, got %d", cfg.BatchMaxProducts)
	}
	if cfg.GeminiModel != "from-env" {
		t.Fatalf("env must override file, got %q", cfg.GeminiModel)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TREND_CACHE_TTL", "5m")
	t.Setenv("ENRICH_STAGE_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TrendCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", cfg.TrendCacheTTL)
	}
	if cfg.EnrichStageTimeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %v", cfg.EnrichStageTimeout)
	}
}
