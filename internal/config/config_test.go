package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Port)
	}
	if cfg.DataSource != "file" {
		t.Errorf("expected file data source, got %s", cfg.DataSource)
	}
	if cfg.OutlierZ != 3 {
		t.Errorf("expected outlier cut-off 3, got %v", cfg.OutlierZ)
	}
	if cfg.TopN != 20 {
		t.Errorf("expected top 20, got %d", cfg.TopN)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("expected 10m cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.CachePrefix != "dataviz:" {
		t.Errorf("expected dataviz: cache prefix, got %q", cfg.CachePrefix)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoad_R2RequiresBucket(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATA_SOURCE", "r2")
	t.Setenv("R2_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for r2 source without endpoint")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OUTLIER_Z", "2.5")
	t.Setenv("TOP_N", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , https://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OutlierZ != 2.5 {
		t.Errorf("expected 2.5, got %v", cfg.OutlierZ)
	}
	if cfg.TopN != 20 {
		t.Errorf("invalid TOP_N should fall back to 20, got %d", cfg.TopN)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}
