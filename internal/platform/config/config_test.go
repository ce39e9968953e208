package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "JWT_SECRET", "TOKEN_TTL",
		"DISTRIBUTION_POOL_SIZE", "UPLOAD_MAX_BYTES", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "agentdesk" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected service defaults %+v", cfg)
	}
	if cfg.DistributionPoolSize != 5 || cfg.UploadMaxBytes != 5*1024*1024 {
		t.Fatalf("unexpected distribution defaults pool=%d max=%d", cfg.DistributionPoolSize, cfg.UploadMaxBytes)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Fatalf("unexpected ambient defaults %+v", cfg)
	}
	if !cfg.InMemory() {
		t.Fatal("expected in-memory mode without dsn")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISTRIBUTION_POOL_SIZE", "3")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("ENABLE_SWAGGER", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DistributionPoolSize != 3 || cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" || cfg.EnableSwagger {
		t.Fatalf("unexpected ambient overrides %+v", cfg)
	}
}

func TestLoadReportsEveryInvalidSetting(t *testing.T) {
	t.Setenv("DISTRIBUTION_POOL_SIZE", "five")
	t.Setenv("UPLOAD_MAX_BYTES", "-1")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, name := range []string{"DISTRIBUTION_POOL_SIZE", "UPLOAD_MAX_BYTES", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in %q", name, err.Error())
		}
	}
}

func TestValidateRequiresSecretWithDatabase(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/agentdesk")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected jwt secret error, got %v", err)
	}
}
