package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/oakhurst/talentpipe/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("TP_ADDR")
	_ = os.Unsetenv("TP_JWT_SECRET")
	_ = os.Unsetenv("TP_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "talentpipe.db" {
		t.Fatalf("unexpected DatabasePath: got %q", cfg.DatabasePath)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v", cfg.TokenDuration)
	}
	if cfg.GDPR.SweepInterval != 24*time.Hour {
		t.Fatalf("unexpected GDPR.SweepInterval: got %v", cfg.GDPR.SweepInterval)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Setenv("TP_ADDR", ":9999")
	os.Setenv("TP_DATABASE_PATH", "env.db")
	defer os.Unsetenv("TP_ADDR")
	defer os.Unsetenv("TP_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("unexpected Addr: got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "env.db" {
		t.Fatalf("unexpected DatabasePath: got %q", cfg.DatabasePath)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nworker_count: 2\ngdpr:\n  sweep_interval: \"6h\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if cfg.WorkerCount != 2 {
		t.Fatalf("unexpected WorkerCount: got %d", cfg.WorkerCount)
	}
	if cfg.GDPR.SweepInterval != 6*time.Hour {
		t.Fatalf("unexpected GDPR.SweepInterval: got %v", cfg.GDPR.SweepInterval)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	os.Setenv("TP_ENV", "production")
	defer os.Unsetenv("TP_ENV")

	cfg := &config.Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "talentpipe.db",
		TokenDuration: 1 * time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	os.Setenv("TP_ENV", "development")
	defer os.Unsetenv("TP_ENV")

	cfg := &config.Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "talentpipe.db",
		TokenDuration: 1 * time.Hour,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	os.Setenv("TP_ENV", "development")
	defer os.Unsetenv("TP_ENV")

	cfg := &config.Config{
		Addr:          ":8080",
		JWTSecret:     "strongsecret",
		APITimeout:    5 * time.Second,
		DatabasePath:  "talentpipe.db",
		TokenDuration: 1 * time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.WorkerCount <= 0 {
		t.Fatalf("expected WorkerCount default to be populated")
	}
	if cfg.RateLimit <= 0 {
		t.Fatalf("expected RateLimit default to be populated")
	}
	if cfg.GDPR.BulkConcurrent <= 0 {
		t.Fatalf("expected GDPR.BulkConcurrent default to be populated")
	}
}
