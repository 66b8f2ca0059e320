package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.App.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected driver from env, got %s", cfg.Database.Driver)
	}
	if cfg.JWT.AccessTTL != time.Hour {
		t.Errorf("expected 1h access ttl, got %s", cfg.JWT.AccessTTL)
	}
	if cfg.Storage.MaxUploadSize != 5<<20 {
		t.Errorf("expected 5MB upload limit, got %d", cfg.Storage.MaxUploadSize)
	}
	if cfg.Security.PasswordHasher != HasherBcrypt {
		t.Errorf("expected bcrypt hasher, got %s", cfg.Security.PasswordHasher)
	}
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "JWT_SECRET=file-secret\nPORT=9090\nREDIS_ADDR=localhost:6379\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("expected secret from .env, got %q", cfg.JWT.Secret)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.App.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected redis addr from .env, got %q", cfg.Redis.Addr)
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}
