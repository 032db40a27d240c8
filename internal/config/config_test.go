package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("env_overrides_defaults", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("JWT_EXPIRES_IN", "15m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("expected port 9090, got %s", cfg.Port)
		}
		if cfg.DBDriver != "sqlite" {
			t.Errorf("expected sqlite driver, got %s", cfg.DBDriver)
		}
		if cfg.JWTExpirationDur != 15*time.Minute {
			t.Errorf("expected 15m expiry, got %s", cfg.JWTExpirationDur)
		}
	})

	t.Run("invalid_duration_falls_back", func(t *testing.T) {
		t.Setenv("JWT_EXPIRES_IN", "soon")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected fallback of 24h, got %s", cfg.JWTExpirationDur)
		}
	})

	t.Run("toml_file_then_env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "juntos.toml")
		content := "port = \"7000\"\ndb_driver = \"sqlite\"\nsqlite_path = \"/tmp/app.db\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("PORT", "7001")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SQLitePath != "/tmp/app.db" {
			t.Errorf("expected sqlite path from file, got %s", cfg.SQLitePath)
		}
		if cfg.Port != "7001" {
			t.Errorf("expected env to win over file, got %s", cfg.Port)
		}
	})

	t.Run("unsupported_driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})
}
