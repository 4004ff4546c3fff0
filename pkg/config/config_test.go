package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("expected App.Env to be dev, got %q", cfg.App.Env)
	}
	if cfg.Storage.Driver != StorageDriverSQLite || !cfg.Storage.UsesSQL() {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Storage.Driver)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected 10s api timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Login.Window != 15*time.Minute || cfg.Login.EmailLimit != 5 {
		t.Fatalf("unexpected login rate limit %+v", cfg.Login)
	}
	if cfg.Storage.Retention != 720*time.Hour {
		t.Fatalf("unexpected retention %v", cfg.Storage.Retention)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_DriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "postgres without dsn", env: map[string]string{EnvStorageDriver: StorageDriverPostgres}, wantErr: true},
		{name: "postgres with dsn", env: map[string]string{EnvStorageDriver: StorageDriverPostgres, EnvDBDSN: "postgres://u:p@localhost:5432/shop"}},
		{name: "redis without address", env: map[string]string{EnvStorageDriver: StorageDriverRedis}, wantErr: true},
		{name: "redis with url", env: map[string]string{EnvStorageDriver: StorageDriverRedis, EnvRedisURL: "redis://localhost:6379/0"}},
		{name: "memory", env: map[string]string{EnvStorageDriver: StorageDriverMemory}},
		{name: "unknown driver", env: map[string]string{EnvStorageDriver: "floppy"}, wantErr: true},
		{name: "zero timeout", env: map[string]string{EnvAPITimeout: "0s"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvCORSOrigins, "http://localhost:3000")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() || devConfig.IsProd() {
		t.Fatalf("unexpected helpers for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() || prodConfig.IsDev() {
		t.Fatalf("unexpected helpers for %q", prodConfig.Env)
	}
}
