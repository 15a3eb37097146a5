package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RBOS_APP_ENV", "dev")
	t.Setenv("RBOS_APP_PORT", "8080")
	t.Setenv("RBOS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RBOS_JWT_SECRET", "test-secret")
	t.Setenv("RBOS_JWT_ISSUER", "rbos-test")
}

func TestLoadWithDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RBOS_DB_DSN", "postgres://rbos:pw@localhost:5432/rbos?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.App.IsDev() {
		t.Fatal("expected dev env")
	}
	if cfg.DB.DSN == "" {
		t.Fatal("expected DSN to survive")
	}
}

func TestLoadBuildsDSNFromLegacyVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RBOS_DB_HOST", "db.internal")
	t.Setenv("RBOS_DB_USER", "rbos")
	t.Setenv("RBOS_DB_PASSWORD", "pw")
	t.Setenv("RBOS_DB_NAME", "rbos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(cfg.DB.DSN, "db.internal:5432") {
		t.Fatalf("unexpected DSN: %s", cfg.DB.DSN)
	}
	if !strings.Contains(cfg.DB.DSN, "sslmode=disable") {
		t.Fatalf("expected sslmode in DSN: %s", cfg.DB.DSN)
	}
}

func TestLoadMissingDBConfig(t *testing.T) {
	setRequiredEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no DB config is present")
	}
}
