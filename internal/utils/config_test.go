package utils

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("expected ErrJWTSecretMissing, got %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Fatalf("expected mongo driver by default, got %s", cfg.StoreDriver)
	}
	if cfg.ServerPort != "5001" {
		t.Fatalf("expected port 5001, got %s", cfg.ServerPort)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORE_DRIVER", "sqlite")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown store driver")
	}
}

func TestLoadConfigClampsBcryptCost(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BCRYPT_COST", "1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.BcryptCost != 4 {
		t.Fatalf("expected cost clamped to bcrypt.MinCost, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadConfigParsesBcryptCost(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORE_DRIVER", "memory")

	cases := map[string]int{
		"12":   12,
		" 11 ": 11,
		"abc":  10,
		"99":   31,
	}
	for raw, want := range cases {
		t.Setenv("BCRYPT_COST", raw)

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("BCRYPT_COST=%q: unexpected error: %v", raw, err)
		}
		if cfg.Auth.BcryptCost != want {
			t.Fatalf("BCRYPT_COST=%q: expected %d, got %d", raw, want, cfg.Auth.BcryptCost)
		}
	}
}

func TestBuildDSNPrefersExplicitDSN(t *testing.T) {
	cfg := PostgresConfig{DSN: "postgres://x"}
	if got := cfg.BuildDSN(); got != "postgres://x" {
		t.Fatalf("unexpected dsn %s", got)
	}

	cfg = PostgresConfig{User: "u", Password: "p", Host: "h", Port: 5432, Database: "d"}
	if got := cfg.BuildDSN(); got != "postgres://u:p@h:5432/d" {
		t.Fatalf("unexpected dsn %s", got)
	}
}
