package database

import (
	"testing"
	"time"

	"github.com/mediconnect/mediconnect_backend/config"
)

func TestFromCentralConfig_KeepsPoolDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.DatabaseConfig{
		Host:   "db",
		Port:   5433,
		User:   "clinic",
		DBName: "mediconnect",
	})

	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want disable", cfg.SSLMode)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime() != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v", cfg.ConnMaxLifetime())
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "require"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
