package redis

import (
	"testing"
	"time"

	"github.com/mediconnect/mediconnect_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", PoolSize: 50, ReadTimeoutSeconds: 7})

	if cfg.Addr != "cache:6379" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.PoolSize != 50 {
		t.Errorf("PoolSize = %d, want 50", cfg.PoolSize)
	}
	if cfg.MinIdleConns != DefaultConfig().MinIdleConns {
		t.Errorf("MinIdleConns = %d, want default", cfg.MinIdleConns)
	}
	if cfg.ReadTimeout() != 7*time.Second {
		t.Errorf("ReadTimeout = %v, want 7s", cfg.ReadTimeout())
	}
	if cfg.DialTimeout() != 5*time.Second {
		t.Errorf("DialTimeout = %v, want 5s", cfg.DialTimeout())
	}
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	if _, err := NewRedis(Config{}); err == nil {
		t.Error("expected error for empty addr")
	}
}
