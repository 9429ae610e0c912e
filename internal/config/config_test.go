package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOCK_TIMEOUT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("expected default lock timeout 5s, got %s", cfg.LockTimeout)
	}
	if cfg.FulfillmentTimeout != 30*time.Second {
		t.Errorf("expected default fulfillment timeout 30s, got %s", cfg.FulfillmentTimeout)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no kafka brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOCK_TIMEOUT", "750ms")
	t.Setenv("JWT_EXPIRES_IN", "not-a-duration")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LockTimeout != 750*time.Millisecond {
		t.Errorf("expected lock timeout 750ms, got %s", cfg.LockTimeout)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("invalid duration should fall back to 24h, got %s", cfg.JWTExpirationDur)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
