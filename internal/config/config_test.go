package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("BOT_OWNER_IDS", "")
	t.Setenv("RULE_CACHE_TTL_SECONDS", "")
	t.Setenv("RELAY_WORKERS", "")
	t.Setenv("RELAY_QUEUE_SIZE", "")
	t.Setenv("RELAY_RATE_PER_SECOND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MongoDBName != "relay_bot" {
		t.Fatalf("expected default db name, got %q", cfg.MongoDBName)
	}
	if cfg.RuleCacheTTLSeconds != 30 {
		t.Fatalf("expected default cache ttl 30, got %d", cfg.RuleCacheTTLSeconds)
	}
	if cfg.RelayWorkers != 4 || cfg.RelayQueueSize != 256 || cfg.RelayRatePerSecond != 25 {
		t.Fatalf("unexpected relay defaults: %+v", cfg)
	}
}

func TestLoadOwnerIDs(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("BOT_OWNER_IDS", "123, 456,789")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{123, 456, 789}
	if len(cfg.BotOwnerIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.BotOwnerIDs)
	}
	for i := range want {
		if cfg.BotOwnerIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.BotOwnerIDs)
		}
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad owner id", key: "BOT_OWNER_IDS", value: "abc"},
		{name: "bad worker count", key: "RELAY_WORKERS", value: "zero"},
		{name: "worker count below min", key: "RELAY_WORKERS", value: "0"},
		{name: "negative cache ttl", key: "RULE_CACHE_TTL_SECONDS", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_TOKEN", "test-token")
			t.Setenv("MONGO_URI", "mongodb://localhost:27017")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
