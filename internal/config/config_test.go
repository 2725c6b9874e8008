// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "HTTP_ADDR", "ADMIN_TOKEN", "DATABASE_URL", "AUTO_MIGRATE",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "ORDERS", "SEED",
		"P_DUPLICATE", "P_OUT_OF_ORDER", "P_LATE_ARRIVAL",
		"EVENT_DELAY", "LATE_ARRIVAL_DELAY", "FLUSH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected default Env=dev, got %s", cfg.Env)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default HTTPAddr=:8080, got %s", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected empty default DatabaseURL, got %s", cfg.DatabaseURL)
	}
	if !cfg.AutoMigrate {
		t.Fatal("expected default AutoMigrate=true")
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected default brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "orders.events.raw" {
		t.Fatalf("unexpected default topic: %s", cfg.KafkaTopic)
	}
	if cfg.Orders != 20 {
		t.Fatalf("expected default Orders=20, got %d", cfg.Orders)
	}
	if cfg.Seed != 0 {
		t.Fatalf("expected default Seed=0, got %d", cfg.Seed)
	}
	if cfg.DuplicateProbability != 0.15 {
		t.Fatalf("expected default P_DUPLICATE=0.15, got %v", cfg.DuplicateProbability)
	}
	if cfg.OutOfOrderProbability != 0.20 {
		t.Fatalf("expected default P_OUT_OF_ORDER=0.20, got %v", cfg.OutOfOrderProbability)
	}
	if cfg.LateArrivalProbability != 0.10 {
		t.Fatalf("expected default P_LATE_ARRIVAL=0.10, got %v", cfg.LateArrivalProbability)
	}
	if cfg.EventDelay != time.Second {
		t.Fatalf("expected default EventDelay=1s, got %s", cfg.EventDelay)
	}
	if cfg.LateArrivalDelay != 5*time.Second {
		t.Fatalf("expected default LateArrivalDelay=5s, got %s", cfg.LateArrivalDelay)
	}
	if cfg.FlushTimeout != 10*time.Second {
		t.Fatalf("expected default FlushTimeout=10s, got %s", cfg.FlushTimeout)
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("KAFKA_TOPIC", "orders.events.test")
	t.Setenv("ORDERS", "100")
	t.Setenv("SEED", "42")
	t.Setenv("P_DUPLICATE", "0.5")
	t.Setenv("EVENT_DELAY", "250ms")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg := Load()

	if cfg.Env != "prod" {
		t.Fatalf("expected ENV override, got %s", cfg.Env)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "orders.events.test" {
		t.Fatalf("unexpected topic: %s", cfg.KafkaTopic)
	}
	if cfg.Orders != 100 {
		t.Fatalf("expected Orders=100, got %d", cfg.Orders)
	}
	if cfg.Seed != 42 {
		t.Fatalf("expected Seed=42, got %d", cfg.Seed)
	}
	if cfg.DuplicateProbability != 0.5 {
		t.Fatalf("expected P_DUPLICATE=0.5, got %v", cfg.DuplicateProbability)
	}
	if cfg.EventDelay != 250*time.Millisecond {
		t.Fatalf("expected EventDelay=250ms, got %s", cfg.EventDelay)
	}
	if cfg.AutoMigrate {
		t.Fatal("expected AUTO_MIGRATE override to false")
	}
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("ORDERS", "not-a-number")
	t.Setenv("P_DUPLICATE", "nope")
	t.Setenv("EVENT_DELAY", "soon")
	t.Setenv("AUTO_MIGRATE", "maybe")

	cfg := Load()

	if cfg.Orders != 20 {
		t.Fatalf("expected fallback Orders=20, got %d", cfg.Orders)
	}
	if cfg.DuplicateProbability != 0.15 {
		t.Fatalf("expected fallback P_DUPLICATE=0.15, got %v", cfg.DuplicateProbability)
	}
	if cfg.EventDelay != time.Second {
		t.Fatalf("expected fallback EventDelay=1s, got %s", cfg.EventDelay)
	}
	if !cfg.AutoMigrate {
		t.Fatal("expected fallback AutoMigrate=true")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a:1 ,, b:2,")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Fatalf("unexpected result: %v", got)
	}
}
