// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env        string
	HTTPAddr   string
	AdminToken string

	// DATABASE_URL is optional; without it the run-report store is
	// disabled and simulations run fire-and-forget.
	DatabaseURL string
	AutoMigrate bool

	KafkaBrokers []string
	KafkaTopic   string

	Orders int
	// Seed 0 means derive one from the clock at startup.
	Seed int64

	DuplicateProbability   float64
	OutOfOrderProbability  float64
	LateArrivalProbability float64

	EventDelay       time.Duration
	LateArrivalDelay time.Duration
	FlushTimeout     time.Duration
}

func Load() Config {
	return Config{
		Env:        getenv("ENV", "dev"),
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		AdminToken: getenv("ADMIN_TOKEN", ""),

		DatabaseURL: getenv("DATABASE_URL", ""),
		AutoMigrate: getenvBool("AUTO_MIGRATE", true),

		KafkaBrokers: splitAndTrim(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "orders.events.raw"),

		Orders: getenvInt("ORDERS", 20),
		Seed:   getenvInt64("SEED", 0),

		DuplicateProbability:   getenvFloat("P_DUPLICATE", 0.15),
		OutOfOrderProbability:  getenvFloat("P_OUT_OF_ORDER", 0.20),
		LateArrivalProbability: getenvFloat("P_LATE_ARRIVAL", 0.10),

		EventDelay:       getenvDuration("EVENT_DELAY", time.Second),
		LateArrivalDelay: getenvDuration("LATE_ARRIVAL_DELAY", 5*time.Second),
		FlushTimeout:     getenvDuration("FLUSH_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, defaultValue string) string {
	v := os.Getenv(key)
	if v != "" {
		return v
	}
	return defaultValue
}

func getenvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getenvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getenvInt64(key string, defaultValue int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getenvFloat(key string, defaultValue float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
