package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration for the operational surface.
type Server struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// RedisConfig configures the optional latest-balance cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SnapshotTTL  time.Duration
}

// KafkaConfig configures the optional entity-change event publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FINBASE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("FINBASE_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("FINBASE_REDIS_URL"),
			PoolSize:     envInt("FINBASE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("FINBASE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("FINBASE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("FINBASE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("FINBASE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			SnapshotTTL:  envDuration("FINBASE_BALANCE_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: envList("FINBASE_KAFKA_BROKERS"),
			Topic:   envDefault("FINBASE_KAFKA_TOPIC", "finbase.entity-events"),
		},
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
