package config

import (
	"os"
	"strconv"
)

// Server holds the settings of the theory HTTP server, read from the environment.
type Server struct {
	Port         string
	MaxBodyBytes int64
}

func LoadServer() Server {
	cfg := Server{
		Port:         envOr("THEORY_PORT", "8091"),
		MaxBodyBytes: envInt64("THEORY_MAX_BODY_BYTES", 10<<20),
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
