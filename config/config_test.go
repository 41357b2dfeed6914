package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, expected :8080", cfg.HTTPAddr)
	}
	if cfg.DBPort != "3306" {
		t.Errorf("DBPort = %q, expected 3306", cfg.DBPort)
	}
	if cfg.JWTExpiry != 72*time.Hour {
		t.Errorf("JWTExpiry = %v, expected 72h", cfg.JWTExpiry)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_EXPIRY_HOURS", "1")

	cfg := Load()

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, expected :9999", cfg.HTTPAddr)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, expected 3", cfg.RedisDB)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL = false, expected true")
	}
	if cfg.JWTExpiry != time.Hour {
		t.Errorf("JWTExpiry = %v, expected 1h", cfg.JWTExpiry)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if got := getEnvInt("REDIS_DB", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, expected fallback 7", got)
	}
}
