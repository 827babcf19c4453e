package config

import (
	"encoding/base32"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	SessionSecret string
	TOTPSecret    string
	TOTPIssuer    string
	TOTPAccount   string
	DBPath        string
	SecureCookies bool

	SessionTTLHours    int
	LockoutMaxAttempts int
	LockoutDurationMin int

	MetricsEnabled bool
	DBMaxOpenConns int
	DBMaxIdleConns int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("APP_PORT", "3000"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		TOTPSecret:    getEnv("TOTP_SECRET", ""),
		TOTPIssuer:    getEnv("TOTP_ISSUER", "stash"),
		TOTPAccount:   getEnv("TOTP_ACCOUNT", "operator"),
		DBPath:        getEnv("DB_PATH", "./stash.db"),
		SecureCookies: getEnv("SECURE_COOKIES", "false") == "true",

		SessionTTLHours:    getEnvInt("SESSION_TTL_HOURS", 24),
		LockoutMaxAttempts: getEnvInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDurationMin: getEnvInt("LOCKOUT_DURATION_MIN", 15),

		MetricsEnabled: getEnv("METRICS_ENABLED", "false") == "true",
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		log.Println("WARNING: SESSION_SECRET is shorter than 32 characters — use a longer secret in production")
	}

	if cfg.TOTPSecret == "" {
		return nil, fmt.Errorf("TOTP_SECRET is required")
	}
	cfg.TOTPSecret = normalizeBase32(cfg.TOTPSecret)
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(cfg.TOTPSecret); err != nil {
		return nil, fmt.Errorf("TOTP_SECRET is not valid base32: %w", err)
	}

	if cfg.SessionTTLHours < 1 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be at least 1")
	}
	if cfg.LockoutMaxAttempts < 1 {
		return nil, fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.LockoutDurationMin < 1 {
		return nil, fmt.Errorf("LOCKOUT_DURATION_MIN must be at least 1")
	}

	return cfg, nil
}

// normalizeBase32 uppercases the secret and strips spaces and padding, the form
// authenticator apps expect when a secret is typed in manually.
func normalizeBase32(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	return strings.TrimRight(s, "=")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
