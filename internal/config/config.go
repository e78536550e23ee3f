// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the portal configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Storage drivers.
const (
	StorageLocal = "local"
	StorageB2    = "b2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CAMPUSLINK_DB_PATH" envDefault:"./data/campuslink.db"`
	SessionSecret string `env:"CAMPUSLINK_SESSION_SECRET,required"`
	ServerHost    string `env:"CAMPUSLINK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CAMPUSLINK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CAMPUSLINK_ENV" envDefault:"development"`
	LogLevel      string `env:"CAMPUSLINK_LOG_LEVEL" envDefault:"info"`

	// Attachments
	StorageDriver string `env:"CAMPUSLINK_STORAGE" envDefault:"local"`
	UploadsDir    string `env:"CAMPUSLINK_UPLOADS_DIR" envDefault:"./uploads"`
	MaxUploadMB   int    `env:"CAMPUSLINK_MAX_UPLOAD_MB" envDefault:"20"`
	B2AccountID   string `env:"CAMPUSLINK_B2_ACCOUNT_ID"`
	B2AppKey      string `env:"CAMPUSLINK_B2_APP_KEY"`
	B2Bucket      string `env:"CAMPUSLINK_B2_BUCKET"`

	// Cache configuration
	RedisURL     string `env:"CAMPUSLINK_REDIS_URL"`                             // Optional Redis URL for shared caching
	CachePrefix  string `env:"CAMPUSLINK_CACHE_PREFIX" envDefault:"campuslink:"` // Redis key prefix
	CacheTTL     int    `env:"CAMPUSLINK_CACHE_TTL" envDefault:"60"`             // Dashboard stats TTL in seconds
	CacheMaxSize int    `env:"CAMPUSLINK_CACHE_MAX_SIZE" envDefault:"1000"`      // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"CAMPUSLINK_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Housekeeping
	SessionRetentionDays int `env:"CAMPUSLINK_SESSION_RETENTION_DAYS" envDefault:"90"`
	EventRetentionDays   int `env:"CAMPUSLINK_EVENT_RETENTION_DAYS" envDefault:"30"`

	// Seeding configuration
	DoSeed bool `env:"CAMPUSLINK_DO_SEED" envDefault:"false"` // Create the demo accounts
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SessionRetention returns how long userSessions records are kept.
func (c Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionDays) * 24 * time.Hour
}

// EventRetention returns how long event log records are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// MinSessionSecretLength is the minimum required length for the session secret.
// It doubles as the 32-byte CSRF key.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CAMPUSLINK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("CAMPUSLINK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAMPUSLINK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("CAMPUSLINK_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

func (c *Config) validateStorage() error {
	switch c.StorageDriver {
	case StorageLocal:
		return nil
	case StorageB2:
		var missing []string
		if c.B2AccountID == "" {
			missing = append(missing, "CAMPUSLINK_B2_ACCOUNT_ID")
		}
		if c.B2AppKey == "" {
			missing = append(missing, "CAMPUSLINK_B2_APP_KEY")
		}
		if c.B2Bucket == "" {
			missing = append(missing, "CAMPUSLINK_B2_BUCKET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("b2 storage requires %s", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("CAMPUSLINK_STORAGE must be %q or %q, got %q", StorageLocal, StorageB2, c.StorageDriver)
	}
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
