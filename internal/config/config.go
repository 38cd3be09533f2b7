// Package config resolves client settings from flags, the environment and an
// optional .env file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvAPIURL    = "NUTRICOACH_API_URL"
	EnvDB        = "NUTRICOACH_DB"
	EnvTimeout   = "NUTRICOACH_TIMEOUT"
	EnvJWTSecret = "NUTRICOACH_JWT_SECRET"
)

// DefaultTimeout applies when NUTRICOACH_TIMEOUT is unset or invalid.
const DefaultTimeout = 30 * time.Second

// Config holds resolved settings. An empty APIURL means no backend: the
// client runs against the in-memory fallback store only.
type Config struct {
	APIURL    string
	DBPath    string
	Timeout   time.Duration
	JWTSecret string
}

// Load reads .env files (if present) into the environment without overriding
// variables that are already set, then resolves Config.
func Load(envFiles ...string) Config {
	// A missing .env is normal.
	_ = godotenv.Load(envFiles...)

	c := Config{
		APIURL:    os.Getenv(EnvAPIURL),
		DBPath:    os.Getenv(EnvDB),
		Timeout:   DefaultTimeout,
		JWTSecret: os.Getenv(EnvJWTSecret),
	}
	if c.DBPath == "" {
		home, _ := os.UserHomeDir()
		c.DBPath = filepath.Join(home, ".nutricoach", "session.db")
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeout = d
		}
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-secret"
	}
	return c
}
