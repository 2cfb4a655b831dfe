// Package config loads AtomKV's runtime configuration from the
// environment (and an optional .env file), following the
// getenv/getenvInt/getenvBool/getenvDuration pattern the teacher's
// cmd/server/main.go uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of an AtomKV node.
type Config struct {
	TCPAddr  string
	HTTPAddr string

	Capacity         int
	CompressionBytes int
	SweepInterval    time.Duration
	DCLPath          string
	DCLEnabled       bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads .env (if present, ignored if absent) and then the process
// environment, applying AtomKV's defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TCPAddr:  getenv("ATOMKV_TCP_ADDR", ":6379"),
		HTTPAddr: getenv("ATOMKV_HTTP_ADDR", ":8080"),

		Capacity:         getenvInt("ATOMKV_CAPACITY", 10000),
		CompressionBytes: getenvInt("ATOMKV_COMPRESS_THRESHOLD_BYTES", 256),
		SweepInterval:    getenvDuration("ATOMKV_SWEEP_INTERVAL", time.Second),
		DCLPath:          getenv("ATOMKV_DCL_PATH", defaultDCLPath()),
		DCLEnabled:       getenvBool("ATOMKV_DCL_ENABLED", true),

		HTTPReadTimeout:  getenvDuration("ATOMKV_HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: getenvDuration("ATOMKV_HTTP_WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout:  getenvDuration("ATOMKV_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("ATOMKV_CAPACITY must be >= 1, got %d", c.Capacity)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("ATOMKV_SWEEP_INTERVAL must be > 0, got %v", c.SweepInterval)
	}
	return nil
}

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getenvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getenvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// defaultDCLPath matches spec.md's default of ~/.atomkv/appendonly.aof,
// falling back to a relative path if the home directory can't be
// resolved (e.g. a minimal container environment).
func defaultDCLPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.atomkv/appendonly.aof"
	}
	return filepath.Join(home, ".atomkv", "appendonly.aof")
}
