// Package config provides configuration management functionality.
//
// This package handles loading configuration from environment variables (and
// an optional .env file). Configuration is read once at startup into an
// immutable value passed by reference to every component; nothing mutates a
// runtime global afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration, read once at process startup.
type Config struct {
	MarketDataDir          string // root for stock CSV tree
	CryptoDataDir          string // root for crypto CSV tree
	PublicDir              string // static asset root
	DataStoreBackend       string // "csv" or "sqlite"
	SQLitePath             string // sqlite database file: SQLITE_PATH, default <MarketDataDir>/market.db
	HTTPProxies            []string
	DisablePartialHistory  bool
	CryptoWorkerTargetURL  string
	CryptoWorkerTargetHost string

	Port     int
	LogLevel string
	DevMode  bool

	DirectEgressEnabled bool
	StockRateLimitPerMin int
	CryptoRateLimitPerSec int

	APIRateLimitRPS   float64
	APIRateLimitBurst int

	IgnoredCryptoSymbols []string
}

// Load reads configuration from environment variables.
//
// Loading order: .env file (if present) is applied first, then process
// environment variables are read with defaults. godotenv.Load returning an
// error (no .env file) is not fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	marketDir, err := filepath.Abs(getEnv("MARKET_DATA_DIR", "market_data"))
	if err != nil {
		return nil, fmt.Errorf("resolve market data dir: %w", err)
	}
	cryptoDir, err := filepath.Abs(getEnv("CRYPTO_DATA_DIR", "crypto_data"))
	if err != nil {
		return nil, fmt.Errorf("resolve crypto data dir: %w", err)
	}
	if err := os.MkdirAll(marketDir, 0o755); err != nil {
		return nil, fmt.Errorf("create market data dir: %w", err)
	}
	if err := os.MkdirAll(cryptoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create crypto data dir: %w", err)
	}

	backend := strings.ToLower(getEnv("DATA_STORE_BACKEND", "csv"))

	cfg := &Config{
		MarketDataDir:          marketDir,
		CryptoDataDir:          cryptoDir,
		PublicDir:              getEnv("PUBLIC_DIR", "public"),
		DataStoreBackend:       backend,
		SQLitePath:             getEnv("SQLITE_PATH", filepath.Join(marketDir, "market.db")),
		HTTPProxies:            splitNonEmpty(getEnv("HTTP_PROXIES", "")),
		DisablePartialHistory:  getEnvAsBool("DISABLE_PARTIAL_HISTORY", false),
		CryptoWorkerTargetURL:  getEnv("CRYPTO_WORKER_TARGET_URL", ""),
		CryptoWorkerTargetHost: getEnv("CRYPTO_WORKER_TARGET_HOST", ""),

		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		DirectEgressEnabled:   getEnvAsBool("DIRECT_EGRESS_ENABLED", true),
		StockRateLimitPerMin:  getEnvAsInt("STOCK_RATE_LIMIT_PER_MIN", 60),
		CryptoRateLimitPerSec: getEnvAsInt("CRYPTO_RATE_LIMIT_PER_SEC", 5),

		APIRateLimitRPS:   getEnvAsFloat("API_RATE_LIMIT_RPS", 5000),
		APIRateLimitBurst: getEnvAsInt("API_RATE_LIMIT_BURST", 10000),

		IgnoredCryptoSymbols: splitNonEmpty(getEnv("CRYPTO_IGNORE_LIST", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise fail much later and more
// confusingly (a bad backend name silently falling back to CSV, say).
func (c *Config) Validate() error {
	if c.DataStoreBackend != "csv" && c.DataStoreBackend != "sqlite" {
		return fmt.Errorf("invalid DATA_STORE_BACKEND %q: must be csv or sqlite", c.DataStoreBackend)
	}
	if c.StockRateLimitPerMin <= 0 || c.CryptoRateLimitPerSec <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
