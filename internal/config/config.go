package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
)

// Config holds all configuration for the ledger service
type Config struct {
	ServerPort    string
	LogLevel      slog.Level
	MaxDeposit    decimal.Decimal
	MaxWithdrawal decimal.Decimal
	MaxTransfer   decimal.Decimal
	SeedSample    bool

	// invalid environment values replaced by defaults, reported once the
	// logger exists
	warnings []Warning
}

// Warning describes an environment value that could not be used.
type Warning struct {
	Key    string
	Value  string
	Reason string
}

// Load loads configuration from environment variables with default values
func Load() *Config {
	def := domain.DefaultLimits()
	cfg := &Config{}
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.LogLevel = cfg.getLevel("LOG_LEVEL", slog.LevelInfo)
	cfg.MaxDeposit = cfg.getDecimal("LEDGER_MAX_DEPOSIT", def.MaxDeposit)
	cfg.MaxWithdrawal = cfg.getDecimal("LEDGER_MAX_WITHDRAWAL", def.MaxWithdrawal)
	cfg.MaxTransfer = cfg.getDecimal("LEDGER_MAX_TRANSFER", def.MaxTransfer)
	cfg.SeedSample = cfg.getBool("LEDGER_SEED_SAMPLE", false)
	return cfg
}

// Warnings lists the environment values Load ignored.
func (c *Config) Warnings() []Warning {
	return c.warnings
}

// LogWarnings reports every ignored environment value through logger.
func (c *Config) LogWarnings(logger *slog.Logger) {
	for _, w := range c.warnings {
		logger.Warn(w.Reason, "key", w.Key, "value", w.Value)
	}
}

func (c *Config) warn(key, value, reason string) {
	c.warnings = append(c.warnings, Warning{Key: key, Value: value, Reason: reason})
}

// Limits returns the account ceilings configured for new accounts.
func (c *Config) Limits() domain.Limits {
	return domain.Limits{
		MaxDeposit:    c.MaxDeposit,
		MaxWithdrawal: c.MaxWithdrawal,
		MaxTransfer:   c.MaxTransfer,
	}.Normalize()
}

// getEnv retrieves an environment variable or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !value.IsPositive() {
		c.warn(key, raw, "Ignoring invalid limit")
		return defaultValue
	}
	return value
}

func (c *Config) getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		c.warn(key, raw, "Ignoring invalid boolean")
		return defaultValue
	}
	return value
}

func (c *Config) getLevel(key string, defaultValue slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		c.warn(key, raw, "Ignoring invalid log level")
		return defaultValue
	}
	return level
}
