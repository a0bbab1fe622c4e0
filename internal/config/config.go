// Package config provides typed, validated configuration for the
// reconciliation service, loaded from config files and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"soa-reconciliation-service/internal/matcher"

	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	Matching    MatchingConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MatchingConfig contains the tolerance parameters for the matching engine.
// Keeping them in service configuration allows per-tenant tuning without a
// code change.
type MatchingConfig struct {
	DateWindowDays          int
	AmountToleranceAbsolute float64
	AmountToleranceRelative float64

	// Workers sets the batch matcher worker pool size; 0 or 1 disables
	// parallel matching.
	Workers int
}

// ToleranceConfig converts the service-level matching settings into the
// engine's tolerance configuration
func (mc *MatchingConfig) ToleranceConfig() *matcher.ToleranceConfig {
	return &matcher.ToleranceConfig{
		DateWindowDays:          mc.DateWindowDays,
		AmountToleranceAbsolute: decimal.NewFromFloat(mc.AmountToleranceAbsolute),
		AmountToleranceRelative: decimal.NewFromFloat(mc.AmountToleranceRelative),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Postgres.URL == "" {
		return errors.New("postgres URL is required")
	}

	if c.Postgres.MaxConns < c.Postgres.MinConns {
		return fmt.Errorf("postgres max connections (%d) below min connections (%d)",
			c.Postgres.MaxConns, c.Postgres.MinConns)
	}

	if c.Matching.Workers < 0 {
		return fmt.Errorf("matching workers cannot be negative: %d", c.Matching.Workers)
	}

	return c.Matching.ToleranceConfig().Validate()
}
