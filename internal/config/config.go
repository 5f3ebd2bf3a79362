// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/SeanFuture9999/stock-game1/internal/modules/fees"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases
	Port     int
	LogLevel string
	DevMode  bool

	// Trading cost parameters (Taiwan market defaults)
	BrokerFeeRate     float64 // 0.1425% of traded amount
	BrokerFeeDiscount float64 // Broker discount multiplier applied to the fee
	MinFee            int64   // Floor in currency units, applies to odd lots too
	TaxRateStock      float64 // Securities transaction tax, sell side only
	TaxRateETF        float64 // Reduced tax rate for ETFs

	// Background worker cadence
	QuotePollSeconds int    // Snapshot refresh interval during trading hours
	ChipSyncSchedule string // Cron spec for the institutional/margin sync
	AlertCheckSpec   string // Cron spec for price alert evaluation
}

// Load reads configuration from environment variables (.env supported)
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("STOCKGAME_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("SERVER_PORT", 8000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		BrokerFeeRate:     getEnvAsFloat("BROKER_FEE_RATE", 0.001425),
		BrokerFeeDiscount: getEnvAsFloat("BROKER_FEE_DISCOUNT", 0.6),
		MinFee:            int64(getEnvAsInt("BROKER_MIN_FEE", 1)),
		TaxRateStock:      getEnvAsFloat("TAX_RATE_STOCK", 0.003),
		TaxRateETF:        getEnvAsFloat("TAX_RATE_ETF", 0.001),

		QuotePollSeconds: getEnvAsInt("QUOTE_POLL_SECONDS", 30),
		ChipSyncSchedule: getEnv("CHIP_SYNC_SCHEDULE", "0 0 16 * * MON-FRI"),
		AlertCheckSpec:   getEnv("ALERT_CHECK_SPEC", "@every 1m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that cost parameters are sane
func (c *Config) Validate() error {
	if c.BrokerFeeRate < 0 || c.BrokerFeeDiscount <= 0 {
		return fmt.Errorf("invalid broker fee configuration: rate=%v discount=%v", c.BrokerFeeRate, c.BrokerFeeDiscount)
	}
	if c.TaxRateStock < 0 || c.TaxRateETF < 0 {
		return fmt.Errorf("invalid tax rate configuration: stock=%v etf=%v", c.TaxRateStock, c.TaxRateETF)
	}
	return nil
}

// FeeSchedule builds the fee/tax schedule used by both the preview endpoint
// and the trade insertion path, so the two can never drift.
func (c *Config) FeeSchedule() fees.Schedule {
	return fees.Schedule{
		FeeRate:      c.BrokerFeeRate,
		FeeDiscount:  c.BrokerFeeDiscount,
		MinFee:       c.MinFee,
		TaxRateStock: c.TaxRateStock,
		TaxRateETF:   c.TaxRateETF,
	}
}

// Helper functions

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
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
