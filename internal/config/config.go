// Package config loads the application configuration from environment
// variables. Every binary calls Load followed by Validate; a .env file
// is read beforehand by the entrypoints for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP mirror queue (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror target (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Exchange-rate lookup
	RatesAPIURL  string
	RatesTimeout time.Duration

	// Mirror worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Dashboard
	RecentLimit int
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kassza.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kassza"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_transactions"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		RatesAPIURL:  getEnv("RATES_API_URL", "https://api.frankfurter.app/latest"),
		RatesTimeout: getEnvDuration("RATES_TIMEOUT", 5*time.Second),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		RecentLimit: getEnvInt("RECENT_LIMIT", 5),
	}
}

// Validate checks the configuration and returns one combined error
// listing everything wrong with it.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RatesAPIURL != "" {
		if parsed, err := url.Parse(c.RatesAPIURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid rates API URL '%s'", c.RatesAPIURL))
		}
	}
	if c.RatesTimeout < time.Second || c.RatesTimeout > time.Minute {
		problems = append(problems, fmt.Sprintf("invalid rates timeout %v: must be between 1s and 1m", c.RatesTimeout))
	}

	if c.SyncBatchSize < 1 || c.SyncBatchSize > 1000 {
		problems = append(problems, fmt.Sprintf("invalid sync batch size %d: must be between 1 and 1000", c.SyncBatchSize))
	}
	if c.SyncInterval < time.Second || c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be between 1 second and 24 hours", c.SyncInterval))
	}

	if c.RecentLimit < 1 || c.RecentLimit > 100 {
		problems = append(problems, fmt.Sprintf("invalid recent limit %d: must be between 1 and 100", c.RecentLimit))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
