package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ListenAddr string

	// Database configuration
	DatabaseURL string

	// Ledger configuration
	StartingBalance int64 // credits seeded into every new wallet
	RequestCost     int64 // credits held when a connection request is sent

	// Session configuration
	SessionTTL time.Duration

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		ListenAddr:  os.Getenv("LISTEN_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Ledger settings with defaults
		StartingBalance: 100,
		RequestCost:     5,
		SessionTTL:      30 * 24 * time.Hour,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if cost := os.Getenv("REQUEST_COST"); cost != "" {
		if parsedCost, err := strconv.ParseInt(cost, 10, 64); err == nil {
			config.RequestCost = parsedCost
		}
	}
	if ttl := os.Getenv("SESSION_TTL_HOURS"); ttl != "" {
		if parsedTTL, err := strconv.Atoi(ttl); err == nil {
			config.SessionTTL = time.Duration(parsedTTL) * time.Hour
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
