// Package config provides configuration management for the rule storage
// adapter. It handles loading configuration from environment variables with
// sensible defaults and validates the configuration so stores can be
// constructed safely.
//
// The package supports SQLite and PostgreSQL backends and an optional
// partitioned mode routing permission rules and grouping rules to two
// different physical stores.
//
// Environment Variables:
//
// Application Settings:
//   - LOG_LEVEL: Logging level (default: info)
//   - TABLE_NAME: Rule table name (default: casbin_rule)
//
// Database Configuration:
//   - DATABASE_TYPE: Database type - "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./policy.db)
//   - POSTGRES_HOST: PostgreSQL host (required if using PostgreSQL)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (required if using PostgreSQL)
//   - POSTGRES_USER: PostgreSQL username (required if using PostgreSQL)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Partitioned Routing:
//   - PARTITION_ENABLED: Route rule types to two stores (default: false)
//   - PARTITION_MARKER: Leading character of primary rule types (default: p)
//   - SECONDARY_DATABASE_TYPE: Secondary store type (default: sqlite)
//   - SECONDARY_DATABASE_PATH: Secondary SQLite file path
//   - SECONDARY_TABLE_NAME: Secondary rule table name (default: TABLE_NAME)
//
// Example usage:
//
//	config := config.Load()
//	if err := config.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values for the rule storage adapter.
// All string fields correspond to environment variables that can be set to
// override the default values.
//
// The configuration is loaded using the Load() function and should be
// validated using the Validate() method before use.
type Config struct {
	// Application settings
	LogLevel  string // Logging level (debug, info, warn, error)
	TableName string // Rule table name

	// Primary database configuration
	DatabaseType     string // Database type: "sqlite" or "postgres"
	DatabasePath     string // Path to SQLite database file
	PostgresHost     string // PostgreSQL host address
	PostgresPort     string // PostgreSQL port number
	PostgresDB       string // PostgreSQL database name
	PostgresUser     string // PostgreSQL username
	PostgresPassword string // PostgreSQL password
	PostgresSSLMode  string // PostgreSQL SSL mode (disable, require, etc.)

	// Partitioned routing configuration
	PartitionEnabled      bool   // Route rule types across two stores
	PartitionMarker       string // Leading character of primary rule types
	SecondaryDatabaseType string // Secondary store type ("sqlite")
	SecondaryDatabasePath string // Secondary SQLite database file path
	SecondaryTableName    string // Secondary rule table name
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding default
// value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config to ensure all required values are properly set and valid.
func Load() *Config {
	tableName := getEnv("TABLE_NAME", "casbin_rule")

	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		TableName: tableName,

		// Database configuration
		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./policy.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "policy"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		// Partitioned routing
		PartitionEnabled:      getBoolEnv("PARTITION_ENABLED", false),
		PartitionMarker:       getEnv("PARTITION_MARKER", "p"),
		SecondaryDatabaseType: getEnv("SECONDARY_DATABASE_TYPE", "sqlite"),
		SecondaryDatabasePath: getEnv("SECONDARY_DATABASE_PATH", "./policy_secondary.db"),
		SecondaryTableName:    getEnv("SECONDARY_TABLE_NAME", tableName),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a
// default value. Accepts the representations strconv.ParseBool does.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate performs validation on the configuration to ensure all required
// fields are present and all values are valid.
//
// This method checks:
//   - Database type and its required backend fields
//   - Cross-field dependencies (PostgreSQL and partitioning requirements)
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME must not be empty")
	}

	// Validate database type
	switch c.DatabaseType {
	case "sqlite", "postgres":
		// Valid database types
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.DatabaseType == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required when using SQLite")
	}

	// Validate PostgreSQL config if using PostgreSQL
	if c.DatabaseType == "postgres" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		// Validate PostgreSQL port
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	// Validate partition config if enabled
	if c.PartitionEnabled {
		if len(c.PartitionMarker) != 1 {
			return fmt.Errorf("PARTITION_MARKER must be a single character")
		}
		switch c.SecondaryDatabaseType {
		case "sqlite":
			if c.SecondaryDatabasePath == "" {
				return fmt.Errorf("SECONDARY_DATABASE_PATH is required when partitioning to SQLite")
			}
		case "postgres":
			// Reuses the primary PostgreSQL settings with the secondary table.
		default:
			return fmt.Errorf("SECONDARY_DATABASE_TYPE must be 'sqlite' or 'postgres'")
		}
		if c.SecondaryTableName == "" {
			return fmt.Errorf("SECONDARY_TABLE_NAME must not be empty")
		}
	}

	return nil
}
