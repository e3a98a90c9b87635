package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort     string
	DatabasePath string
	LogLevel     string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := os.Getenv("BILLCRAFT_HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid BILLCRAFT_HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	path := os.Getenv("BILLCRAFT_DB_PATH")
	if path == "" {
		path = "billcraft.db"
	}

	level := os.Getenv("BILLCRAFT_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Config{HTTPPort: port, DatabasePath: path, LogLevel: level}
}
