// Package config provides functions for reading engine settings from ENV.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variable names understood by the engine.
const (
	// EnvProcessingLog toggles processing-log tracking (default on).
	EnvProcessingLog = "TABULAR_PROCESSING_LOG"

	// EnvWarnRPS caps how many metadata warnings per second reach the log
	// sink (default 10; 0 disables limiting).
	EnvWarnRPS = "TABULAR_WARN_RPS"

	// EnvLogLevel sets the slog level for CLI output.
	EnvLogLevel = "TABULAR_LOG_LEVEL"
)

// Defaults for the engine settings above.
const (
	DefaultWarnRPS = 10
)

// GetEnvStr returns a string environment variable value or a default if not
// set.
//
// Example:
//
//	path := GetEnvStr("TABULAR_SIDECAR", "metadata.json")
func GetEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// GetEnvInt returns an int environment variable value or a default if not
// set or not parseable.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

// GetEnvBool returns a bool environment variable value or a default if not
// set. Accepts "true", "1", "yes" as true; "false", "0", "no" as false
// (case-insensitive).
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}

	return defaultValue
}

// GetEnvLogLevel returns a slog level from the environment or a default if
// not set or unrecognized.
func GetEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "debug":
			return slog.LevelDebug
		case "info":
			return slog.LevelInfo
		case "warn", "warning":
			return slog.LevelWarn
		case "error":
			return slog.LevelError
		}
	}

	return defaultValue
}
