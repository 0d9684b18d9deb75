package config

import (
	"os"
	"strconv"

	"godice/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine     EngineConfig
	Cache      CacheConfig
	FixedPoint FixedPointConfig
}

// EngineConfig holds evaluation engine settings
type EngineConfig struct {
	// Parallelism > 1 spreads sweep entries across goroutines per step.
	Parallelism int
}

// CacheConfig holds memoization settings
type CacheConfig struct {
	Enabled    bool
	MaxEntries int
}

// FixedPointConfig holds self-referential solver settings
type FixedPointConfig struct {
	MaxStates int
	// UnrollDepth is the bound for the finite-depth expansion mode.
	UnrollDepth int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Engine: EngineConfig{
			Parallelism: getEnvIntOrDefault("ENGINE_PARALLELISM", 1),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBoolOrDefault("CACHE_ENABLED", true),
			MaxEntries: getEnvIntOrDefault("CACHE_MAX_ENTRIES", 0),
		},
		FixedPoint: FixedPointConfig{
			MaxStates:   getEnvIntOrDefault("FIXPOINT_MAX_STATES", 4096),
			UnrollDepth: getEnvIntOrDefault("FIXPOINT_UNROLL_DEPTH", 64),
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Engine.Parallelism < 0 {
		return errors.ConfigInvalid("ENGINE_PARALLELISM must be non-negative")
	}
	if config.Cache.MaxEntries < 0 {
		return errors.ConfigInvalid("CACHE_MAX_ENTRIES must be non-negative")
	}
	if config.FixedPoint.MaxStates <= 0 {
		return errors.ConfigInvalid("FIXPOINT_MAX_STATES must be positive")
	}
	if config.FixedPoint.UnrollDepth <= 0 {
		return errors.ConfigInvalid("FIXPOINT_UNROLL_DEPTH must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
