// Package config provides configuration management for rulefold commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/solatis/rulefold/internal/types"
)

// EngineConfig tunes the fold engine.
type EngineConfig struct {
	Workers        int
	MaxExpansion   int
	DetectOverlaps bool
	CacheSize      int
}

// ModesConfig locates additional mode definitions.
type ModesConfig struct {
	File string // optional YAML file layered over the built-in modes
}

// ServerConfig holds configuration for the gRPC rule service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxRecords     int
	RateLimit      float64 // requests per second; 0 disables
	RateBurst      int
}

// DatabaseConfig locates the catalog database.
type DatabaseConfig struct {
	URL string // sqlite://path or postgres://...
}

// Config is the full rulefold configuration.
type Config struct {
	Engine   EngineConfig
	Modes    ModesConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:        runtime.NumCPU(),
			MaxExpansion:   types.DefaultMaxExpansion,
			DetectOverlaps: true,
			CacheSize:      4096,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			RequestTimeout: 30 * time.Second,
			MaxRecords:     100000,
			RateBurst:      8,
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is an error only
// when required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
