package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RF_ENGINE_WORKERS.
const EnvPrefix = "RF"

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned value.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	def := DefaultConfig()
	v.SetDefault("engine.workers", def.Engine.Workers)
	v.SetDefault("engine.max_expansion", def.Engine.MaxExpansion)
	v.SetDefault("engine.detect_overlaps", def.Engine.DetectOverlaps)
	v.SetDefault("engine.cache_size", def.Engine.CacheSize)
	v.SetDefault("modes.file", "")
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout.String())
	v.SetDefault("server.max_records", def.Server.MaxRecords)
	v.SetDefault("server.rate_limit", def.Server.RateLimit)
	v.SetDefault("server.rate_burst", def.Server.RateBurst)
	v.SetDefault("database.url", "")

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check runs before env binding so only file values are seen.
	// Credentials must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	// Bind environment variables with RF_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Engine: EngineConfig{
			Workers:        v.GetInt("engine.workers"),
			MaxExpansion:   v.GetInt("engine.max_expansion"),
			DetectOverlaps: v.GetBool("engine.detect_overlaps"),
			CacheSize:      v.GetInt("engine.cache_size"),
		},
		Modes: ModesConfig{
			File: v.GetString("modes.file"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxRecords:     v.GetInt("server.max_records"),
			RateLimit:      v.GetFloat64("server.rate_limit"),
			RateBurst:      v.GetInt("server.rate_burst"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks engine limits and server settings.
func validateConfig(cfg *Config) error {
	if cfg.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.MaxExpansion < 0 {
		return fmt.Errorf("engine.max_expansion must not be negative, got %d", cfg.Engine.MaxExpansion)
	}
	if cfg.Engine.CacheSize < 0 {
		return fmt.Errorf("engine.cache_size must not be negative, got %d", cfg.Engine.CacheSize)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be positive, got %d", cfg.Server.MaxRecords)
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", cfg.Server.RateLimit)
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate_limit is set, got %d", cfg.Server.RateBurst)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only database credentials.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("database.password") {
		return fmt.Errorf("database passwords not allowed in config files (use %s_DATABASE_URL environment variable)", EnvPrefix)
	}
	if raw := v.GetString("database.url"); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				return fmt.Errorf("database passwords not allowed in config files (use %s_DATABASE_URL environment variable)", EnvPrefix)
			}
		}
	}
	return nil
}
