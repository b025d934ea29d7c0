package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, layers it over DefaultConfig, applies
// environment variable overrides, and validates the result.
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile parses a YAML file over the given Config in place.
func loadFromFile(cfg *Config, filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// loadFromEnv applies RELAYHEALTH_-prefixed overrides for the handful
// of settings operators tend to want to flip without editing YAML.
func loadFromEnv(cfg *Config) {
	if name := os.Getenv("RELAYHEALTH_NAME"); name != "" {
		cfg.Name = name
	}
	if shmName := os.Getenv("RELAYHEALTH_SHM_NAME"); shmName != "" {
		cfg.ShmName = shmName
	}
	if activeType := os.Getenv("RELAYHEALTH_ACTIVE_TYPE"); activeType != "" {
		cfg.Checks.Active.Type = activeType
	}
	if sni := os.Getenv("RELAYHEALTH_HTTPS_SNI"); sni != "" {
		cfg.Checks.Active.HTTPSSNI = sni
	}
}
