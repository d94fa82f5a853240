package kyberfog

import (
	"github.com/kyberfog/kyberfog/internal/app/config"
)

// Config is the full gateway configuration.
type Config = config.Config

// KEMConfig selects the Kyber parameter set.
type KEMConfig = config.KEMConfig

// StoreConfig selects and parameterizes the run store.
type StoreConfig = config.StoreConfig

// MetricsConfig parameterizes the metrics endpoint and snapshots.
type MetricsConfig = config.MetricsConfig

// LoadConfig reads a YAML config file, applies defaults, and validates it.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a validated configuration with all defaults applied.
func DefaultConfig() *Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}
