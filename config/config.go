package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete market configuration.
type Config struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Market MarketConfig `json:"market" yaml:"market"`
}

// StoreConfig selects and locates the snapshot backend.
type StoreConfig struct {
	Type    string `json:"type" yaml:"type"`                             // "json" or "sqlite"
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"` // json backend
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`   // sqlite backend
}

// MarketConfig contains the market rules and oracle parameters.
type MarketConfig struct {
	StartingCash    float64 `json:"starting_cash" yaml:"starting_cash"`
	JitterLow       float64 `json:"jitter_low" yaml:"jitter_low"`
	JitterHigh      float64 `json:"jitter_high" yaml:"jitter_high"`
	LeaderboardSeed uint64  `json:"leaderboard_seed" yaml:"leaderboard_seed"`
	FallbackPrice   float64 `json:"fallback_price" yaml:"fallback_price"`
	Admin           string  `json:"admin" yaml:"admin"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Store.Type != "json" && c.Store.Type != "sqlite" {
		return fmt.Errorf("store.type must be 'json' or 'sqlite'")
	}
	if c.Store.Type == "json" && c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir required for json type")
	}
	if c.Store.Type == "sqlite" && c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path required for sqlite type")
	}
	if c.Market.StartingCash <= 0 {
		return fmt.Errorf("market.starting_cash must be positive")
	}
	if c.Market.JitterLow <= 0 || c.Market.JitterHigh <= 0 {
		return fmt.Errorf("market jitter bounds must be positive")
	}
	if c.Market.JitterHigh < c.Market.JitterLow {
		return fmt.Errorf("market.jitter_high must be >= market.jitter_low")
	}
	if c.Market.FallbackPrice <= 0 {
		return fmt.Errorf("market.fallback_price must be positive")
	}
	if c.Market.Admin == "" {
		return fmt.Errorf("market.admin is required")
	}
	return nil
}

// Default returns a configuration with the classroom defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type:    "json",
			DataDir: "./data",
		},
		Market: MarketConfig{
			StartingCash:    10000,
			JitterLow:       0.95,
			JitterHigh:      1.05,
			LeaderboardSeed: 42,
			FallbackPrice:   100,
			Admin:           "teacher",
		},
	}
}
