// Package config loads and persists bookingd's TOML configuration file,
// following config.Load's load-or-create-default shape.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is bookingd's process-wide configuration.
type Config struct {
	ListenAddress              string `toml:"ListenAddress"`
	DataDir                    string `toml:"DataDir"`
	DefaultPaymentDelaySeconds int64  `toml:"DefaultPaymentDelaySeconds"`
	DefaultMinArbitrators      int    `toml:"DefaultMinArbitrators"`
	AdminTokenSigningKey       string `toml:"AdminTokenSigningKey"`
	TokenIssuer                string `toml:"TokenIssuer"`
	LogRotatePath              string `toml:"LogRotatePath"`
}

// Load reads the TOML file at path, creating a fresh default configuration
// file (with a freshly generated signing key) if none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if cfg.AdminTokenSigningKey == "" {
		key, err := generateSigningKey()
		if err != nil {
			return nil, err
		}
		cfg.AdminTokenSigningKey = key
		if err := save(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	key, err := generateSigningKey()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		ListenAddress:              ":8080",
		DataDir:                    "./bookingd-data",
		DefaultPaymentDelaySeconds: 0,
		DefaultMinArbitrators:      1,
		AdminTokenSigningKey:       key,
		TokenIssuer:                "bookingd",
		LogRotatePath:              "",
	}
	if err := save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return nil
}

func generateSigningKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("config: generate signing key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
