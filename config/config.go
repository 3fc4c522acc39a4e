package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"teranium/crypto"
)

// Config is the node's on-disk configuration.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`

	Oracle    OracleConfig    `toml:"oracle"`
	Log       LogConfig       `toml:"log"`
	RateLimit RateLimitConfig `toml:"ratelimit"`

	Mints []MintConfig `toml:"mints"`
}

// OracleConfig points the node at its price service. When Endpoint is empty
// the node runs without an oracle and rejects swaps.
type OracleConfig struct {
	Endpoint string `toml:"Endpoint"`
	APIKey   string `toml:"APIKey"`
}

type LogConfig struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

// MintConfig declares a token known at genesis. Mints carrying a Feed are
// swappable against the stable vault.
type MintConfig struct {
	Address  string `toml:"Address"`
	Decimals uint8  `toml:"Decimals"`
	Feed     string `toml:"Feed"`
}

// Load reads the configuration from path, applying defaults for absent
// fields. A missing file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8545"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./teranium-data"
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 50
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 100
	}
}

// Validate checks that every declared mint parses as a base58 address and
// that no mint is declared twice.
func (c *Config) Validate() error {
	seen := make(map[crypto.Address]struct{}, len(c.Mints))
	for _, mint := range c.Mints {
		addr, err := crypto.DecodeAddress(strings.TrimSpace(mint.Address))
		if err != nil {
			return fmt.Errorf("config: mint %q: %w", mint.Address, err)
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("config: mint %q declared twice", mint.Address)
		}
		seen[addr] = struct{}{}
		if mint.Feed != "" && strings.TrimSpace(c.Oracle.Endpoint) == "" {
			return fmt.Errorf("config: mint %q has a feed but no oracle endpoint is set", mint.Address)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}
