package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `ListenAddress = "0.0.0.0:9000"
DataDir = "./data"

[oracle]
Endpoint = "https://prices.example.com/v1/latest"
APIKey = "secret"

[log]
Level = "debug"
File = "/var/log/teranium/node.log"
MaxSizeMB = 50
MaxBackups = 3

[ratelimit]
RequestsPerSecond = 10.0
Burst = 20

[[mints]]
Address = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
Decimals = 6
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != "0.0.0.0:9000" {
		t.Fatalf("listen address: %q", cfg.ListenAddress)
	}
	if cfg.Oracle.Endpoint != "https://prices.example.com/v1/latest" || cfg.Oracle.APIKey != "secret" {
		t.Fatalf("oracle: %+v", cfg.Oracle)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxSizeMB != 50 || cfg.Log.MaxBackups != 3 {
		t.Fatalf("log: %+v", cfg.Log)
	}
	if cfg.RateLimit.RequestsPerSecond != 10.0 || cfg.RateLimit.Burst != 20 {
		t.Fatalf("ratelimit: %+v", cfg.RateLimit)
	}
	if len(cfg.Mints) != 1 || cfg.Mints[0].Decimals != 6 {
		t.Fatalf("mints: %+v", cfg.Mints)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":8545" {
		t.Fatalf("default listen address: %q", cfg.ListenAddress)
	}
	if cfg.Log.Level != "info" || cfg.Log.MaxSizeMB != 100 {
		t.Fatalf("default log config: %+v", cfg.Log)
	}
	if cfg.RateLimit.RequestsPerSecond != 50 || cfg.RateLimit.Burst != 100 {
		t.Fatalf("default ratelimit: %+v", cfg.RateLimit)
	}
}

func TestLoadRejectsMalformedMintAddress(t *testing.T) {
	path := writeConfig(t, `[[mints]]
Address = "not-base58-!!"
Decimals = 9
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected malformed mint address to be rejected")
	}
}

func TestLoadRejectsDuplicateMint(t *testing.T) {
	path := writeConfig(t, `[[mints]]
Address = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
Decimals = 6

[[mints]]
Address = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
Decimals = 6
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate mint to be rejected")
	}
}

func TestLoadRejectsFeedWithoutOracle(t *testing.T) {
	path := writeConfig(t, `[[mints]]
Address = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
Decimals = 6
Feed = "usdc-usd"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected feed without oracle endpoint to be rejected")
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `[log]
Level = "verbose"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown log level to be rejected")
	}
}
