package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultFallbackRPC  = "http://127.0.0.1:8545"
	defaultArtifactsDir = "build/contracts"
	defaultLogLevel     = "info"
	defaultInterval     = 10

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Environment overrides, applied after config.json.
const (
	EnvConfigDir    = "BONDED_CONFIG_DIR"
	EnvRPCURL       = "BONDED_RPC_URL"
	EnvWallet       = "BONDED_WALLET"
	EnvArtifactsDir = "BONDED_ARTIFACTS_DIR"
	EnvLogLevel     = "BONDED_LOG_LEVEL"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.bonded.
// A .env or .env.local file in the working directory is loaded first so its
// values can feed the environment overrides.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".bonded")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// ProviderURLs returns the provider candidates in connection order: the
// configured endpoint first, then the local-node fallback. Duplicates and
// empty entries are dropped.
func (c *Config) ProviderURLs() []string {
	var out []string
	for _, u := range []string{c.RPCURL, c.FallbackRPCURL} {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == u {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, u)
		}
	}
	return out
}

// ArtifactPath joins name onto the artifacts directory.
func (c *Config) ArtifactPath(name string) string {
	return filepath.Join(c.ArtifactsDir, name)
}

// Set updates a single config key from its string form. Used by
// `bonded config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "rpc_url":
		c.RPCURL = value
	case "fallback_rpc_url":
		c.FallbackRPCURL = value
	case "wallet":
		c.Wallet = value
	case "artifacts_dir":
		c.ArtifactsDir = value
	case "log_level":
		c.LogLevel = value
	case "contracts.logic":
		c.Contracts.Logic = value
	case "contracts.token":
		c.Contracts.Token = value
	case "contracts.bonding":
		c.Contracts.Bonding = value
	case "watch_interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("watch_interval must be a positive integer, got %q", value)
		}
		c.WatchInterval = n
	case "gas.set_charity", "gas.donate", "gas.sell", "gas.sweep", "gas.price_gwei":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an unsigned integer, got %q", key, value)
		}
		c.setGas(strings.TrimPrefix(key, "gas."), n)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func (c *Config) setGas(field string, n uint64) {
	switch field {
	case "set_charity":
		c.Gas.SetCharity = n
	case "donate":
		c.Gas.Donate = n
	case "sell":
		c.Gas.Sell = n
	case "sweep":
		c.Gas.Sweep = n
	case "price_gwei":
		c.Gas.PriceGwei = n
	}
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		FallbackRPCURL: defaultFallbackRPC,
		ArtifactsDir:   defaultArtifactsDir,
		LogLevel:       defaultLogLevel,
		WatchInterval:  defaultInterval,
		configDir:      dir,
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPCURL = v
	}
	if v := os.Getenv(EnvWallet); v != "" {
		c.Wallet = v
	}
	if v := os.Getenv(EnvArtifactsDir); v != "" {
		c.ArtifactsDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}
