package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNetwork   = "mainnet"
	defaultAlgorithm = "fastest"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	dotEnvFile  = ".env"

	// EnvPrefix prefixes every environment override (SWAPCTL_CONTRACTS, ...).
	EnvPrefix = "SWAPCTL"
	// EnvConfigDir overrides the default config directory.
	EnvConfigDir = "SWAPCTL_CONFIG_DIR"

	// DefaultServerAddr is where the HTTP endpoint listens by default.
	DefaultServerAddr = ":8080"
)

// envKeys are the config keys that can be overridden from the environment.
// SWAPCTL_CONTRACTS is a comma-separated list.
var envKeys = []string{
	"default_network",
	"default_wallet",
	"rpc_algorithm",
	"rpc_url",
	"contracts",
	"steth",
	"weth",
	"withdrawal_queue",
	"server_addr",
	"log_file",
	"poll_interval",
	"auth_window",
}

// Load reads config from dir (or creates defaults). dir defaults to
// $SWAPCTL_CONFIG_DIR, then ~/.swapctl. A .env file in the working directory
// and SWAPCTL_* environment variables are layered on top of config.json.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".swapctl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", dotEnvFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dir, configFile)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	cfg.Contracts = compact(cfg.Contracts)
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

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// AddContract appends a candidate swapper address. Order is probe order.
func (c *Config) AddContract(addr string) error {
	a, err := chain.ParseAddress(addr)
	if err != nil {
		return err
	}
	if c.contractIndex(a) != -1 {
		return fmt.Errorf("contract %s already configured", a.Hex())
	}
	c.Contracts = append(c.Contracts, a.Hex())
	return nil
}

// RemoveContract drops a candidate swapper address.
func (c *Config) RemoveContract(addr string) error {
	a, err := chain.ParseAddress(addr)
	if err != nil {
		return err
	}
	idx := c.contractIndex(a)
	if idx == -1 {
		return fmt.Errorf("contract %s not configured", a.Hex())
	}
	c.Contracts = slices.Delete(c.Contracts, idx, idx+1)
	return nil
}

// Candidates parses the configured swapper addresses in order.
func (c *Config) Candidates() ([]common.Address, error) {
	out := make([]common.Address, 0, len(c.Contracts))
	for _, s := range c.Contracts {
		a, err := chain.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("config contracts: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// PollEvery is the receipt poll interval.
func (c *Config) PollEvery() time.Duration {
	if c.PollInterval <= 0 {
		return time.Duration(defaultPollSeconds) * time.Second
	}
	return time.Duration(c.PollInterval) * time.Second
}

// AuthValidity is how long a freshly signed permit or authorization is valid.
func (c *Config) AuthValidity() time.Duration {
	if c.AuthWindow <= 0 {
		return time.Duration(defaultAuthWindow) * time.Second
	}
	return time.Duration(c.AuthWindow) * time.Second
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet store lives.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_network", defaultNetwork)
	v.SetDefault("default_wallet", "")
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("rpc_url", "")
	v.SetDefault("custom_rpcs", map[string][]string{})
	v.SetDefault("contracts", []string{})
	v.SetDefault("steth", "")
	v.SetDefault("weth", "")
	v.SetDefault("withdrawal_queue", "")
	v.SetDefault("server_addr", DefaultServerAddr)
	v.SetDefault("log_file", "")
	v.SetDefault("poll_interval", defaultPollSeconds)
	v.SetDefault("auth_window", defaultAuthWindow)
}

func (c *Config) contractIndex(a common.Address) int {
	return slices.IndexFunc(c.Contracts, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), a.Hex())
	})
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
