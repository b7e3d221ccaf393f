package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/neoburger/burgerctl/internal/neo"
)

const (
	defaultMode      = "mainnet"
	defaultAlgorithm = "failover"
	defaultInterval  = 15

	configFile  = "config.json"
	sessionFile = "session.json"

	// EnvDir overrides the --config flag.
	EnvDir = "BURGERCTL_CONFIG_DIR"
)

// ErrUnknownMode is returned for network modes other than mainnet/testnet.
var ErrUnknownMode = errors.New("unknown network mode")

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.burgerctl.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".burgerctl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	cfg.fillContracts()
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

// SetNetworkMode validates and sets the network mode.
func (c *Config) SetNetworkMode(mode string) error {
	if mode != "mainnet" && mode != "testnet" {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	c.NetworkMode = mode
	return nil
}

// Testnet reports whether the testnet mode is active.
func (c *Config) Testnet() bool { return c.NetworkMode == "testnet" }

// ExpectedNetwork is the normalized wallet network matching the mode.
func (c *Config) ExpectedNetwork() string {
	if c.Testnet() {
		return neo.TestNet
	}
	return neo.MainNet
}

// Endpoints returns the query endpoints for the active mode: configured or
// built-in endpoints first, then custom ones.
func (c *Config) Endpoints() []string {
	mode := c.NetworkMode
	eps := c.RPC[mode]
	if len(eps) == 0 {
		eps = builtinEndpoints(mode)
	}
	out := slices.Clone(eps)
	for _, u := range c.CustomRPCs[mode] {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// PrimaryAndFallback splits Endpoints into the primary endpoint and the
// single fallback. The fallback equals the primary when only one endpoint is
// known.
func (c *Config) PrimaryAndFallback() (primary, fallback string) {
	eps := c.Endpoints()
	if len(eps) == 0 {
		return "", ""
	}
	if len(eps) == 1 {
		return eps[0], eps[0]
	}
	return eps[0], eps[1]
}

// AddRPC adds a custom RPC URL for a network mode.
func (c *Config) AddRPC(mode, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[mode], url) {
		return fmt.Errorf("RPC %s already exists for %s", url, mode)
	}
	c.CustomRPCs[mode] = append(c.CustomRPCs[mode], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network mode.
func (c *Config) RemoveRPC(mode, url string) error {
	rpcs := c.CustomRPCs[mode]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for %s", url, mode)
	}
	c.CustomRPCs[mode] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network mode.
func (c *Config) GetRPCs(mode string) []string {
	return c.CustomRPCs[mode]
}

// BridgeURL returns the dAPI bridge address configured for a provider.
func (c *Config) BridgeURL(provider string) string {
	return c.Bridges[provider]
}

// ToAddress is the protocol destination of mint, redeem and claim
// transfers: the bNEO contract account.
func (c *Config) ToAddress() string {
	addr, err := neo.AddressFromScriptHash(c.Contracts.BNEO)
	if err != nil {
		return ""
	}
	return addr
}

// PollSchedule returns the confirmation backoff parameters.
func (c *Config) PollSchedule() (initial time.Duration, multiplier float64, maxAttempts int) {
	initial = time.Duration(c.Poll.InitialSeconds * float64(time.Second))
	return initial, c.Poll.Multiplier, c.Poll.MaxAttempts
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// SessionPath is the file holding wallet reconnection markers.
func (c *Config) SessionPath() string {
	return filepath.Join(c.configDir, sessionFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	cfg := &Config{
		NetworkMode:   defaultMode,
		RPCAlgorithm:  defaultAlgorithm,
		WatchInterval: defaultInterval,
		CustomRPCs:    make(map[string][]string),
		Relay:         RelayConfig{URL: DefaultRelayURL},
		Poll:          PollConfig{InitialSeconds: 10, Multiplier: 1.5},
		QuoteAPI:      DefaultQuoteAPI,
		configDir:     dir,
	}
	cfg.fillContracts()
	return cfg
}

func (c *Config) fillContracts() {
	if c.Contracts.NEO == "" {
		c.Contracts.NEO = NEOHash
	}
	if c.Contracts.GAS == "" {
		c.Contracts.GAS = GASHash
	}
	if c.Contracts.BNEO == "" {
		c.Contracts.BNEO = BNEOHash
	}
}

func builtinEndpoints(mode string) []string {
	if mode == "testnet" {
		return []string{TestnetRPC}
	}
	return []string{MainnetRPC, MainnetFallbackRPC}
}
