package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"emberchain/crypto"

	"github.com/BurntSushi/toml"
)

const (
	defaultRPCAddress = "127.0.0.1:8645"
	defaultDataDir    = "./emberd-data"
	defaultSupply     = "21000000000000000000000000"
)

type Config struct {
	RPCAddress string `toml:"RPCAddress"`
	DataDir    string `toml:"DataDir"`
	Env        string `toml:"Env"`
	LogFile    string `toml:"LogFile"`

	Genesis Genesis `toml:"Genesis"`
}

// Genesis holds the parameters applied once, when the node starts with an
// empty data directory. A node restored from a snapshot ignores this block.
type Genesis struct {
	Owner               string `toml:"Owner"`
	TotalSupply         string `toml:"TotalSupply"`
	OwnerRecipient      string `toml:"OwnerRecipient"`
	MarketingRecipient  string `toml:"MarketingRecipient"`
	DevRecipient        string `toml:"DevRecipient"`
	TxTrigger           uint64 `toml:"TxTrigger"`
	WalletsLimitPercent uint64 `toml:"WalletsLimitPercent"`
	AprNinety           uint64 `toml:"AprNinety"`
	AprOneEighty        uint64 `toml:"AprOneEighty"`
	AprThreeSixty       uint64 `toml:"AprThreeSixty"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = defaultRPCAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Genesis.TotalSupply) == "" {
		c.Genesis.TotalSupply = defaultSupply
	}
}

// Validate checks the addresses and genesis parameters.
func (c *Config) Validate() error {
	owner := strings.TrimSpace(c.Genesis.Owner)
	if owner == "" {
		return fmt.Errorf("config: Genesis.Owner is required")
	}
	if _, err := crypto.DecodeAddress(owner); err != nil {
		return fmt.Errorf("config: invalid Genesis.Owner: %w", err)
	}
	for name, raw := range map[string]string{
		"OwnerRecipient":     c.Genesis.OwnerRecipient,
		"MarketingRecipient": c.Genesis.MarketingRecipient,
		"DevRecipient":       c.Genesis.DevRecipient,
	} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if _, err := crypto.DecodeAddress(strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("config: invalid Genesis.%s: %w", name, err)
		}
	}
	if !isDecimal(c.Genesis.TotalSupply) {
		return fmt.Errorf("config: invalid Genesis.TotalSupply %q", c.Genesis.TotalSupply)
	}
	if c.Genesis.WalletsLimitPercent > 100 {
		return fmt.Errorf("config: Genesis.WalletsLimitPercent must be at most 100")
	}
	return nil
}

func isDecimal(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate owner key: %w", err)
	}
	cfg := &Config{
		Genesis: Genesis{Owner: key.PubKey().Address().String()},
	}
	cfg.applyDefaults()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return cfg, nil
}
