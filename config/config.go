package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the operator's wallet identity and the external collaborator
// endpoints.
type Config struct {
	WalletID       string
	WalletAddress  string
	DBPath         string
	SnapshotDir    string
	RPCURL         string
	PriceAPIURL    string
	OrderAPIURL    string
	RequestTimeout time.Duration
}

type configTmp struct {
	WalletID       string `yaml:"wallet_id"`
	WalletAddress  string `yaml:"wallet_address"`
	DBPath         string `yaml:"db_path"`
	SnapshotDir    string `yaml:"snapshot_dir"`
	RPCURL         string `yaml:"rpc_url"`
	PriceAPIURL    string `yaml:"price_api_url"`
	OrderAPIURL    string `yaml:"order_api_url"`
	RequestTimeout string `yaml:"request_timeout"`
}

// Default returns the configuration used when no yaml file is provided.
func Default() *Config {
	return &Config{
		DBPath:         "./solpnl.sqlite",
		SnapshotDir:    "./wal/snapshots",
		RPCURL:         "https://api.mainnet-beta.solana.com",
		PriceAPIURL:    "https://api.jup.ag",
		OrderAPIURL:    "https://api.jup.ag",
		RequestTimeout: 15 * time.Second,
	}
}

// Load reads the yaml config at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var tmp configTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	if tmp.WalletID != "" {
		cfg.WalletID = tmp.WalletID
	}
	if tmp.WalletAddress != "" {
		cfg.WalletAddress = tmp.WalletAddress
	}
	if tmp.DBPath != "" {
		cfg.DBPath = tmp.DBPath
	}
	if tmp.SnapshotDir != "" {
		cfg.SnapshotDir = tmp.SnapshotDir
	}
	if tmp.RPCURL != "" {
		cfg.RPCURL = tmp.RPCURL
	}
	if tmp.PriceAPIURL != "" {
		cfg.PriceAPIURL = tmp.PriceAPIURL
	}
	if tmp.OrderAPIURL != "" {
		cfg.OrderAPIURL = tmp.OrderAPIURL
	}
	if tmp.RequestTimeout != "" {
		timeout, err := time.ParseDuration(tmp.RequestTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid request_timeout %q", tmp.RequestTimeout)
		}
		cfg.RequestTimeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the collaborator endpoints are set.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.RPCURL == "" {
		return errors.New("rpc_url is required")
	}
	if c.PriceAPIURL == "" {
		return errors.New("price_api_url is required")
	}
	if c.OrderAPIURL == "" {
		return errors.New("order_api_url is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}
