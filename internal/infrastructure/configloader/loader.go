package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMnemonicSecret is the secret key the mnemonic is read from when a network does not name one.
	DefaultMnemonicSecret = "MNEMONIC"
	// DefaultNetworkName is activated when the configuration lists no networks.
	DefaultNetworkName = "ropsten"
)

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	EnableCORS   bool   `yaml:"enableCORS"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	Development bool   `yaml:"development"`
}

// RpcClientConfig holds defaults shared by every RPC client.
type RpcClientConfig struct {
	DefaultTimeoutMs    int64  `yaml:"defaultTimeoutMs"`
	ConnectionTimeoutMs int64  `yaml:"connectionTimeoutMs"`
	LimiterPeriod       string `yaml:"limiterPeriod"`
	LimiterBurst        int    `yaml:"limiterBurst"`
	MaxBatchSize        int    `yaml:"maxBatchSize"`
}

// NetworkServiceConfig holds configuration for the network service.
type NetworkServiceConfig struct {
	MaxConcurrentChecks   int   `yaml:"maxConcurrentChecks"`
	StatusCacheTTLSeconds int   `yaml:"statusCacheTTLSeconds"`
	ProbeTimeoutMs        int64 `yaml:"probeTimeoutMs"`
}

// NetworkNodeConfig holds configuration for a single deployment target.
// Secrets are never stored here: MnemonicSecret and PassphraseSecret name the keys they are read from,
// and Endpoint may reference secrets with ${VAR} placeholders.
type NetworkNodeConfig struct {
	Name             string `yaml:"name"`
	NetworkID        uint64 `yaml:"networkId"`
	ChainID          uint64 `yaml:"chainId"`
	Endpoint         string `yaml:"endpoint"`
	MnemonicSecret   string `yaml:"mnemonicSecret"`
	PassphraseSecret string `yaml:"passphraseSecret"`
	DerivationPath   string `yaml:"derivationPath"`
	AddressIndex     uint32 `yaml:"addressIndex"`
	NumAddresses     uint32 `yaml:"numAddresses"`
	NativeSymbol     string `yaml:"nativeSymbol"`
	RPCTimeoutMs     int64  `yaml:"rpcTimeoutMs"`
	LimiterPeriod    string `yaml:"limiterPeriod"`
	LimiterBurst     int    `yaml:"limiterBurst"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	RpcClient      RpcClientConfig      `yaml:"rpcClient"`
	NetworkService NetworkServiceConfig `yaml:"networkService"`
	Networks       []NetworkNodeConfig  `yaml:"networks"`
}

// Load reads the YAML configuration file from the given path, unmarshals it and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to parse config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Config file %s not found, using built-in defaults", path)
		return Default(), nil
	}
	return cfg, err
}

// Parse unmarshals YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is supplied: a single ropsten target
// whose mnemonic and Infura key come from the environment.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.RpcClient.DefaultTimeoutMs <= 0 {
		cfg.RpcClient.DefaultTimeoutMs = 10000
		logrus.Debugf("RpcClient.DefaultTimeoutMs not set, defaulting to %d ms", cfg.RpcClient.DefaultTimeoutMs)
	}
	if cfg.RpcClient.ConnectionTimeoutMs <= 0 {
		cfg.RpcClient.ConnectionTimeoutMs = 10000
	}
	if cfg.RpcClient.LimiterPeriod == "" {
		cfg.RpcClient.LimiterPeriod = "100ms"
	}
	if cfg.RpcClient.LimiterBurst <= 0 {
		cfg.RpcClient.LimiterBurst = 5
	}
	if cfg.RpcClient.MaxBatchSize <= 0 {
		cfg.RpcClient.MaxBatchSize = 100
	}

	if cfg.NetworkService.MaxConcurrentChecks <= 0 {
		cfg.NetworkService.MaxConcurrentChecks = 4
	}
	if cfg.NetworkService.StatusCacheTTLSeconds <= 0 {
		cfg.NetworkService.StatusCacheTTLSeconds = 30
	}
	if cfg.NetworkService.ProbeTimeoutMs <= 0 {
		cfg.NetworkService.ProbeTimeoutMs = 5000
	}

	if len(cfg.Networks) == 0 {
		logrus.Infof("No networks configured, activating %q", DefaultNetworkName)
		cfg.Networks = []NetworkNodeConfig{{Name: DefaultNetworkName}}
	}
	for i := range cfg.Networks {
		n := &cfg.Networks[i]
		if n.MnemonicSecret == "" {
			n.MnemonicSecret = DefaultMnemonicSecret
		}
		if n.RPCTimeoutMs <= 0 {
			n.RPCTimeoutMs = cfg.RpcClient.DefaultTimeoutMs
		}
		if n.LimiterPeriod == "" {
			n.LimiterPeriod = cfg.RpcClient.LimiterPeriod
		}
		if n.LimiterBurst <= 0 {
			n.LimiterBurst = cfg.RpcClient.LimiterBurst
		}
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Networks))
	for i, n := range c.Networks {
		if n.Name == "" {
			return fmt.Errorf("networks[%d]: name is required", i)
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("networks[%d]: duplicate network name %q", i, n.Name)
		}
		seen[n.Name] = struct{}{}
		if _, err := time.ParseDuration(n.LimiterPeriod); err != nil {
			return fmt.Errorf("network %q: invalid limiterPeriod %q: %w", n.Name, n.LimiterPeriod, err)
		}
	}
	return nil
}

// LimiterPeriodDuration parses LimiterPeriod. Validate guarantees it parses after Load.
func (n NetworkNodeConfig) LimiterPeriodDuration() time.Duration {
	d, err := time.ParseDuration(n.LimiterPeriod)
	if err != nil {
		return 0
	}
	return d
}

// RPCTimeout returns RPCTimeoutMs as a duration.
func (n NetworkNodeConfig) RPCTimeout() time.Duration {
	return time.Duration(n.RPCTimeoutMs) * time.Millisecond
}
