package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
)

// ErrInvalidConfig is returned when a loaded config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override the file.
const (
	EnvNetwork   = "SUI_NETWORK"
	EnvPackageID = "SUIWORK_PACKAGE_ID"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expands environment variables, applies
// overrides and defaults, and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = v
	}
	if v := os.Getenv(EnvPackageID); v != "" {
		cfg.PackageID = v
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Network == "" {
		cfg.Network = string(sui.Testnet)
	}
	if cfg.RPC.Timeout == 0 {
		cfg.RPC.Timeout = 30 * time.Second
	}
	if cfg.RPC.ProbeTimeout == 0 {
		cfg.RPC.ProbeTimeout = 5 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = routing.DefaultRetryConfig
	}
	cfg.Retry = cfg.Retry.Normalize()
	if cfg.Gas.Budget == 0 {
		cfg.Gas.Budget = sui.DefaultGasBudget
	}
	if cfg.Wallet.Scope == "" {
		cfg.Wallet.Scope = "default"
	}
	for i := range cfg.Wallet.Adapters {
		a := &cfg.Wallet.Adapters[i]
		if a.Type == "" {
			a.Type = AdapterBridge
			if a.PrivateKey != "" {
				a.Type = AdapterKeystore
			}
		}
		if a.Timeout == 0 {
			a.Timeout = cfg.RPC.Timeout
		}
	}
	if cfg.Link.Interval == 0 {
		cfg.Link.Interval = 5 * time.Second
	}
	if cfg.Link.Timeout == 0 {
		cfg.Link.Timeout = 3 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks fields that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if _, err := sui.ParseNetwork(c.Network); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.PackageID != "" {
		if _, err := domain.NormalizeAddress(c.PackageID); err != nil {
			return fmt.Errorf("%w: package_id: %v", ErrInvalidConfig, err)
		}
	}
	seen := make(map[string]bool, len(c.Wallet.Adapters))
	for i, a := range c.Wallet.Adapters {
		if a.Name == "" {
			return fmt.Errorf("%w: wallet adapter %d has no name", ErrInvalidConfig, i)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate wallet adapter %q", ErrInvalidConfig, a.Name)
		}
		seen[a.Name] = true
		switch a.Type {
		case AdapterKeystore:
			if a.PrivateKey == "" {
				return fmt.Errorf("%w: keystore %q needs private_key", ErrInvalidConfig, a.Name)
			}
		case AdapterBridge:
			if a.URL == "" {
				return fmt.Errorf("%w: bridge %q needs url", ErrInvalidConfig, a.Name)
			}
		default:
			return fmt.Errorf("%w: wallet adapter %q has unknown type %q", ErrInvalidConfig, a.Name, a.Type)
		}
	}
	return nil
}

// RPCURL returns the configured fullnode URL or the network default.
func (c *AppConfig) RPCURL() string {
	if c.RPC.URL != "" {
		return c.RPC.URL
	}
	n, err := sui.ParseNetwork(c.Network)
	if err != nil {
		n = sui.Testnet
	}
	return n.FullnodeURL()
}

// LinkAddr returns the address the link watcher dials, derived from the RPC
// URL when not set.
func (c *AppConfig) LinkAddr() string {
	if c.Link.Addr != "" {
		return c.Link.Addr
	}
	u, err := url.Parse(c.RPCURL())
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "443"
	if u.Scheme == "http" {
		port = "80"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
