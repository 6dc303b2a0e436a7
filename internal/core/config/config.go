package config

import (
	"time"

	redisclient "github.com/vietddude/suiwork/internal/infra/redis"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
	"github.com/vietddude/suiwork/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Network   string              `yaml:"network"` // testnet, mainnet, devnet, localnet
	PackageID string              `yaml:"package_id"`
	RPC       RPCConfig           `yaml:"rpc"`
	Retry     routing.RetryConfig `yaml:"retry"`
	Gas       GasConfig           `yaml:"gas"`
	Wallet    WalletConfig        `yaml:"wallet"`
	Link      LinkConfig          `yaml:"link"`
	Server    ServerConfig        `yaml:"server"`
	Redis     redisclient.Config  `yaml:"redis"`
	Logging   LoggingConfig       `yaml:"logging"`
	Database  postgres.Config     `yaml:"database"`
}

// RPCConfig holds the Sui fullnode endpoint settings.
type RPCConfig struct {
	URL          string        `yaml:"url"`           // overrides the network default
	FallbackURLs []string      `yaml:"fallback_urls"` // tried in order when the primary fails
	Timeout      time.Duration `yaml:"timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// GasConfig holds gas settings for locally signed transactions.
type GasConfig struct {
	Budget uint64 `yaml:"budget"`
	Price  uint64 `yaml:"price"` // 0 = reference gas price
}

// AdapterType selects a wallet adapter implementation.
type AdapterType string

const (
	AdapterKeystore AdapterType = "keystore"
	AdapterBridge   AdapterType = "bridge"
)

// WalletConfig lists wallet adapters in probe order.
type WalletConfig struct {
	Scope    string          `yaml:"scope"` // session cache key
	Adapters []AdapterConfig `yaml:"adapters"`
}

// AdapterConfig holds settings for one wallet adapter.
type AdapterConfig struct {
	Name       string        `yaml:"name"`
	Type       AdapterType   `yaml:"type"`
	PrivateKey string        `yaml:"private_key"` // keystore only
	URL        string        `yaml:"url"`         // bridge only
	Token      string        `yaml:"token"`       // bridge only
	Timeout    time.Duration `yaml:"timeout"`
}

// LinkConfig holds the connectivity watcher settings.
type LinkConfig struct {
	Addr     string        `yaml:"addr"` // empty = derived from the RPC URL
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
