package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB configuration
	Mongo MongoConfig

	// Chain configuration
	Chains ChainsConfig

	// RPC provider configuration
	RPC RPCConfig

	// Scanner configuration
	Scanner ScannerConfig

	// API server configuration
	API APIConfig

	// Redis configuration
	Redis RedisConfig

	// Logging configuration
	Log LogConfig
}

// MongoConfig holds storage connection settings
type MongoConfig struct {
	URI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017/lifi"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// ChainsConfig holds the enabled-chain set and per-chain endpoints.
// RPC URLs have no defaults; the registry rejects an enabled chain
// whose URL is missing.
type ChainsConfig struct {
	Enabled         []int64 `envconfig:"ENABLED_CHAINS" default:"137"`
	ContractAddress string  `envconfig:"CONTRACT_ADDRESS" default:"0xbd6c7b0d2f68c2b7805d88388319cfb6ecb50ea9"`

	EthereumRPCURL     string `envconfig:"ETHEREUM_RPC_URL"`
	EthereumStartBlock int64  `envconfig:"ETHEREUM_START_BLOCK" default:"0"`

	OptimismRPCURL     string `envconfig:"OPTIMISM_RPC_URL"`
	OptimismStartBlock int64  `envconfig:"OPTIMISM_START_BLOCK" default:"0"`

	BSCRPCURL     string `envconfig:"BSC_RPC_URL"`
	BSCStartBlock int64  `envconfig:"BSC_START_BLOCK" default:"0"`

	GnosisRPCURL     string `envconfig:"GNOSIS_RPC_URL"`
	GnosisStartBlock int64  `envconfig:"GNOSIS_START_BLOCK" default:"0"`

	PolygonRPCURL     string `envconfig:"POLYGON_RPC_URL"`
	PolygonStartBlock int64  `envconfig:"POLYGON_START_BLOCK" default:"0"`

	BaseRPCURL     string `envconfig:"BASE_RPC_URL"`
	BaseStartBlock int64  `envconfig:"BASE_START_BLOCK" default:"0"`
}

// Endpoint returns the RPC URL and start block configured for a chain id.
// Unknown ids return an empty URL; the registry decides whether that is fatal.
func (c *ChainsConfig) Endpoint(chainID int64) (rpcURL string, startBlock int64) {
	switch chainID {
	case 1:
		return c.EthereumRPCURL, c.EthereumStartBlock
	case 10:
		return c.OptimismRPCURL, c.OptimismStartBlock
	case 56:
		return c.BSCRPCURL, c.BSCStartBlock
	case 100:
		return c.GnosisRPCURL, c.GnosisStartBlock
	case 137:
		return c.PolygonRPCURL, c.PolygonStartBlock
	case 8453:
		return c.BaseRPCURL, c.BaseStartBlock
	}
	return "", 0
}

// RPCConfig holds provider call settings shared by all chain clients
type RPCConfig struct {
	RequestTimeout time.Duration `envconfig:"RPC_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"RPC_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"RPC_RETRY_DELAY" default:"1s"`
}

// ScannerConfig holds scanner-specific settings
type ScannerConfig struct {
	ChunkSize    int64         `envconfig:"CHUNK_SIZE" default:"500"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	MetricsPort  int           `envconfig:"METRICS_PORT" default:"8080"`
}

// APIConfig holds read API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Scanner.ChunkSize < 1 {
		return errs.NewConfiguration("CHUNK_SIZE must be at least 1, got %d", c.Scanner.ChunkSize)
	}
	if len(c.Chains.Enabled) == 0 {
		return errs.NewConfiguration("ENABLED_CHAINS must name at least one chain")
	}
	return nil
}
