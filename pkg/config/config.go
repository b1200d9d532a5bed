package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Annotation store drivers.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Defaults for the Base mainnet deployment.
const (
	DefaultRPCURL         = "https://mainnet.base.org"
	DefaultChainID        = 8453
	DefaultFactoryAddress = "0x6bc42F70639cC7B64501dCF7Ee69B06628AAf1BA"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Ledger
	RPCURL              string
	ChainID             int64
	FactoryAddress      string
	WalletAddress       string
	ContractAddress     string
	PrivateKey          string
	RPCTimeout          time.Duration
	StatusConcurrency   int
	ConfirmPollInterval time.Duration

	// Circuit breaker
	BreakerMaxRequests      int
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold int

	// Annotation store
	StoreDriver string
	SQLitePath  string
	StoreDir    string

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Worker
	WorkerRefreshInterval  time.Duration
	WorkerHealthAddr       string
	WorkerMetricsEnabled   bool
	WorkerConsumeConfirmed bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RPCURL:              getEnv("KEEPUP_RPC_URL", DefaultRPCURL),
		ChainID:             int64(getIntEnv("KEEPUP_CHAIN_ID", DefaultChainID)),
		FactoryAddress:      getEnv("KEEPUP_FACTORY_ADDRESS", DefaultFactoryAddress),
		WalletAddress:       getEnv("KEEPUP_WALLET_ADDRESS", ""),
		ContractAddress:     getEnv("KEEPUP_CONTRACT_ADDRESS", ""),
		PrivateKey:          getEnv("KEEPUP_PRIVATE_KEY", ""),
		RPCTimeout:          getDurationEnv("KEEPUP_RPC_TIMEOUT", 15*time.Second),
		StatusConcurrency:   getIntEnv("KEEPUP_STATUS_CONCURRENCY", 8),
		ConfirmPollInterval: getDurationEnv("KEEPUP_CONFIRM_POLL_INTERVAL", 2*time.Second),

		BreakerMaxRequests:      getIntEnv("KEEPUP_BREAKER_MAX_REQUESTS", 1),
		BreakerInterval:         getDurationEnv("KEEPUP_BREAKER_INTERVAL", 60*time.Second),
		BreakerTimeout:          getDurationEnv("KEEPUP_BREAKER_TIMEOUT", 30*time.Second),
		BreakerFailureThreshold: getIntEnv("KEEPUP_BREAKER_FAILURE_THRESHOLD", 5),

		StoreDriver: strings.ToLower(getEnv("KEEPUP_STORE_DRIVER", StoreSQLite)),
		SQLitePath:  getEnv("KEEPUP_SQLITE_PATH", defaultDataPath("keepup.db")),
		StoreDir:    getEnv("KEEPUP_STORE_DIR", defaultDataPath("annotations")),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		WorkerRefreshInterval:  getDurationEnv("WORKER_REFRESH_INTERVAL", time.Minute),
		WorkerHealthAddr:       getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		WorkerMetricsEnabled:   getBoolEnv("WORKER_METRICS_ENABLED", true),
		WorkerConsumeConfirmed: getBoolEnv("WORKER_CONSUME_CONFIRMED", true),
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.WalletAddress != "" && !common.IsHexAddress(c.WalletAddress) {
		problems = append(problems, "KEEPUP_WALLET_ADDRESS is not a hex address")
	}
	if c.ContractAddress != "" && !common.IsHexAddress(c.ContractAddress) {
		problems = append(problems, "KEEPUP_CONTRACT_ADDRESS is not a hex address")
	}
	if !common.IsHexAddress(c.FactoryAddress) {
		problems = append(problems, "KEEPUP_FACTORY_ADDRESS is not a hex address")
	}
	if c.PrivateKey != "" && !isHexKey(c.PrivateKey) {
		problems = append(problems, "KEEPUP_PRIVATE_KEY must be 32 hex-encoded bytes")
	}
	if c.RPCURL == "" {
		problems = append(problems, "KEEPUP_RPC_URL is required")
	}
	if c.ChainID <= 0 {
		problems = append(problems, "KEEPUP_CHAIN_ID must be positive")
	}
	if c.StatusConcurrency <= 0 {
		problems = append(problems, "KEEPUP_STATUS_CONCURRENCY must be positive")
	}

	switch c.StoreDriver {
	case StoreSQLite, StoreFile, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			problems = append(problems, "REDIS_URL is required for the redis store driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("KEEPUP_STORE_DRIVER %q is not one of sqlite, file, redis, memory", c.StoreDriver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Wallet returns the configured wallet, or the zero address.
func (c *Config) Wallet() common.Address {
	return addressOrZero(c.WalletAddress)
}

// Contract returns the contract override, or the zero address.
func (c *Config) Contract() common.Address {
	return addressOrZero(c.ContractAddress)
}

// Factory returns the deployment factory address.
func (c *Config) Factory() common.Address {
	return addressOrZero(c.FactoryAddress)
}

func addressOrZero(s string) common.Address {
	if !common.IsHexAddress(s) {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func isHexKey(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".keepup", name)
	}
	return filepath.Join(home, ".keepup", name)
}
