package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the claim relay and the peanut CLI
const (
	EnvPeanutPort            = "PEANUT_PORT"
	EnvPeanutPersistence     = "PEANUT_PERSISTENCE"
	EnvPeanutBadgerPath      = "PEANUT_BADGER_PATH"
	EnvPeanutRedisAddress    = "PEANUT_REDIS_ADDRESS"
	EnvPeanutRedisPassword   = "PEANUT_REDIS_PASSWORD"
	EnvPeanutRedisDB         = "PEANUT_REDIS_DB"
	EnvPeanutRedisKeyPrefix  = "PEANUT_REDIS_KEY_PREFIX"
	EnvPeanutRateLimit       = "PEANUT_RATE_LIMIT"
	EnvPeanutRateBurst       = "PEANUT_RATE_BURST"
	EnvPeanutRegistry        = "PEANUT_REGISTRY"
	EnvPeanutPrivateKey      = "PEANUT_PRIVATE_KEY"
	EnvPeanutVerbose         = "PEANUT_VERBOSE"
	EnvPeanutShutdownTimeout = "PEANUT_SHUTDOWN_TIMEOUT"
	EnvPeanutContractVersion = "PEANUT_CONTRACT_VERSION"
)

const (
	DefaultRelayPort          = 8080
	DefaultRateLimitPerSecond = 10.0
	DefaultRateBurst          = 20
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultContractVersion    = "v4"
	DefaultBadgerPath         = "./data/claims"
	DefaultRedisAddress       = "localhost:6379"
)

type ChainId uint64

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_OptimismMainnet ChainId = 10
	ChainId_PolygonMainnet  ChainId = 137
	ChainId_ArbitrumMainnet ChainId = 42161
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_OptimismMainnet ChainName = "optimism"
	ChainName_PolygonMainnet  ChainName = "polygon"
	ChainName_ArbitrumMainnet ChainName = "arbitrum"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_OptimismMainnet: ChainName_OptimismMainnet,
	ChainId_PolygonMainnet:  ChainName_PolygonMainnet,
	ChainId_ArbitrumMainnet: ChainName_ArbitrumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_EthereumMainnet: ChainId_EthereumMainnet,
	ChainName_OptimismMainnet: ChainId_OptimismMainnet,
	ChainName_PolygonMainnet:  ChainId_PolygonMainnet,
	ChainName_ArbitrumMainnet: ChainId_ArbitrumMainnet,
	ChainName_EthereumSepolia: ChainId_EthereumSepolia,
	ChainName_EthereumAnvil:   ChainId_EthereumAnvil,
}

// IsTestnet reports whether claims on chainId move test funds only.
func (c ChainId) IsTestnet() bool {
	return c == ChainId_EthereumSepolia || c == ChainId_EthereumAnvil
}

// GetSupportedChainIDs returns all supported chain IDs in ascending order
func GetSupportedChainIDs() []ChainId {
	ids := make([]ChainId, 0, len(ChainIdToName))
	for id := range ChainIdToName {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	parts := make([]string, 0, len(ChainIdToName))
	for _, id := range GetSupportedChainIDs() {
		parts = append(parts, fmt.Sprintf("%d (%s)", id, ChainIdToName[id]))
	}
	return strings.Join(parts, ", ")
}

type PersistenceType string

const (
	PersistenceType_Memory PersistenceType = "memory"
	PersistenceType_Badger PersistenceType = "badger"
	PersistenceType_Redis  PersistenceType = "redis"
)

func (p PersistenceType) String() string {
	return string(p)
}

// BadgerConfig holds Badger-specific settings
type BadgerConfig struct {
	Dir string `json:"dir"`
}

// RedisConfig holds Redis-specific settings
type RedisConfig struct {
	Address   string `json:"address"`
	Password  string `json:"-"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"keyPrefix"`
}

// ClaimRelayConfig represents the complete configuration for a claim relay
type ClaimRelayConfig struct {
	Port int `json:"port"`

	PersistenceType PersistenceType `json:"persistenceType"`
	Badger          BadgerConfig    `json:"badger"`
	Redis           RedisConfig     `json:"redis"`

	// Requests per second accepted across all clients, and the bucket size.
	RateLimit float64 `json:"rateLimit"`
	RateBurst int     `json:"rateBurst"`

	ShutdownTimeout time.Duration `json:"shutdownTimeout"`

	Verbose bool `json:"verbose"`
}

// NewDefaultClaimRelayConfig returns an in-memory relay on the default port
func NewDefaultClaimRelayConfig() *ClaimRelayConfig {
	return &ClaimRelayConfig{
		Port:            DefaultRelayPort,
		PersistenceType: PersistenceType_Memory,
		Badger:          BadgerConfig{Dir: DefaultBadgerPath},
		Redis:           RedisConfig{Address: DefaultRedisAddress},
		RateLimit:       DefaultRateLimitPerSecond,
		RateBurst:       DefaultRateBurst,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate validates the claim relay configuration
func (c *ClaimRelayConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("port"), c.Port, "port must be between 1-65535"))
	}

	switch c.PersistenceType {
	case PersistenceType_Memory:
	case PersistenceType_Badger:
		if c.Badger.Dir == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("badger", "dir"), "badger dir is required"))
		}
	case PersistenceType_Redis:
		if c.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redis", "address"), "redis address is required"))
		}
		if c.Redis.DB < 0 || c.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redis", "db"), c.Redis.DB, "redis db must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("persistenceType"), c.PersistenceType,
			[]string{string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis)}))
	}

	if c.RateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit, "rate limit cannot be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateBurst"), c.RateBurst, "burst must be at least 1 when rate limiting"))
	}
	if c.ShutdownTimeout < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("shutdownTimeout"), c.ShutdownTimeout.String(), "timeout cannot be negative"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
