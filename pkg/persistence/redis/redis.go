package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixClaim       = "peanut:claim:"
	keySchemaVersion     = "peanut:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Key set for listing operations (Redis doesn't support prefix iteration natively)
	keySetClaims = "peanut:claims:index"

	operationTimeout = 5 * time.Second
)

// saveClaimScript writes the record and its index entry in one step. KEYS[1]
// is the claim key, KEYS[2] the index set; ARGV[1] the record, ARGV[2] the
// index member. Returns 1 when stored and 0 when the claim already exists. If
// the index write fails the record is removed again.
var saveClaimScript = redis.NewScript(`
if not redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	return 0
end
local res = redis.pcall('SADD', KEYS[2], ARGV[2])
if type(res) == 'table' and res.err then
	redis.call('DEL', KEYS[1])
	return res
end
return 1
`)

// RedisPersistence is a claim store backed by Redis, for relays that run as
// several replicas behind a load balancer.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to all keys, e.g. "staging:" yields
	// "staging:peanut:claim:...". Empty keeps the default "peanut:" namespace.
	KeyPrefix string
}

// NewRedisPersistence creates a new Redis-backed persistence layer.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis claim persistence initialized",
		"address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)

	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) claimKey(key persistence.ClaimKey) string {
	return r.prefixKey(keyPrefixClaim + key.String())
}

// initSchema initializes or validates the schema version
func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if errors.Is(err, redis.Nil) {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// SaveClaim stores a record and its index entry atomically. Only the first
// writer for a deposit succeeds.
func (r *RedisPersistence) SaveClaim(record *persistence.ClaimRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	key := record.Key()
	stored := *record
	stored.ContractAddress = key.ContractAddress
	data, err := persistence.MarshalClaimRecord(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal ClaimRecord: %w", err)
	}

	inserted, err := saveClaimScript.Run(ctx, r.client,
		[]string{r.claimKey(key), r.prefixKey(keySetClaims)},
		data, key.String(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to save ClaimRecord: %w", err)
	}
	if inserted == 0 {
		return fmt.Errorf("%w: %s", persistence.ErrClaimExists, key)
	}
	return nil
}

// LoadClaim retrieves a claim record by deposit
func (r *RedisPersistence) LoadClaim(key persistence.ClaimKey) (*persistence.ClaimRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.claimKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ClaimRecord: %w", err)
	}

	record, err := persistence.UnmarshalClaimRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal ClaimRecord: %w", err)
	}
	return record, nil
}

// ListClaims returns all claim records sorted by key
func (r *RedisPersistence) ListClaims() ([]*persistence.ClaimRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	indexKey := r.prefixKey(keySetClaims)
	members, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list claim keys: %w", err)
	}

	records := make([]*persistence.ClaimRecord, 0, len(members))
	if len(members) == 0 {
		return records, nil
	}

	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = r.prefixKey(keyPrefixClaim + member)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ClaimRecords: %w", err)
	}

	for i, val := range values {
		if val == nil {
			// Key was in index but doesn't exist - clean up index
			r.client.SRem(ctx, indexKey, members[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for ClaimRecord", "key", keys[i])
			continue
		}

		record, err := persistence.UnmarshalClaimRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal ClaimRecord, skipping",
				"key", keys[i], "error", err)
			continue
		}

		records = append(records, record)
	}

	persistence.SortClaimRecords(records)

	return records, nil
}

// DeleteClaim removes a claim record
func (r *RedisPersistence) DeleteClaim(key persistence.ClaimKey) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.claimKey(key))
	pipe.SRem(ctx, r.prefixKey(keySetClaims), key.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete ClaimRecord: %w", err)
	}
	return nil
}

// Close shuts down the persistence layer
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis claim persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}

	return nil
}
