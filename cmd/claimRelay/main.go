package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/peanutprotocol/peanut-go/pkg/config"
	"github.com/peanutprotocol/peanut-go/pkg/logger"
	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	badgerPersistence "github.com/peanutprotocol/peanut-go/pkg/persistence/badger"
	"github.com/peanutprotocol/peanut-go/pkg/persistence/memory"
	redisPersistence "github.com/peanutprotocol/peanut-go/pkg/persistence/redis"
	"github.com/peanutprotocol/peanut-go/pkg/relay"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "claim-relay",
		Usage: "Peanut withdrawal claim relay",
		Description: `Accepts signed withdrawal claims from link holders, verifies them against the
link key and records them for a funded relayer to submit on chain.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultRelayPort,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvPeanutPort},
			},
			&cli.StringFlag{
				Name:    "persistence",
				Usage:   "Claim storage backend: memory, badger or redis",
				Value:   string(config.PersistenceType_Memory),
				EnvVars: []string{config.EnvPeanutPersistence},
			},
			&cli.StringFlag{
				Name:    "badger-path",
				Usage:   "Badger data directory",
				Value:   config.DefaultBadgerPath,
				EnvVars: []string{config.EnvPeanutBadgerPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port)",
				Value:   config.DefaultRedisAddress,
				EnvVars: []string{config.EnvPeanutRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvPeanutRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvPeanutRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for all Redis keys",
				EnvVars: []string{config.EnvPeanutRedisKeyPrefix},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "Requests per second accepted across all clients (0 disables)",
				Value:   config.DefaultRateLimitPerSecond,
				EnvVars: []string{config.EnvPeanutRateLimit},
			},
			&cli.IntFlag{
				Name:    "rate-burst",
				Usage:   "Token bucket size for rate limiting",
				Value:   config.DefaultRateBurst,
				EnvVars: []string{config.EnvPeanutRateBurst},
			},
			&cli.DurationFlag{
				Name:    "shutdown-timeout",
				Usage:   "Time allowed for in-flight requests on shutdown",
				Value:   config.DefaultShutdownTimeout,
				EnvVars: []string{config.EnvPeanutShutdownTimeout},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvPeanutVerbose},
			},
		},
		Action: runClaimRelay,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runClaimRelay(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := parseRelayConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := newClaimStore(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create claim store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Sugar().Warnw("Failed to close claim store", "error", err)
		}
	}()

	server := relay.NewServer(cfg, store, l)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}

	l.Sugar().Infow("Claim relay running",
		"port", cfg.Port,
		"persistence", cfg.PersistenceType,
		"rate_limit", cfg.RateLimit,
		"rate_burst", cfg.RateBurst)
	l.Sugar().Infow("Available endpoints",
		"submit", "POST /claims",
		"lookup", "GET /claims",
		"health", "GET /health")

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	l.Sugar().Infow("Shutting down claim relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func parseRelayConfig(c *cli.Context) *config.ClaimRelayConfig {
	return &config.ClaimRelayConfig{
		Port:            c.Int("port"),
		PersistenceType: config.PersistenceType(c.String("persistence")),
		Badger: config.BadgerConfig{
			Dir: c.String("badger-path"),
		},
		Redis: config.RedisConfig{
			Address:   c.String("redis-address"),
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: c.String("redis-key-prefix"),
		},
		RateLimit:       c.Float64("rate-limit"),
		RateBurst:       c.Int("rate-burst"),
		ShutdownTimeout: c.Duration("shutdown-timeout"),
		Verbose:         c.Bool("verbose"),
	}
}

func newClaimStore(cfg *config.ClaimRelayConfig, l *zap.Logger) (persistence.IClaimPersistence, error) {
	switch cfg.PersistenceType {
	case config.PersistenceType_Badger:
		return badgerPersistence.NewBadgerPersistence(cfg.Badger.Dir, l)
	case config.PersistenceType_Redis:
		return redisPersistence.NewRedisPersistence(&redisPersistence.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, l)
	default:
		return memory.NewMemoryPersistence(), nil
	}
}
