// Package application builds the storage backends shared by the server and
// the command-line tool from configuration.
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/LeadParser/internal/auth"
	"github.com/JonMunkholm/LeadParser/internal/config"
	"github.com/JonMunkholm/LeadParser/internal/history"
	"github.com/JonMunkholm/LeadParser/internal/logging"
)

// Closer releases a backend. It is never nil.
type Closer func()

func noop() {}

// OpenHistory builds the snapshot store for cfg.History.Backend.
func OpenHistory(ctx context.Context, cfg *config.Config) (*history.Store, Closer, error) {
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}

	store := history.NewStore(kv,
		history.WithNamespace(cfg.History.Namespace),
		history.WithTTL(cfg.History.TTL),
		history.WithMaxEntries(cfg.History.MaxEntries),
	)
	return store, closeKV, nil
}

func openKV(ctx context.Context, cfg *config.Config) (history.KV, Closer, error) {
	log := logging.FromContext(ctx)

	switch strings.ToLower(cfg.History.Backend) {
	case "file":
		kv, err := history.NewFileKV(cfg.History.Dir)
		if err != nil {
			return nil, noop, err
		}
		log.Info("history backend ready", "backend", "file", "dir", cfg.History.Dir)
		return kv, noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("history backend ready", "backend", "redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		// entries carry their own expiry; the key TTL only reaps abandoned namespaces
		return history.NewRedisKV(client, cfg.History.TTL), func() { _ = client.Close() }, nil

	default:
		log.Info("history backend ready", "backend", "memory")
		return history.NewMemoryKV(), noop, nil
	}
}

// OpenUsers returns the account store. Without a database URL accounts live
// in memory and are lost on restart.
func OpenUsers(ctx context.Context, cfg *config.Config) (auth.UserStore, Closer, error) {
	log := logging.FromContext(ctx)

	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, accounts are kept in memory")
		return auth.NewMemoryStore(), noop, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, noop, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, noop, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("ping database: %w", err)
	}

	store := auth.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, noop, err
	}
	log.Info("connected to database", "database", poolConfig.ConnConfig.Database)
	return store, pool.Close, nil
}
