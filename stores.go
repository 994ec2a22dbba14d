package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cadastro/cache"
	"cadastro/config"
	"cadastro/db"
	"cadastro/db/sqlite"
	handler "cadastro/http"

	"github.com/redis/go-redis/v9"
)

type stores struct {
	pessoas   db.Repository[db.Pessoa]
	enderecos db.Repository[db.Endereco]
	pinger    handler.Pinger
	closers   []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Cfg, logger *slog.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.DatabaseDriver {
	case config.DriverSqlite:
		store, err := sqlite.Open(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = store.Close() })
		st.pessoas, st.enderecos, st.pinger = store.Pessoas(), store.Enderecos(), store

	default:
		conn, err := db.Connect(ctx, db.ConnectionConfig{
			Url:             cfg.DatabaseURL,
			MaxConnections:  cfg.MaxConnections,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, conn.Close)

		if cfg.CreateSchema {
			if err := db.CreateSchema(ctx, conn); err != nil {
				st.Close()
				return nil, err
			}
		}
		st.pessoas, st.enderecos, st.pinger = db.NewPessoaRepository(conn), db.NewEnderecoRepository(conn), conn
	}

	backend, err := openCacheBackend(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	if backend != nil {
		st.closers = append(st.closers, func() { _ = backend.Close() })
		withCache(st, backend, cfg.CacheTTL, logger)
	}

	return st, nil
}

func openCacheBackend(ctx context.Context, cfg *config.Cfg) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemoryBackend(cfg.CacheMaxBytes)

	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return cache.NewRedisBackend(rdb), nil
	}
	return nil, nil
}

// withCache puts the read cache in front of both repositories. Deleting a
// Pessoa also evicts its addresses, whose owner reference the store clears.
func withCache(st *stores, backend cache.Backend, ttl time.Duration, logger *slog.Logger) {
	const pessoaPrefix, enderecoPrefix = "pessoa", "endereco"

	uncachedEnderecos := st.enderecos

	st.enderecos = cache.Wrap(uncachedEnderecos, backend, enderecoPrefix,
		cache.WithTTL[db.Endereco](ttl),
		cache.WithLogger[db.Endereco](logger))

	st.pessoas = cache.Wrap(st.pessoas, backend, pessoaPrefix,
		cache.WithTTL[db.Pessoa](ttl),
		cache.WithLogger[db.Pessoa](logger),
		cache.WithDependents[db.Pessoa](cache.OwnedEnderecoKeys(uncachedEnderecos, enderecoPrefix)))
}
