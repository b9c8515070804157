/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package backend opens the cache engine selected by a config.Config.
package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/suparena/memstore/config"
	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/datastore/ddb"
	"github.com/suparena/memstore/datastore/memory"
	"github.com/suparena/memstore/datastore/redis"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/registry"
	"github.com/suparena/memstore/storagemodels"
)

// Backend is an opened adapter together with the client it owns.
type Backend struct {
	datastore.Adapter

	// Kind is the configured backend name.
	Kind string

	client io.Closer
}

// Close closes the adapter and the underlying client.
func (b *Backend) Close(ctx context.Context) error {
	err := b.Adapter.Close(ctx)
	if b.client != nil {
		err = stderrors.Join(err, b.client.Close())
	}
	return err
}

// Open builds the adapter selected by cfg. A redis backend is pinged before
// it is returned.
func Open(ctx context.Context, cfg *config.Config, reg *registry.TypeRegistry, logger *zap.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{
			Adapter: memory.New(reg, memory.WithLogger(logger)),
			Kind:    cfg.Backend,
		}, nil

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
		adapter := redis.New(client, reg,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithQueryTimeout(cfg.Redis.QueryTimeout),
			redis.WithScanOptions(storagemodels.WithPageSize(cfg.Redis.PageSize)),
			redis.WithLogger(logger),
		)
		return &Backend{Adapter: adapter, Kind: cfg.Backend, client: client}, nil

	case config.BackendDynamoDB:
		d := cfg.DynamoDB
		client, err := ddb.NewDynamoDBClient(ctx, d.AccessKeyID, d.SecretAccessKey, d.Region, d.Endpoint)
		if err != nil {
			return nil, err
		}
		logger.Info("DynamoDB client created", zap.String("table", d.TableName), zap.String("region", d.Region))
		adapter := ddb.New(client, d.TableName, reg,
			ddb.WithConsistentRead(d.ConsistentRead),
			ddb.WithScanOptions(
				storagemodels.WithPageSize(d.PageSize),
				storagemodels.WithMaxRetries(d.MaxRetries),
				storagemodels.WithRetryBackoff(d.RetryBackoff),
			),
			ddb.WithLogger(logger),
		)
		return &Backend{Adapter: adapter, Kind: cfg.Backend}, nil
	}
	return nil, errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", cfg.Backend))
}
