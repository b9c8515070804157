/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package redis is a memstore engine that keeps each cache in one Redis hash.
//
// Hash fields are record keys; hash values are msgpack envelopes carrying the
// registry type name and the msgpack payload of the value. The caller owns
// the redis.Client lifecycle.
package redis

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/registry"
	"github.com/suparena/memstore/search"
	"github.com/suparena/memstore/storagemodels"
)

const (
	// DefaultPrefix namespaces every cache hash.
	DefaultPrefix = "memstore"

	// DefaultQueryTimeout bounds each Redis round trip.
	DefaultQueryTimeout = 5 * time.Second
)

type config struct {
	prefix       string
	queryTimeout time.Duration
	scan         []storagemodels.ScanOption
	logger       *zap.Logger
}

// Option configures an Adapter.
type Option func(*config)

// WithPrefix sets the key prefix. Cache hashes are stored at "prefix:name".
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithQueryTimeout sets the per-operation timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}

// WithScanOptions configures HSCAN paging for queries.
func WithScanOptions(opts ...storagemodels.ScanOption) Option {
	return func(c *config) { c.scan = append(c.scan, opts...) }
}

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Adapter manages caches stored as Redis hashes.
type Adapter struct {
	client   *redis.Client
	registry *registry.TypeRegistry
	cfg      config
	handles  *datastore.Handles[*Cache]
}

var _ datastore.Adapter = (*Adapter)(nil)

// New returns an adapter over client. Values are encoded with the type
// names registered in reg and decoded through it.
func New(client *redis.Client, reg *registry.TypeRegistry, opts ...Option) *Adapter {
	cfg := config{
		prefix:       DefaultPrefix,
		queryTimeout: DefaultQueryTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{
		client:   client,
		registry: reg,
		cfg:      cfg,
		handles:  datastore.NewHandles[*Cache](),
	}
}

func (a *Adapter) hashKey(name string) string {
	if a.cfg.prefix == "" {
		return name
	}
	return a.cfg.prefix + ":" + name
}

// Cache returns the cache called name. Creating a handle does not touch Redis.
func (a *Adapter) Cache(_ context.Context, name string) (datastore.Cache, error) {
	return a.handles.Get(name, func(name string) (*Cache, error) {
		a.cfg.logger.Debug("Cache created",
			zap.String("cache", name),
			zap.String("hash", a.hashKey(name)),
		)
		return &Cache{name: name, key: a.hashKey(name), adapter: a}, nil
	})
}

// Caches returns the names of the caches created through this adapter.
func (a *Adapter) Caches() []string {
	return a.handles.Names()
}

// Clear empties the caches of this adapter and deletes any other hash under
// the prefix, so caches written by other processes are cleared too.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.handles.ClearAll(ctx); err != nil {
		return err
	}
	if a.cfg.prefix == "" {
		return nil
	}

	qctx, cancel := context.WithTimeout(ctx, a.cfg.queryTimeout)
	defer cancel()

	var deleted int
	iter := a.client.Scan(qctx, 0, a.cfg.prefix+":*", 100).Iterator()
	for iter.Next(qctx) {
		if err := a.client.Del(qctx, iter.Val()).Err(); err != nil {
			return errors.NewLifecycleError("clear", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return errors.NewLifecycleError("clear", a.cfg.prefix+":*", err)
	}

	a.cfg.logger.Info("Caches cleared",
		zap.String("prefix", a.cfg.prefix),
		zap.Int("orphanedHashes", deleted),
	)
	return nil
}

// Close is a no-op; the caller owns the redis.Client lifecycle.
func (a *Adapter) Close(context.Context) error {
	return nil
}

// Cache is one Redis hash.
type Cache struct {
	name    string
	key     string
	adapter *Adapter
}

var _ datastore.Cache = (*Cache)(nil)

func (c *Cache) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.adapter.cfg.queryTimeout)
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) encode(value any) ([]byte, error) {
	typeName, err := c.adapter.registry.TypeName(value)
	if err != nil {
		return nil, err
	}
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", typeName, err)
	}
	data, err := msgpack.Marshal(storagemodels.Envelope{Type: typeName, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

func (c *Cache) decode(data []byte) (any, error) {
	var env storagemodels.Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return c.adapter.registry.Decode(env.Type, func(target any) error {
		return msgpack.Unmarshal(env.Payload, target)
	})
}

func (c *Cache) Put(ctx context.Context, key string, value any) error {
	data, err := c.encode(value)
	if err != nil {
		return err
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.adapter.client.HSet(qctx, c.key, key, data).Err()
}

func (c *Cache) PutIfAbsent(ctx context.Context, key string, value any) (bool, error) {
	data, err := c.encode(value)
	if err != nil {
		return false, err
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.adapter.client.HSetNX(qctx, c.key, key, data).Result()
}

func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	data, err := c.adapter.client.HGet(qctx, c.key, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := c.decode(data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.adapter.client.HExists(qctx, c.key, key).Result()
}

// Remove reads and deletes key in one MULTI/EXEC transaction.
func (c *Cache) Remove(ctx context.Context, key string) (any, bool, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()

	var get *redis.StringCmd
	_, err := c.adapter.client.TxPipelined(qctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(qctx, c.key, key)
		pipe.HDel(qctx, c.key, key)
		return nil
	})
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := get.Bytes()
	if err != nil {
		return nil, false, err
	}
	v, err := c.decode(data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Cache) RemoveAll(ctx context.Context) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.adapter.client.Del(qctx, c.key).Err()
}

func (c *Cache) Size(ctx context.Context) (int, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	n, err := c.adapter.client.HLen(qctx, c.key).Result()
	return int(n), err
}

func (c *Cache) CreateQuery() *search.Query {
	return search.NewQuery(search.SourceFunc(c.records), c.adapter.registry.Attribute)
}

// records pages through the hash with HSCAN and yields the records in key
// order. Criteria are evaluated by the query.
func (c *Cache) records(ctx context.Context, _ query.Criteria) ([]search.Record, bool, error) {
	opts := storagemodels.ApplyScanOptions(c.adapter.cfg.scan...)
	start := time.Now()

	raw := make(map[string]string)
	var (
		cursor uint64
		pages  int
	)
	for {
		qctx, cancel := c.queryCtx(ctx)
		fields, next, err := c.adapter.client.HScan(qctx, c.key, cursor, "", int64(opts.PageSize)).Result()
		cancel()
		if err != nil {
			return nil, false, fmt.Errorf("hscan %s: %w", c.key, err)
		}
		for i := 0; i+1 < len(fields); i += 2 {
			raw[fields[i]] = fields[i+1]
		}
		pages++
		if opts.ProgressHandler != nil {
			opts.ProgressHandler(storagemodels.Progress(int64(len(raw)), pages, start))
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]search.Record, 0, len(keys))
	for _, k := range keys {
		v, err := c.decode([]byte(raw[k]))
		if err != nil {
			return nil, false, fmt.Errorf("decode %s/%s: %w", c.name, k, err)
		}
		records = append(records, search.Record{Key: k, Value: v})
	}

	c.adapter.cfg.logger.Debug("Cache scanned",
		zap.String("cache", c.name),
		zap.Int("records", len(records)),
		zap.Int("pages", pages),
	)
	return records, false, nil
}
