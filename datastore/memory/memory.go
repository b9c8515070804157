/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory is an in-process memstore engine built on concurrent maps.
package memory

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/registry"
	"github.com/suparena/memstore/search"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter keeps every cache in process memory.
type Adapter struct {
	registry *registry.TypeRegistry
	handles  *datastore.Handles[*Cache]
	logger   *zap.Logger
}

var _ datastore.Adapter = (*Adapter)(nil)

// New returns an empty in-memory adapter. Attributes of stored values are
// resolved through reg.
func New(reg *registry.TypeRegistry, opts ...Option) *Adapter {
	a := &Adapter{
		registry: reg,
		handles:  datastore.NewHandles[*Cache](),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the cache called name, creating it on first use.
func (a *Adapter) Cache(_ context.Context, name string) (datastore.Cache, error) {
	return a.handles.Get(name, func(name string) (*Cache, error) {
		a.logger.Debug("Cache created", zap.String("cache", name))
		return newCache(name, a.registry), nil
	})
}

// Caches returns the names of the caches created so far.
func (a *Adapter) Caches() []string {
	return a.handles.Names()
}

// Clear empties every cache and releases the handles.
func (a *Adapter) Clear(ctx context.Context) error {
	caches := a.handles.Len()
	if err := a.handles.ClearAll(ctx); err != nil {
		return err
	}
	a.logger.Info("Caches cleared", zap.Int("caches", caches))
	return nil
}

// Close is a no-op; the adapter holds no external resources.
func (a *Adapter) Close(context.Context) error {
	return nil
}

type entry struct {
	value any
	seq   uint64
}

// Cache is an in-memory cache. Records iterate in insertion order;
// overwriting a key keeps its position.
type Cache struct {
	name     string
	entries  *xsync.MapOf[string, entry]
	seq      atomic.Uint64
	registry *registry.TypeRegistry
}

var _ datastore.Cache = (*Cache)(nil)

func newCache(name string, reg *registry.TypeRegistry) *Cache {
	return &Cache{
		name:     name,
		entries:  xsync.NewMapOf[string, entry](),
		registry: reg,
	}
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Put(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded {
			old.value = value
			return old, false
		}
		return entry{value: value, seq: c.seq.Add(1)}, false
	})
	return nil
}

func (c *Cache) PutIfAbsent(ctx context.Context, key string, value any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, loaded := c.entries.LoadOrCompute(key, func() entry {
		return entry{value: value, seq: c.seq.Add(1)}
	})
	return !loaded, nil
}

func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	e, ok := c.entries.Load(key)
	return e.value, ok, nil
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

func (c *Cache) Remove(ctx context.Context, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	e, ok := c.entries.LoadAndDelete(key)
	return e.value, ok, nil
}

func (c *Cache) RemoveAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.entries.Clear()
	return nil
}

func (c *Cache) Size(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.entries.Size(), nil
}

func (c *Cache) CreateQuery() *search.Query {
	return search.NewQuery(search.SourceFunc(c.records), c.registry.Attribute)
}

// records snapshots the cache in insertion order. Criteria are left to the
// query.
func (c *Cache) records(ctx context.Context, _ query.Criteria) ([]search.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	type ordered struct {
		search.Record
		seq uint64
	}
	snapshot := make([]ordered, 0, c.entries.Size())
	c.entries.Range(func(key string, e entry) bool {
		snapshot = append(snapshot, ordered{Record: search.Record{Key: key, Value: e.value}, seq: e.seq})
		return true
	})
	slices.SortFunc(snapshot, func(a, b ordered) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	records := make([]search.Record, len(snapshot))
	for i, o := range snapshot {
		records[i] = o.Record
	}
	return records, false, nil
}
