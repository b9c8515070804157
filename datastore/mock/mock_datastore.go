/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides a mock implementation of the datastore.Adapter
// interface for testing code built on memstore.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/registry"
	"github.com/suparena/memstore/search"
)

// Adapter is a mock datastore.Adapter. Every cache is a plain map guarded by
// a mutex; failures can be injected per operation.
type Adapter struct {
	mu       sync.RWMutex
	registry *registry.TypeRegistry
	caches   map[string]*Cache
	order    []string

	cacheError  error
	putError    error
	removeError error
	clearError  error
	queryError  error
	clears      int
}

var _ datastore.Adapter = (*Adapter)(nil)

// New creates a new mock Adapter. Attributes are resolved through reg.
func New(reg *registry.TypeRegistry) *Adapter {
	return &Adapter{
		registry: reg,
		caches:   make(map[string]*Cache),
	}
}

// WithCacheError makes Cache return an error
func (m *Adapter) WithCacheError(err error) *Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheError = err
	return m
}

// WithPutError makes Put and PutIfAbsent return an error
func (m *Adapter) WithPutError(err error) *Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

// WithRemoveError makes Remove and RemoveAll return an error
func (m *Adapter) WithRemoveError(err error) *Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeError = err
	return m
}

// WithClearError makes Clear return an error
func (m *Adapter) WithClearError(err error) *Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearError = err
	return m
}

// WithQueryError makes query execution return an error
func (m *Adapter) WithQueryError(err error) *Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryError = err
	return m
}

func (m *Adapter) Cache(_ context.Context, name string) (datastore.Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cacheError != nil {
		return nil, m.cacheError
	}
	if c, ok := m.caches[name]; ok {
		return c, nil
	}
	c := &Cache{name: name, adapter: m, data: make(map[string]any)}
	m.caches[name] = c
	m.order = append(m.order, name)
	return c, nil
}

func (m *Adapter) Caches() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := slices.Clone(m.order)
	slices.Sort(names)
	return names
}

// Clear empties and forgets every cache unless a clear error is set.
func (m *Adapter) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clears++
	if m.clearError != nil {
		return errors.NewLifecycleError("clear", "", m.clearError)
	}
	m.caches = make(map[string]*Cache)
	m.order = nil
	return nil
}

func (m *Adapter) Close(context.Context) error {
	return nil
}

// Helper methods for testing

// Clears returns how many times Clear was called.
func (m *Adapter) Clears() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clears
}

// SetData directly replaces the contents of cache name (for testing).
// Keys are stored in sorted order.
func (m *Adapter) SetData(name string, data map[string]any) {
	c, _ := m.Cache(context.Background(), name)
	mc := c.(*Cache)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.data = make(map[string]any, len(data))
	for k, v := range data {
		mc.data[k] = v
	}
	mc.keys = keys
}

// GetData returns a copy of the contents of cache name (for testing).
func (m *Adapter) GetData(name string) map[string]any {
	m.mu.RLock()
	c, ok := m.caches[name]
	m.mu.RUnlock()
	if !ok {
		return map[string]any{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]any, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

func (m *Adapter) injected(pick func(*Adapter) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m)
}

// Cache is a mock cache. Records iterate in insertion order.
type Cache struct {
	mu      sync.RWMutex
	name    string
	adapter *Adapter
	data    map[string]any
	keys    []string
}

var _ datastore.Cache = (*Cache)(nil)

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Put(_ context.Context, key string, value any) error {
	if err := c.adapter.injected(func(m *Adapter) error { return m.putError }); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
	return nil
}

func (c *Cache) store(key string, value any) {
	if _, exists := c.data[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.data[key] = value
}

func (c *Cache) PutIfAbsent(_ context.Context, key string, value any) (bool, error) {
	if err := c.adapter.injected(func(m *Adapter) error { return m.putError }); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; exists {
		return false, nil
	}
	c.store(key, value)
	return true, nil
}

func (c *Cache) Get(_ context.Context, key string) (any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

func (c *Cache) Remove(_ context.Context, key string) (any, bool, error) {
	if err := c.adapter.injected(func(m *Adapter) error { return m.removeError }); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	delete(c.data, key)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
	return v, true, nil
}

func (c *Cache) RemoveAll(context.Context) error {
	if err := c.adapter.injected(func(m *Adapter) error { return m.removeError }); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]any)
	c.keys = nil
	return nil
}

func (c *Cache) Size(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data), nil
}

func (c *Cache) CreateQuery() *search.Query {
	return search.NewQuery(search.SourceFunc(c.records), c.adapter.registry.Attribute)
}

func (c *Cache) records(ctx context.Context, _ query.Criteria) ([]search.Record, bool, error) {
	if err := c.adapter.injected(func(m *Adapter) error { return m.queryError }); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	records := make([]search.Record, 0, len(c.keys))
	for _, k := range c.keys {
		records = append(records, search.Record{Key: k, Value: c.data[k]})
	}
	return records, false, nil
}
