/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/memstore/search"
)

// Cache is a named collection of key/value records in a backing engine.
// All values of one alias live in one cache.
type Cache interface {
	Name() string

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value any) error

	// PutIfAbsent stores value only when key is free. stored is false when
	// a value already existed.
	PutIfAbsent(ctx context.Context, key string, value any) (stored bool, err error)

	Get(ctx context.Context, key string) (value any, found bool, err error)

	Contains(ctx context.Context, key string) (bool, error)

	// Remove deletes key and returns the value it held.
	Remove(ctx context.Context, key string) (value any, found bool, err error)

	RemoveAll(ctx context.Context) error

	Size(ctx context.Context) (int, error)

	// CreateQuery returns a new search query over this cache.
	CreateQuery() *search.Query
}

// Adapter manages the caches of one backing engine.
type Adapter interface {
	// Cache returns the cache called name, creating it on first use.
	// Concurrent callers receive the same handle.
	Cache(ctx context.Context, name string) (Cache, error)

	// Caches returns the names of the caches created so far, sorted.
	Caches() []string

	// Clear empties every managed cache and releases the handles.
	// Calling it again is harmless.
	Clear(ctx context.Context) error

	// Close releases engine resources owned by the adapter.
	Close(ctx context.Context) error
}
