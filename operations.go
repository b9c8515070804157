/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/registry"
)

// Callback runs arbitrary code against the raw backing adapter.
type Callback func(ctx context.Context, adapter datastore.Adapter) (any, error)

// Operations is the typed CRUD and query surface over a cache engine.
// Types passed as reflect.Type must be registered; see the generic helpers
// for the statically typed equivalents.
type Operations interface {
	// Create stores v under its identifier, generating one when it is
	// empty, and returns the stored value.
	Create(ctx context.Context, v any) (any, error)
	// CreateWithID stores v under id. An existing id is an AlreadyExists error.
	CreateWithID(ctx context.Context, id string, v any) error

	ReadAll(ctx context.Context, typ reflect.Type) ([]any, error)
	ReadByID(ctx context.Context, id string, typ reflect.Type) (any, bool, error)
	Read(ctx context.Context, q *query.Query, typ reflect.Type) ([]any, error)
	ReadSorted(ctx context.Context, sort query.Sort, typ reflect.Type) ([]any, error)
	// ReadRange reads every record of typ and returns rows of them starting
	// at offset.
	ReadRange(ctx context.Context, offset, rows int, typ reflect.Type) ([]any, error)
	// ReadRangeSorted sorts and pages through the engine's range execution.
	ReadRangeSorted(ctx context.Context, offset, rows int, sort query.Sort, typ reflect.Type) ([]any, error)

	// Update stores v under its identifier, replacing any previous value.
	Update(ctx context.Context, v any) error
	UpdateWithID(ctx context.Context, id string, v any) error

	DeleteAll(ctx context.Context, typ reflect.Type) error
	Delete(ctx context.Context, v any) (any, bool, error)
	DeleteByID(ctx context.Context, id string, typ reflect.Type) (any, bool, error)

	Count(ctx context.Context, typ reflect.Type) (int64, error)
	CountQuery(ctx context.Context, q *query.Query, typ reflect.Type) (int64, error)

	Execute(ctx context.Context, cb Callback) (any, error)
	// Destroy clears every cache managed by the adapter. Calling it again
	// is harmless.
	Destroy(ctx context.Context) error

	Registry() *registry.TypeRegistry
}

// Option configures a Template.
type Option func(*Template)

// WithLogger sets the template logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Template implements Operations on top of a datastore.Adapter.
type Template struct {
	adapter  datastore.Adapter
	registry *registry.TypeRegistry
	logger   *zap.Logger
}

var _ Operations = (*Template)(nil)

// New returns a template over adapter. reg resolves aliases and
// identifiers and must be the registry the adapter was built with.
func New(adapter datastore.Adapter, reg *registry.TypeRegistry, opts ...Option) *Template {
	t := &Template{
		adapter:  adapter,
		registry: reg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry returns the type registry used to map types to caches.
func (t *Template) Registry() *registry.TypeRegistry {
	return t.registry
}

// Adapter returns the backing adapter.
func (t *Template) Adapter() datastore.Adapter {
	return t.adapter
}

// cache resolves the cache holding values of typ.
func (t *Template) cache(ctx context.Context, typ reflect.Type) (datastore.Cache, error) {
	alias, err := t.registry.Alias(typ)
	if err != nil {
		return nil, err
	}
	return t.adapter.Cache(ctx, alias)
}

func (t *Template) Execute(ctx context.Context, cb Callback) (any, error) {
	if cb == nil {
		return nil, errors.NewValidationError("callback", "must not be nil")
	}
	return cb(ctx, t.adapter)
}

func (t *Template) Destroy(ctx context.Context) error {
	caches := t.adapter.Caches()
	if err := t.adapter.Clear(ctx); err != nil {
		if !errors.IsLifecycleError(err) {
			err = errors.NewLifecycleError("destroy", "", err)
		}
		t.logger.Error("Destroy failed", zap.Strings("caches", caches), zap.Error(err))
		return err
	}
	t.logger.Info("Caches destroyed", zap.Strings("caches", caches))
	return nil
}
