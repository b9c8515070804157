/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"context"
	"reflect"

	"github.com/suparena/memstore/query"
)

// Create stores v, generating an identifier when it has none, and returns
// the stored value.
func Create[T any](ctx context.Context, ops Operations, v T) (T, error) {
	created, err := ops.Create(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](created)
}

// ReadAll returns every value stored in the cache of T.
func ReadAll[T any](ctx context.Context, ops Operations) ([]T, error) {
	values, err := ops.ReadAll(ctx, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](values)
}

// ReadByID returns the value stored under id.
func ReadByID[T any](ctx context.Context, ops Operations, id string) (T, bool, error) {
	var zero T
	v, found, err := ops.ReadByID(ctx, id, reflect.TypeFor[T]())
	if err != nil || !found {
		return zero, false, err
	}
	t, err := cast[T](v)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// Read returns the values matching q.
func Read[T any](ctx context.Context, ops Operations, q *query.Query) ([]T, error) {
	values, err := ops.Read(ctx, q, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](values)
}

// ReadSorted returns every value of T ordered by sort.
func ReadSorted[T any](ctx context.Context, ops Operations, sort query.Sort) ([]T, error) {
	values, err := ops.ReadSorted(ctx, sort, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](values)
}

// ReadRange returns rows values of T starting at offset, in natural order.
func ReadRange[T any](ctx context.Context, ops Operations, offset, rows int) ([]T, error) {
	values, err := ops.ReadRange(ctx, offset, rows, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](values)
}

// ReadRangeSorted returns rows values of T starting at offset, ordered by sort.
func ReadRangeSorted[T any](ctx context.Context, ops Operations, offset, rows int, sort query.Sort) ([]T, error) {
	values, err := ops.ReadRangeSorted(ctx, offset, rows, sort, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](values)
}

// DeleteAll removes every value from the cache of T.
func DeleteAll[T any](ctx context.Context, ops Operations) error {
	return ops.DeleteAll(ctx, reflect.TypeFor[T]())
}

// DeleteByID removes and returns the value stored under id.
func DeleteByID[T any](ctx context.Context, ops Operations, id string) (T, bool, error) {
	var zero T
	v, found, err := ops.DeleteByID(ctx, id, reflect.TypeFor[T]())
	if err != nil || !found {
		return zero, false, err
	}
	t, err := cast[T](v)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// Count returns the number of values in the cache of T.
func Count[T any](ctx context.Context, ops Operations) (int64, error) {
	return ops.Count(ctx, reflect.TypeFor[T]())
}

// CountQuery returns the number of values of T matching q.
func CountQuery[T any](ctx context.Context, ops Operations, q *query.Query) (int64, error) {
	return ops.CountQuery(ctx, q, reflect.TypeFor[T]())
}
