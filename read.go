/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/search"
)

// execute runs q against the cache of typ.
func (t *Template) execute(ctx context.Context, q *query.Query, typ reflect.Type) (*search.Results, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	cache, err := t.cache(ctx, typ)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := prepareQuery(cache, q).Execute(ctx)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("Query executed",
		zap.String("cache", cache.Name()),
		zap.Stringer("query", q),
		zap.Int("results", results.Size()),
		zap.Duration("took", time.Since(start)),
	)
	return results, nil
}

func (t *Template) doRead(ctx context.Context, q *query.Query, typ reflect.Type) ([]any, error) {
	results, err := t.execute(ctx, q, typ)
	if err != nil {
		return nil, err
	}
	page, err := window(results, q)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(page))
	for i, r := range page {
		v, err := convert(r.Value(), typ)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (t *Template) ReadAll(ctx context.Context, typ reflect.Type) ([]any, error) {
	return t.doRead(ctx, query.All(), typ)
}

func (t *Template) ReadByID(ctx context.Context, id string, typ reflect.Type) (any, bool, error) {
	cache, err := t.cache(ctx, typ)
	if err != nil {
		return nil, false, err
	}
	v, found, err := cache.Get(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	v, err = convert(v, typ)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *Template) Read(ctx context.Context, q *query.Query, typ reflect.Type) ([]any, error) {
	return t.doRead(ctx, q, typ)
}

func (t *Template) ReadSorted(ctx context.Context, sort query.Sort, typ reflect.Type) ([]any, error) {
	return t.doRead(ctx, query.All().OrderBy(sort), typ)
}

func (t *Template) ReadRange(ctx context.Context, offset, rows int, typ reflect.Type) ([]any, error) {
	if offset < 0 {
		return nil, errors.NewValidationError("offset", fmt.Sprintf("must not be negative, got %d", offset))
	}
	if rows < 0 {
		return nil, errors.NewValidationError("rows", fmt.Sprintf("must not be negative, got %d", rows))
	}
	all, err := t.ReadAll(ctx, typ)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []any{}, nil
	}
	return all[offset : offset+min(rows, len(all)-offset)], nil
}

func (t *Template) ReadRangeSorted(ctx context.Context, offset, rows int, sort query.Sort, typ reflect.Type) ([]any, error) {
	return t.doRead(ctx, query.All().OrderBy(sort).Skip(offset).Limit(rows), typ)
}

func (t *Template) Count(ctx context.Context, typ reflect.Type) (int64, error) {
	cache, err := t.cache(ctx, typ)
	if err != nil {
		return 0, err
	}
	n, err := cache.Size(ctx)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func (t *Template) CountQuery(ctx context.Context, q *query.Query, typ reflect.Type) (int64, error) {
	results, err := t.execute(ctx, q, typ)
	if err != nil {
		return 0, err
	}
	return int64(results.Size()), nil
}
