/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/memstore/errors"
)

func (t *Template) Create(ctx context.Context, v any) (any, error) {
	id, err := t.registry.ID(v)
	if err != nil && !errors.IsValidationError(err) {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
		if v, err = t.registry.WithID(v, id); err != nil {
			return nil, err
		}
		t.logger.Debug("Identifier generated", zap.String("id", id), zap.String("type", fmt.Sprintf("%T", v)))
	}
	if err := t.CreateWithID(ctx, id, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (t *Template) CreateWithID(ctx context.Context, id string, v any) error {
	cache, err := t.cache(ctx, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	stored, err := cache.PutIfAbsent(ctx, id, v)
	if err != nil {
		return err
	}
	if !stored {
		return errors.NewAlreadyExistsError(fmt.Sprintf("%T", v), id)
	}
	return nil
}

func (t *Template) Update(ctx context.Context, v any) error {
	id, err := t.registry.ID(v)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.NewValidationError("id", fmt.Sprintf("%T has an empty identifier", v))
	}
	return t.UpdateWithID(ctx, id, v)
}

func (t *Template) UpdateWithID(ctx context.Context, id string, v any) error {
	cache, err := t.cache(ctx, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	return cache.Put(ctx, id, v)
}

func (t *Template) DeleteAll(ctx context.Context, typ reflect.Type) error {
	cache, err := t.cache(ctx, typ)
	if err != nil {
		return err
	}
	return cache.RemoveAll(ctx)
}

func (t *Template) Delete(ctx context.Context, v any) (any, bool, error) {
	id, err := t.registry.ID(v)
	if err != nil {
		return nil, false, err
	}
	return t.DeleteByID(ctx, id, reflect.TypeOf(v))
}

func (t *Template) DeleteByID(ctx context.Context, id string, typ reflect.Type) (any, bool, error) {
	cache, err := t.cache(ctx, typ)
	if err != nil {
		return nil, false, err
	}
	// a value of another type sharing the alias must survive a mismatched delete
	v, found, err := cache.Get(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	if _, err := convert(v, typ); err != nil {
		return nil, false, err
	}
	v, found, err = cache.Remove(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	v, err = convert(v, typ)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
