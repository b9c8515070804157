/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"fmt"
	"reflect"

	"github.com/suparena/memstore/errors"
)

// convert checks that a stored value can be returned as typ. No coercion
// is attempted.
func convert(v any, typ reflect.Type) (any, error) {
	if v == nil {
		return nil, errors.NewTypeMismatchError(typ.String(), "<nil>")
	}
	if actual := reflect.TypeOf(v); !actual.AssignableTo(typ) {
		return nil, errors.NewTypeMismatchError(typ.String(), actual.String())
	}
	return v, nil
}

// cast projects v onto T.
func cast[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.NewTypeMismatchError(reflect.TypeFor[T]().String(), fmt.Sprintf("%T", v))
	}
	return t, nil
}

func castAll[T any](values []any) ([]T, error) {
	out := make([]T, len(values))
	for i, v := range values {
		t, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
