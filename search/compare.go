/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package search

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/memstore/errors"
)

// normalize reduces v to one of nil, int64, uint64, float64, string, bool
// or time.Time. ok is false for values outside that set.
func normalize(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case time.Time:
		return t, true
	case strfmt.DateTime:
		return time.Time(t), true
	case strfmt.Date:
		return time.Time(t), true
	case *time.Time:
		if t == nil {
			return nil, true
		}
		return *t, true
	case *strfmt.DateTime:
		if t == nil {
			return nil, true
		}
		return time.Time(*t), true
	case *strfmt.Date:
		if t == nil {
			return nil, true
		}
		return time.Time(*t), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return rv.Convert(timeType).Interface(), true
		}
	}
	return v, false
}

var timeType = reflect.TypeOf(time.Time{})

// Compare orders a and b. nil sorts before every other value. Numbers
// compare across kinds; strings, bools and times compare within their kind.
// Any other pairing is a translation error.
func Compare(a, b any) (int, error) {
	na, okA := normalize(a)
	nb, okB := normalize(b)
	if !okA || !okB {
		return 0, incomparable(a, b)
	}

	switch {
	case na == nil && nb == nil:
		return 0, nil
	case na == nil:
		return -1, nil
	case nb == nil:
		return 1, nil
	}

	switch x := na.(type) {
	case int64:
		switch y := nb.(type) {
		case int64:
			return cmp3(x < y, x > y), nil
		case uint64:
			if x < 0 {
				return -1, nil
			}
			return cmp3(uint64(x) < y, uint64(x) > y), nil
		case float64:
			return cmp3(float64(x) < y, float64(x) > y), nil
		}
	case uint64:
		switch y := nb.(type) {
		case uint64:
			return cmp3(x < y, x > y), nil
		case int64:
			if y < 0 {
				return 1, nil
			}
			return cmp3(x < uint64(y), x > uint64(y)), nil
		case float64:
			return cmp3(float64(x) < y, float64(x) > y), nil
		}
	case float64:
		switch y := nb.(type) {
		case float64:
			return cmp3(x < y, x > y), nil
		case int64:
			return cmp3(x < float64(y), x > float64(y)), nil
		case uint64:
			return cmp3(x < float64(y), x > float64(y)), nil
		}
	case string:
		if y, ok := nb.(string); ok {
			return cmp3(x < y, x > y), nil
		}
	case bool:
		if y, ok := nb.(bool); ok {
			return cmp3(!x && y, x && !y), nil
		}
	case time.Time:
		if y, ok := nb.(time.Time); ok {
			return x.Compare(y), nil
		}
	}
	return 0, incomparable(a, b)
}

// Equal reports whether a and b are equal, comparing normalized values when
// they are comparable and falling back to deep equality otherwise.
func Equal(a, b any) bool {
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

func incomparable(a, b any) error {
	return errors.NewTranslationError("", fmt.Sprintf("cannot compare %T with %T", a, b))
}
