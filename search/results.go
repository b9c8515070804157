/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package search

import (
	"fmt"

	"github.com/suparena/memstore/errors"
)

// Result is one matching record.
type Result struct {
	key           string
	value         any
	includeKey    bool
	includeValue  bool
	attributeFunc AttributeFunc
	attributes    map[string]any
}

// Key returns the record key, or "" when keys were not requested.
func (r *Result) Key() string {
	if !r.includeKey {
		return ""
	}
	return r.key
}

// Value returns the stored value, or nil when values were not requested.
func (r *Result) Value() any {
	if !r.includeValue {
		return nil
	}
	return r.value
}

// Attribute returns the named attribute of the stored value. Attributes are
// extracted on first use and cached on the result.
func (r *Result) Attribute(name string) (any, error) {
	if v, ok := r.attributes[name]; ok {
		return v, nil
	}
	if r.attributeFunc == nil {
		return nil, errors.NewTranslationError(name, "no attribute extractor configured")
	}
	v, found, err := r.attributeFunc(r.value, name)
	if err != nil {
		return nil, errors.WrapTranslationError(name, err)
	}
	if !found {
		return nil, errors.NewTranslationError(name, fmt.Sprintf("attribute not present on %T", r.value))
	}
	if r.attributes == nil {
		r.attributes = make(map[string]any)
	}
	r.attributes[name] = v
	return v, nil
}

// Results holds the outcome of an executed query.
type Results struct {
	results   []*Result
	hasKeys   bool
	hasValues bool
}

// All returns every result.
func (rs *Results) All() []*Result {
	return append([]*Result(nil), rs.results...)
}

// Size returns the number of results.
func (rs *Results) Size() int {
	return len(rs.results)
}

// Range returns count results starting at start. A start at or beyond the
// end, or a zero count, yields an empty slice.
func (rs *Results) Range(start, count int) ([]*Result, error) {
	if start < 0 {
		return nil, errors.NewValidationError("start", fmt.Sprintf("must not be negative, got %d", start))
	}
	if count < 0 {
		return nil, errors.NewValidationError("count", fmt.Sprintf("must not be negative, got %d", count))
	}
	if start >= len(rs.results) || count == 0 {
		return []*Result{}, nil
	}
	end := len(rs.results)
	if count < end-start {
		end = start + count
	}
	return append([]*Result(nil), rs.results[start:end]...), nil
}

// HasKeys reports whether the query requested keys.
func (rs *Results) HasKeys() bool { return rs.hasKeys }

// HasValues reports whether the query requested values.
func (rs *Results) HasValues() bool { return rs.hasValues }
