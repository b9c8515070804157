/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/suparena/memstore/errors"
)

// Handles is a per-adapter registry of cache handles.
type Handles[C Cache] struct {
	m *xsync.MapOf[string, C]
}

// NewHandles returns an empty handle registry.
func NewHandles[C Cache]() *Handles[C] {
	return &Handles[C]{m: xsync.NewMapOf[string, C]()}
}

// Get returns the handle for name, creating it with create when absent.
// create runs at most once per name even under concurrent callers; a failed
// create leaves no handle behind.
func (h *Handles[C]) Get(name string, create func(name string) (C, error)) (C, error) {
	if c, ok := h.m.Load(name); ok {
		return c, nil
	}

	var createErr error
	c, _ := h.m.Compute(name, func(old C, loaded bool) (C, bool) {
		if loaded {
			return old, false
		}
		fresh, err := create(name)
		if err != nil {
			createErr = err
			return fresh, true
		}
		return fresh, false
	})
	if createErr != nil {
		var zero C
		return zero, createErr
	}
	return c, nil
}

// Names returns the names of every handle, sorted.
func (h *Handles[C]) Names() []string {
	names := make([]string, 0, h.m.Size())
	h.m.Range(func(name string, _ C) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Len returns the number of handles.
func (h *Handles[C]) Len() int {
	return h.m.Size()
}

// ClearAll empties every cache and drops each handle once its cache is
// cleared. Handles created while clearing are picked up by a further
// pass. Failures are collected as lifecycle errors and their handles are
// kept so the clear can be retried.
func (h *Handles[C]) ClearAll(ctx context.Context) error {
	var errs []error
	failed := make(map[string]struct{})
	for {
		cleared := 0
		for _, name := range h.Names() {
			if _, skip := failed[name]; skip {
				continue
			}
			c, ok := h.m.Load(name)
			if !ok {
				continue
			}
			if err := c.RemoveAll(ctx); err != nil {
				failed[name] = struct{}{}
				errs = append(errs, errors.NewLifecycleError("clear", name, err))
				continue
			}
			h.m.Compute(name, func(old C, loaded bool) (C, bool) {
				return old, true
			})
			cleared++
		}
		if cleared == 0 {
			break
		}
	}
	return stderrors.Join(errs...)
}
