/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/suparena/memstore/errors"
)

// Descriptor tells the registry how to store values of type T.
type Descriptor[T any] struct {
	// Alias names the cache values of T live in. Defaults to the type name.
	// Several types may share an alias.
	Alias string

	// Name identifies T in serialized envelopes. Defaults to the type name.
	Name string

	// ID returns the identifier of a value. Optional.
	ID func(T) string

	// SetID assigns an identifier. Required for generated identifiers.
	SetID func(*T, string)

	// Attributes exposes queryable attributes. When nil, attributes are
	// read by reflection over exported fields.
	Attributes func(T) map[string]any
}

type entry struct {
	typ        reflect.Type
	alias      string
	name       string
	id         func(any) string
	setID      func(any, string) any
	attributes func(any) map[string]any
}

// TypeRegistry maps Go types to their storage descriptors. It is safe for
// concurrent use and is normally populated once at startup.
type TypeRegistry struct {
	mu        sync.RWMutex
	byType    map[reflect.Type]*entry
	byName    map[string]*entry
	indexMaps map[string]map[string]string

	fields *xsync.MapOf[reflect.Type, map[string][]int]
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byType:    make(map[reflect.Type]*entry),
		byName:    make(map[string]*entry),
		indexMaps: make(map[string]map[string]string),
		fields:    xsync.NewMapOf[reflect.Type, map[string][]int](),
	}
}

// Register adds a descriptor for T. Registering the same type or type name
// twice is an error. Interface types may be registered to read an alias
// shared by several concrete types; they are never used for decoding.
func Register[T any](r *TypeRegistry, d Descriptor[T]) error {
	typ := reflect.TypeFor[T]()

	e := &entry{typ: typ, alias: d.Alias, name: d.Name}
	if e.alias == "" {
		e.alias = typ.Name()
	}
	if e.name == "" {
		e.name = typ.Name()
	}
	if e.alias == "" {
		return errors.NewValidationError("alias", fmt.Sprintf("type %s has no name; an alias is required", typ))
	}
	if d.ID != nil {
		e.id = func(v any) string { return d.ID(v.(T)) }
	}
	if d.SetID != nil {
		e.setID = func(v any, id string) any {
			t := v.(T)
			d.SetID(&t, id)
			return t
		}
	}
	if d.Attributes != nil {
		e.attributes = func(v any) map[string]any { return d.Attributes(v.(T)) }
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byType[typ]; exists {
		return errors.NewAlreadyExistsError("type", typ.String())
	}
	if typ.Kind() != reflect.Interface {
		if _, exists := r.byName[e.name]; exists {
			return errors.NewAlreadyExistsError("type name", e.name)
		}
		r.byName[e.name] = e
	}
	r.byType[typ] = e
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](r *TypeRegistry, d Descriptor[T]) {
	if err := Register(r, d); err != nil {
		panic(fmt.Sprintf("type registry: %v", err))
	}
}

func (r *TypeRegistry) lookup(typ reflect.Type) (*entry, error) {
	if typ == nil {
		return nil, errors.NewNotRegisteredError("<nil>")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byType[typ]; ok {
		return e, nil
	}
	if typ.Kind() == reflect.Pointer {
		if e, ok := r.byType[typ.Elem()]; ok {
			return e, nil
		}
	}
	return nil, errors.NewNotRegisteredError(typ.String())
}

// Registered reports whether typ has a descriptor.
func (r *TypeRegistry) Registered(typ reflect.Type) bool {
	_, err := r.lookup(typ)
	return err == nil
}

// Alias returns the cache alias for typ.
func (r *TypeRegistry) Alias(typ reflect.Type) (string, error) {
	e, err := r.lookup(typ)
	if err != nil {
		return "", err
	}
	return e.alias, nil
}

// TypeName returns the serialized type name for the dynamic type of v.
func (r *TypeRegistry) TypeName(v any) (string, error) {
	e, err := r.lookup(reflect.TypeOf(v))
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// ID returns the identifier of v.
func (r *TypeRegistry) ID(v any) (string, error) {
	e, err := r.lookup(reflect.TypeOf(v))
	if err != nil {
		return "", err
	}
	if e.id == nil {
		return "", errors.NewValidationError("id", fmt.Sprintf("type %s has no ID accessor", e.typ))
	}
	return e.id(deref(v, e.typ)), nil
}

// WithID returns a copy of v carrying id.
func (r *TypeRegistry) WithID(v any, id string) (any, error) {
	e, err := r.lookup(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	if e.setID == nil {
		return nil, errors.NewValidationError("id", fmt.Sprintf("type %s has no SetID accessor", e.typ))
	}
	return e.setID(deref(v, e.typ), id), nil
}

// Decode builds a value of the type registered under name, filling it
// through unmarshal. unmarshal receives a pointer to a zero value.
func (r *TypeRegistry) Decode(name string, unmarshal func(target any) error) (any, error) {
	r.mu.RLock()
	e, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotRegisteredError(name)
	}
	target := reflect.New(e.typ)
	if err := unmarshal(target.Interface()); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return target.Elem().Interface(), nil
}

// Aliases returns every registered alias, sorted.
func (r *TypeRegistry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.byType))
	aliases := make([]string, 0, len(r.byType))
	for _, e := range r.byType {
		if _, dup := seen[e.alias]; dup {
			continue
		}
		seen[e.alias] = struct{}{}
		aliases = append(aliases, e.alias)
	}
	sort.Strings(aliases)
	return aliases
}

// deref turns a *T into T when the descriptor was registered for T.
func deref(v any, typ reflect.Type) any {
	rv := reflect.ValueOf(v)
	if rv.Type() != typ && rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem() == typ {
		return rv.Elem().Interface()
	}
	return v
}
