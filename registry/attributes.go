/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"strings"
)

// Attributes returns the queryable attributes of v, from its descriptor
// when one provides them and by reflection otherwise.
func (r *TypeRegistry) Attributes(v any) (map[string]any, error) {
	if e, err := r.lookup(reflect.TypeOf(v)); err == nil && e.attributes != nil {
		return e.attributes(deref(v, e.typ)), nil
	}

	rv := indirect(reflect.ValueOf(v))
	out := make(map[string]any)
	switch rv.Kind() {
	case reflect.Struct:
		for name, index := range r.fieldIndex(rv.Type()) {
			out[name] = fieldByIndex(rv, index)
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = iter.Value().Interface()
			}
		}
	}
	return out, nil
}

// Attribute resolves a single attribute of v. It matches search.AttributeFunc.
func (r *TypeRegistry) Attribute(v any, name string) (any, bool, error) {
	if e, err := r.lookup(reflect.TypeOf(v)); err == nil && e.attributes != nil {
		val, ok := e.attributes(deref(v, e.typ))[name]
		return val, ok, nil
	}

	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Struct:
		index, ok := r.fieldIndex(rv.Type())[name]
		if !ok {
			return nil, false, nil
		}
		return fieldByIndex(rv, index), true, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, nil
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false, nil
		}
		return mv.Interface(), true, nil
	}
	return nil, false, nil
}

// HasAttribute reports whether every concrete type stored under alias
// exposes the named attribute. Map types and aliases without concrete
// types report false; their attributes are only known per value.
func (r *TypeRegistry) HasAttribute(alias, name string) bool {
	r.mu.RLock()
	var entries []*entry
	for _, e := range r.byName {
		if e.alias == alias {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if !r.exposes(e, name) {
			return false
		}
	}
	return true
}

// exposes checks a descriptor's attribute set against a zero value of its
// type, or the struct fields when attributes come from reflection.
func (r *TypeRegistry) exposes(e *entry, name string) bool {
	if e.attributes != nil {
		sample := reflect.New(e.typ).Elem()
		if e.typ.Kind() == reflect.Pointer {
			sample = reflect.New(e.typ.Elem())
		}
		_, ok := e.attributes(sample.Interface())[name]
		return ok
	}
	typ := e.typ
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return false
	}
	_, ok := r.fieldIndex(typ)[name]
	return ok
}

// fieldIndex maps attribute names of a struct type to field index paths.
// Exported fields are reachable by their json name and by their Go name;
// the json name wins on collision.
func (r *TypeRegistry) fieldIndex(typ reflect.Type) map[string][]int {
	index, _ := r.fields.LoadOrCompute(typ, func() map[string][]int {
		byGoName := make(map[string][]int)
		byTag := make(map[string][]int)
		for _, f := range reflect.VisibleFields(typ) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			byGoName[f.Name] = f.Index
			tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if tag != "" && tag != "-" {
				byTag[tag] = f.Index
			}
		}
		for name, idx := range byTag {
			byGoName[name] = idx
		}
		return byGoName
	})
	return index
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// fieldByIndex reads a possibly promoted field. A nil embedded pointer on
// the path yields a nil value.
func fieldByIndex(rv reflect.Value, index []int) any {
	fv, err := rv.FieldByIndexErr(index)
	if err != nil || !fv.CanInterface() {
		return nil
	}
	return fv.Interface()
}
