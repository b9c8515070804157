/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"

	"github.com/suparena/memstore/errors"
)

type shape interface{ Area() float64 }

type square struct {
	ID   string  `json:"id"`
	Side float64 `json:"side"`
}

func (s square) Area() float64 { return s.Side * s.Side }

type circle struct {
	ID     string
	Radius float64 `json:"r"`
}

func (c circle) Area() float64 { return 3 * c.Radius * c.Radius }

type audit struct {
	CreatedBy string `json:"createdBy"`
}

type document struct {
	*audit
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Secret string `json:"-"`
	hidden string
}

func newShapeRegistry(t *testing.T) *TypeRegistry {
	t.Helper()
	reg := NewTypeRegistry()
	MustRegister(reg, Descriptor[square]{
		Alias: "shapes",
		ID:    func(s square) string { return s.ID },
		SetID: func(s *square, id string) { s.ID = id },
	})
	MustRegister(reg, Descriptor[circle]{
		Alias: "shapes",
		ID:    func(c circle) string { return c.ID },
		SetID: func(c *circle, id string) { c.ID = id },
		Attributes: func(c circle) map[string]any {
			return map[string]any{"radius": c.Radius, "area": c.Area()}
		},
	})
	MustRegister(reg, Descriptor[shape]{Alias: "shapes"})
	return reg
}

func TestRegisterDefaultsAndLookups(t *testing.T) {
	reg := newShapeRegistry(t)

	for _, typ := range []reflect.Type{
		reflect.TypeFor[square](),
		reflect.TypeFor[*square](),
		reflect.TypeFor[circle](),
		reflect.TypeFor[shape](),
	} {
		alias, err := reg.Alias(typ)
		if err != nil {
			t.Fatalf("Alias(%s) failed: %v", typ, err)
		}
		if alias != "shapes" {
			t.Errorf("Alias(%s): expected shapes, got %s", typ, alias)
		}
	}

	name, err := reg.TypeName(circle{})
	if err != nil || name != "circle" {
		t.Errorf("TypeName: expected circle, got %q (%v)", name, err)
	}

	if got := reg.Aliases(); !reflect.DeepEqual(got, []string{"shapes"}) {
		t.Errorf("Aliases: expected [shapes], got %v", got)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := newShapeRegistry(t)

	err := Register(reg, Descriptor[square]{})
	if !errors.IsAlreadyExists(err) {
		t.Errorf("expected AlreadyExists for duplicate type, got %v", err)
	}

	type other struct{}
	err = Register(reg, Descriptor[other]{Name: "square"})
	if !errors.IsAlreadyExists(err) {
		t.Errorf("expected AlreadyExists for duplicate name, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on duplicate")
		}
	}()
	MustRegister(reg, Descriptor[circle]{})
}

func TestUnregisteredType(t *testing.T) {
	reg := NewTypeRegistry()

	if _, err := reg.Alias(reflect.TypeFor[square]()); !errors.IsNotRegistered(err) {
		t.Errorf("Alias: expected ErrNotRegistered, got %v", err)
	}
	if _, err := reg.ID(square{}); !errors.IsNotRegistered(err) {
		t.Errorf("ID: expected ErrNotRegistered, got %v", err)
	}
	if _, err := reg.Alias(nil); !errors.IsNotRegistered(err) {
		t.Errorf("Alias(nil): expected ErrNotRegistered, got %v", err)
	}
	if reg.Registered(reflect.TypeFor[square]()) {
		t.Error("Registered should be false")
	}
}

func TestIDAccessors(t *testing.T) {
	reg := newShapeRegistry(t)

	id, err := reg.ID(square{ID: "sq-1"})
	if err != nil || id != "sq-1" {
		t.Fatalf("ID: expected sq-1, got %q (%v)", id, err)
	}
	id, err = reg.ID(&square{ID: "sq-2"})
	if err != nil || id != "sq-2" {
		t.Fatalf("ID via pointer: expected sq-2, got %q (%v)", id, err)
	}

	original := circle{Radius: 2}
	updated, err := reg.WithID(original, "c-1")
	if err != nil {
		t.Fatalf("WithID failed: %v", err)
	}
	if updated.(circle).ID != "c-1" {
		t.Errorf("WithID: expected c-1, got %q", updated.(circle).ID)
	}
	if original.ID != "" {
		t.Error("WithID must not modify its argument")
	}

	type noID struct{ Name string }
	MustRegister(reg, Descriptor[noID]{})
	if _, err := reg.ID(noID{}); !errors.IsValidationError(err) {
		t.Errorf("expected validation error without ID accessor, got %v", err)
	}
	if _, err := reg.WithID(noID{}, "x"); !errors.IsValidationError(err) {
		t.Errorf("expected validation error without SetID accessor, got %v", err)
	}
}

func TestAttributes(t *testing.T) {
	reg := newShapeRegistry(t)

	t.Run("descriptor attributes", func(t *testing.T) {
		v, found, err := reg.Attribute(circle{Radius: 2}, "area")
		if err != nil || !found || v != 12.0 {
			t.Errorf("expected area 12, got %v found=%v err=%v", v, found, err)
		}
		if _, found, _ := reg.Attribute(circle{}, "Radius"); found {
			t.Error("descriptor attributes replace reflection")
		}
	})

	t.Run("json and go names", func(t *testing.T) {
		sq := square{ID: "a", Side: 3}
		for _, name := range []string{"side", "Side"} {
			v, found, err := reg.Attribute(sq, name)
			if err != nil || !found || v != 3.0 {
				t.Errorf("%s: expected 3, got %v found=%v err=%v", name, v, found, err)
			}
		}
		if _, found, _ := reg.Attribute(sq, "missing"); found {
			t.Error("missing attribute should not be found")
		}
	})

	t.Run("promoted and skipped fields", func(t *testing.T) {
		doc := document{ID: "d1", Title: "x", Secret: "s", hidden: "h"}
		attrs, err := reg.Attributes(doc)
		if err != nil {
			t.Fatalf("Attributes failed: %v", err)
		}
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		expected := []string{"CreatedBy", "ID", "Secret", "Title", "createdBy", "id", "title"}
		if !reflect.DeepEqual(keys, expected) {
			t.Errorf("expected keys %v, got %v", expected, keys)
		}
		if attrs["createdBy"] != nil {
			t.Errorf("nil embedded pointer should yield nil, got %v", attrs["createdBy"])
		}

		doc.audit = &audit{CreatedBy: "ada"}
		v, found, _ := reg.Attribute(&doc, "createdBy")
		if !found || v != "ada" {
			t.Errorf("expected promoted field ada, got %v", v)
		}
	})

	t.Run("maps", func(t *testing.T) {
		v, found, err := reg.Attribute(map[string]any{"k": 1}, "k")
		if err != nil || !found || v != 1 {
			t.Errorf("expected 1, got %v found=%v err=%v", v, found, err)
		}
	})

	t.Run("nil value", func(t *testing.T) {
		if _, found, _ := reg.Attribute(nil, "id"); found {
			t.Error("nil value has no attributes")
		}
	})
}

func TestHasAttribute(t *testing.T) {
	reg := newShapeRegistry(t)
	MustRegister(reg, Descriptor[document]{Alias: "docs"})

	tests := []struct {
		alias string
		name  string
		want  bool
	}{
		{"docs", "title", true},
		{"docs", "Secret", true},
		{"docs", "createdBy", true},
		{"docs", "hidden", false},
		{"docs", "missing", false},
		{"shapes", "area", false},
		{"shapes", "id", false},
		{"nowhere", "id", false},
	}
	for _, tt := range tests {
		if got := reg.HasAttribute(tt.alias, tt.name); got != tt.want {
			t.Errorf("HasAttribute(%q, %q) = %v, want %v", tt.alias, tt.name, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	reg := newShapeRegistry(t)
	payload, _ := json.Marshal(square{ID: "s1", Side: 4})

	v, err := reg.Decode("square", func(target any) error {
		return json.Unmarshal(payload, target)
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if sq, ok := v.(square); !ok || sq.Side != 4 {
		t.Errorf("expected square with side 4, got %#v", v)
	}

	if _, err := reg.Decode("shape", func(any) error { return nil }); !errors.IsNotRegistered(err) {
		t.Errorf("interface registrations are not decodable, got %v", err)
	}
}

func TestIndexMap(t *testing.T) {
	reg := NewTypeRegistry()
	idx := map[string]string{"PK": "SHAPES", "SK": "SHAPE#{ID}"}
	reg.RegisterIndexMap("shapes", idx)
	idx["PK"] = "changed"

	got, ok := reg.IndexMap("shapes")
	if !ok || got["PK"] != "SHAPES" {
		t.Errorf("expected stored copy with PK SHAPES, got %v", got)
	}
	if _, ok := reg.IndexMap("missing"); ok {
		t.Error("unexpected index map for unknown alias")
	}
}
