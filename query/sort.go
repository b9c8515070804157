/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import "strings"

// Direction is the direction of a sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order sorts by a single property.
type Order struct {
	Property  string
	Direction Direction
}

// Ascending returns an ascending order on property.
func Ascending(property string) Order {
	return Order{Property: property, Direction: Asc}
}

// Descending returns a descending order on property.
func Descending(property string) Order {
	return Order{Property: property, Direction: Desc}
}

func (o Order) String() string {
	return o.Property + " " + o.Direction.String()
}

// Sort is an ordered list of sort clauses; earlier clauses take precedence.
type Sort []Order

// By returns an ascending sort over the given properties.
func By(properties ...string) Sort {
	s := make(Sort, len(properties))
	for i, p := range properties {
		s[i] = Ascending(p)
	}
	return s
}

// SortBy builds a sort from explicit orders.
func SortBy(orders ...Order) Sort {
	return append(Sort(nil), orders...)
}

// And returns a new sort with the clauses of other appended.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// Reverse returns the sort with every direction flipped.
func (s Sort) Reverse() Sort {
	out := make(Sort, len(s))
	for i, o := range s {
		if o.Direction == Asc {
			o.Direction = Desc
		} else {
			o.Direction = Asc
		}
		out[i] = o
	}
	return out
}

func (s Sort) String() string {
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}
