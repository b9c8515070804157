/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"fmt"
	"strings"
)

// Criteria is a predicate evaluated by the backing engine to filter records.
// The set of implementations is closed; engines switch over the concrete types.
type Criteria interface {
	criteria()
	String() string
}

// Operator is a binary comparison operator.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Comparison compares a property against a value.
type Comparison struct {
	Property string
	Op       Operator
	Value    any
}

// Range matches properties within [Min, Max], both ends inclusive.
type Range struct {
	Property string
	Min      any
	Max      any
}

// In matches properties equal to any of Values.
type In struct {
	Property string
	Values   []any
}

// Like matches string properties against a case-insensitive pattern where
// '*' matches any run of characters and '?' exactly one.
type Like struct {
	Property string
	Pattern  string
}

// Null matches records whose property is nil, or non-nil when Negate is set.
type Null struct {
	Property string
	Negate   bool
}

// And matches when every clause matches. An empty And matches everything.
type And struct {
	Clauses []Criteria
}

// Or matches when at least one clause matches. An empty Or matches nothing.
type Or struct {
	Clauses []Criteria
}

// Not inverts a clause.
type Not struct {
	Clause Criteria
}

func (Comparison) criteria() {}
func (Range) criteria()      {}
func (In) criteria()         {}
func (Like) criteria()       {}
func (Null) criteria()       {}
func (And) criteria()        {}
func (Or) criteria()         {}
func (Not) criteria()        {}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %v", c.Property, c.Op, c.Value)
}

func (r Range) String() string {
	return fmt.Sprintf("%s BETWEEN %v AND %v", r.Property, r.Min, r.Max)
}

func (i In) String() string {
	vals := make([]string, len(i.Values))
	for n, v := range i.Values {
		vals[n] = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%s IN (%s)", i.Property, strings.Join(vals, ", "))
}

func (l Like) String() string {
	return fmt.Sprintf("%s ILIKE %q", l.Property, l.Pattern)
}

func (n Null) String() string {
	if n.Negate {
		return n.Property + " IS NOT NULL"
	}
	return n.Property + " IS NULL"
}

func (a And) String() string {
	return joinClauses(a.Clauses, " AND ")
}

func (o Or) String() string {
	return joinClauses(o.Clauses, " OR ")
}

func (n Not) String() string {
	if n.Clause == nil {
		return "NOT ()"
	}
	return "NOT (" + n.Clause.String() + ")"
}

func joinClauses(clauses []Criteria, sep string) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, sep)
}

// Eq matches property == value.
func Eq(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpEq, Value: value}
}

// Ne matches property != value.
func Ne(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpNe, Value: value}
}

// Gt matches property > value.
func Gt(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpGt, Value: value}
}

// Ge matches property >= value.
func Ge(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpGe, Value: value}
}

// Lt matches property < value.
func Lt(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpLt, Value: value}
}

// Le matches property <= value.
func Le(property string, value any) Criteria {
	return Comparison{Property: property, Op: OpLe, Value: value}
}

// Between matches min <= property <= max.
func Between(property string, min, max any) Criteria {
	return Range{Property: property, Min: min, Max: max}
}

// AnyValue matches property equal to one of values.
func AnyValue(property string, values ...any) Criteria {
	return In{Property: property, Values: values}
}

// ILike matches property against a case-insensitive wildcard pattern.
func ILike(property, pattern string) Criteria {
	return Like{Property: property, Pattern: pattern}
}

// IsNull matches records where property is nil.
func IsNull(property string) Criteria {
	return Null{Property: property}
}

// NotNull matches records where property is not nil.
func NotNull(property string) Criteria {
	return Null{Property: property, Negate: true}
}

// AllOf conjoins clauses.
func AllOf(clauses ...Criteria) Criteria {
	return And{Clauses: clauses}
}

// AnyOf disjoins clauses.
func AnyOf(clauses ...Criteria) Criteria {
	return Or{Clauses: clauses}
}

// Negate inverts a clause.
func Negate(clause Criteria) Criteria {
	return Not{Clause: clause}
}
