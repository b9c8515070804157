/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package search

import (
	"context"
	"fmt"
	"slices"

	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
)

// Direction is the direction of an order-by clause on a search query.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Record is a single key/value pair yielded by a Source.
type Record struct {
	Key   string
	Value any
}

// Source yields the records of one cache. When the source already applied
// criteria itself, it reports filtered so the query does not evaluate them
// again. A source may ignore criteria entirely and return every record.
type Source interface {
	Records(ctx context.Context, criteria query.Criteria) (records []Record, filtered bool, err error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, criteria query.Criteria) ([]Record, bool, error)

func (f SourceFunc) Records(ctx context.Context, criteria query.Criteria) ([]Record, bool, error) {
	return f(ctx, criteria)
}

// AttributeFunc resolves a named attribute of a stored value. found is false
// when the value has no such attribute.
type AttributeFunc func(value any, name string) (v any, found bool, err error)

type orderBy struct {
	attribute string
	direction Direction
}

// Query is a search over one cache. Configure it, call End, then Execute.
type Query struct {
	source        Source
	attributes    AttributeFunc
	includeKeys   bool
	includeValues bool
	criteria      []query.Criteria
	orders        []orderBy
	ended         bool
	match         predicate
	err           error
}

// NewQuery returns a query reading from source and resolving attributes
// with attributes.
func NewQuery(source Source, attributes AttributeFunc) *Query {
	return &Query{source: source, attributes: attributes}
}

func (q *Query) mutable(op string) bool {
	if q.ended {
		if q.err == nil {
			q.err = errors.NewTranslationError("", fmt.Sprintf("%s called after End", op))
		}
		return false
	}
	return true
}

// IncludeKeys requests that results carry their keys.
func (q *Query) IncludeKeys() *Query {
	if q.mutable("IncludeKeys") {
		q.includeKeys = true
	}
	return q
}

// IncludeValues requests that results carry their values.
func (q *Query) IncludeValues() *Query {
	if q.mutable("IncludeValues") {
		q.includeValues = true
	}
	return q
}

// AddCriteria attaches criteria. Repeated calls are conjoined.
func (q *Query) AddCriteria(c query.Criteria) *Query {
	if q.mutable("AddCriteria") && c != nil {
		q.criteria = append(q.criteria, c)
	}
	return q
}

// AddOrderBy appends an order-by clause. Earlier clauses take precedence.
func (q *Query) AddOrderBy(attribute string, direction Direction) *Query {
	if !q.mutable("AddOrderBy") {
		return q
	}
	if attribute == "" {
		q.err = errors.NewTranslationError("", "order-by attribute must not be empty")
		return q
	}
	q.orders = append(q.orders, orderBy{attribute: attribute, direction: direction})
	return q
}

// End finalizes the query. Errors found while compiling the criteria are
// kept and returned by Execute.
func (q *Query) End() *Query {
	if q.ended {
		return q
	}
	q.ended = true
	if q.err != nil {
		return q
	}
	match, err := compile(q.Criteria())
	if err != nil {
		q.err = err
		return q
	}
	q.match = match
	return q
}

// Err returns the first error recorded while building the query.
func (q *Query) Err() error {
	return q.err
}

// Criteria returns the attached criteria as a single tree, or nil.
func (q *Query) Criteria() query.Criteria {
	switch len(q.criteria) {
	case 0:
		return nil
	case 1:
		return q.criteria[0]
	default:
		return query.AllOf(q.criteria...)
	}
}

// Execute runs the query against its source.
func (q *Query) Execute(ctx context.Context) (*Results, error) {
	if q.err != nil {
		return nil, q.err
	}
	if !q.ended {
		return nil, errors.NewTranslationError("", "query executed before End")
	}

	records, filtered, err := q.source.Records(ctx, q.Criteria())
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(records))
	for _, rec := range records {
		r := &Result{
			key:           rec.Key,
			value:         rec.Value,
			includeKey:    q.includeKeys,
			includeValue:  q.includeValues,
			attributeFunc: q.attributes,
		}
		if !filtered {
			ok, err := q.match(r)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		results = append(results, r)
	}

	if len(q.orders) > 0 {
		if err := q.sort(results); err != nil {
			return nil, err
		}
	}

	return &Results{results: results, hasKeys: q.includeKeys, hasValues: q.includeValues}, nil
}

func (q *Query) sort(results []*Result) error {
	var sortErr error
	slices.SortStableFunc(results, func(a, b *Result) int {
		if sortErr != nil {
			return 0
		}
		for _, o := range q.orders {
			av, err := a.Attribute(o.attribute)
			if err != nil {
				sortErr = err
				return 0
			}
			bv, err := b.Attribute(o.attribute)
			if err != nil {
				sortErr = err
				return 0
			}
			c, err := Compare(av, bv)
			if err != nil {
				sortErr = errors.WrapTranslationError(o.attribute, err)
				return 0
			}
			if c != 0 {
				if o.direction == Descending {
					return -c
				}
				return c
			}
		}
		return 0
	})
	return sortErr
}
