/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"fmt"

	"github.com/suparena/memstore/errors"
)

// Query is an engine-independent query: optional criteria, optional sort,
// an offset and a row limit. A zero row limit means "all rows from offset".
//
// The builder methods return an updated copy and never modify the receiver.
type Query struct {
	criteria Criteria
	sort     Sort
	offset   int
	rows     int
}

// New returns a query filtering by criteria. A nil criteria matches everything.
func New(criteria Criteria) *Query {
	return &Query{criteria: criteria}
}

// All returns a query with no criteria, no sort and an unrestricted range.
func All() *Query {
	return &Query{}
}

func (q *Query) clone() *Query {
	if q == nil {
		return &Query{}
	}
	c := *q
	c.sort = append(Sort(nil), q.sort...)
	return &c
}

// Skip returns a copy of the query starting at offset.
func (q *Query) Skip(offset int) *Query {
	c := q.clone()
	c.offset = offset
	return c
}

// Limit returns a copy of the query returning at most rows records.
func (q *Query) Limit(rows int) *Query {
	c := q.clone()
	c.rows = rows
	return c
}

// OrderBy returns a copy of the query with sort appended to its current sort.
func (q *Query) OrderBy(sort Sort) *Query {
	c := q.clone()
	c.sort = c.sort.And(sort)
	return c
}

// Where returns a copy of the query with its criteria replaced.
func (q *Query) Where(criteria Criteria) *Query {
	c := q.clone()
	c.criteria = criteria
	return c
}

// Criteria returns the query's criteria, or nil.
func (q *Query) Criteria() Criteria {
	if q == nil {
		return nil
	}
	return q.criteria
}

// Sort returns the query's sort clauses, or nil.
func (q *Query) Sort() Sort {
	if q == nil {
		return nil
	}
	return q.sort
}

// Offset returns the number of leading rows to skip.
func (q *Query) Offset() int {
	if q == nil {
		return 0
	}
	return q.offset
}

// Rows returns the row limit; zero means no limit.
func (q *Query) Rows() int {
	if q == nil {
		return 0
	}
	return q.rows
}

// Validate reports a negative offset or row limit.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	if q.offset < 0 {
		return errors.NewValidationError("offset", fmt.Sprintf("must not be negative, got %d", q.offset))
	}
	if q.rows < 0 {
		return errors.NewValidationError("rows", fmt.Sprintf("must not be negative, got %d", q.rows))
	}
	return nil
}

func (q *Query) String() string {
	if q == nil {
		return "<all>"
	}
	s := "WHERE "
	if q.criteria != nil {
		s += q.criteria.String()
	} else {
		s += "<all>"
	}
	if len(q.sort) > 0 {
		s += " ORDER BY " + q.sort.String()
	}
	return fmt.Sprintf("%s OFFSET %d ROWS %d", s, q.offset, q.rows)
}
