/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore

import (
	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/search"
)

// prepareQuery translates q into a native query on cache. Criteria are
// attached as given and every sort clause becomes an order-by on the
// attribute of the same name. Offset and rows are applied to the results.
func prepareQuery(cache datastore.Cache, q *query.Query) *search.Query {
	sq := cache.CreateQuery().IncludeValues()
	if c := q.Criteria(); c != nil {
		sq.AddCriteria(c)
	}
	for _, o := range q.Sort() {
		sq.AddOrderBy(o.Property, direction(o.Direction))
	}
	return sq.End()
}

func direction(d query.Direction) search.Direction {
	if d == query.Desc {
		return search.Descending
	}
	return search.Ascending
}

// window picks the rows of results selected by q's offset and row limit.
func window(results *search.Results, q *query.Query) ([]*search.Result, error) {
	offset, rows := q.Offset(), q.Rows()
	switch {
	case rows > 0:
		return results.Range(offset, rows)
	case offset > 0:
		return results.Range(offset, results.Size())
	default:
		return results.All(), nil
	}
}
