/*
Package search is the query engine shared by every memstore cache.

A cache hands out a Query bound to its record Source. The caller configures
the query, finalizes it with End and executes it:

	q := cache.CreateQuery().
	    IncludeValues().
	    AddCriteria(query.Ge("age", 18)).
	    AddOrderBy("name", search.Ascending).
	    End()
	results, err := q.Execute(ctx)
	page, err := results.Range(0, 10)

Sources that can filter natively (DynamoDB filter expressions, for example)
report the criteria as applied; otherwise the query evaluates them in
process. Sorting always happens here, stable with respect to the order the
source yielded.

Attributes are resolved lazily through an AttributeFunc, normally the one
provided by the type registry. Compare defines the ordering used by both
criteria and order-by clauses: nil first, numbers across kinds, strings,
bools and times (including strfmt.DateTime and strfmt.Date).
*/
package search
