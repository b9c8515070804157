/*
Package query is the engine-independent query model used by memstore.

A Query carries optional Criteria, an optional Sort, an offset and a row
limit. Builders return copies, so a base query can be shared:

	adults := query.New(query.Ge("age", 18)).OrderBy(query.By("name"))
	page := adults.Skip(20).Limit(10)

Criteria is a closed set of predicate kinds (Comparison, Range, In, Like,
Null, And, Or, Not). Engines either push a criteria tree down to their own
filtering language or evaluate it in process; kinds they cannot resolve
surface as translation errors when the query is built.

A row limit of zero means "every row from offset".
*/
package query
