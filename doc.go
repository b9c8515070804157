/*
Package memstore provides typed create, read, update, delete and count
operations over a pluggable, search-capable cache engine.

Values are stored in named caches. A type registry maps every Go type to
the alias of the cache it lives in, so several related types can share a
cache and be read back polymorphically. Reads are expressed as
engine-independent queries (package query) and translated into the
engine's native search API (package search) before execution.

Engines:
  - datastore/memory: in-process concurrent maps
  - datastore/redis: one Redis hash per alias, msgpack encoded
  - datastore/ddb: a single DynamoDB table, one partition per alias
  - datastore/mock: error injection for tests

Basic Usage:

	reg := registry.NewTypeRegistry()
	registry.MustRegister(reg, registry.Descriptor[Person]{
	    Alias: "people",
	    ID:    func(p Person) string { return p.ID },
	    SetID: func(p *Person, id string) { p.ID = id },
	})

	tmpl := memstore.New(memory.New(reg), reg)
	defer tmpl.Destroy(ctx)

	created, err := memstore.Create(ctx, tmpl, Person{Name: "Ada", Age: 36})

	adults, err := memstore.Read[Person](ctx, tmpl,
	    query.New(query.Ge("age", 18)).OrderBy(query.By("name")).Limit(10))

	n, err := memstore.Count[Person](ctx, tmpl)

Pagination:

ReadRange fetches every record of the type and slices the result in
process. ReadRangeSorted and Read with a limit use the engine's range
execution instead.

Errors are reported through package errors: unresolvable criteria or sort
attributes are translation errors, values that are not assignable to the
requested type are type mismatches, and failures while clearing caches on
Destroy are lifecycle errors.
*/
package memstore
