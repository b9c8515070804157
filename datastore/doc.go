/*
Package datastore defines the storage interfaces behind memstore.

An Adapter owns the caches of one backing engine and hands them out by
name, creating each on first use:

	type Adapter interface {
	    Cache(ctx context.Context, name string) (Cache, error)
	    Caches() []string
	    Clear(ctx context.Context) error
	    Close(ctx context.Context) error
	}

A Cache stores key/value records and creates search queries over them.
Handles is the helper engines use to keep their cache handles; it lives on
the adapter, never in package state.

Implementations:
  - memory: in-process engine on concurrent maps
  - redis: one Redis hash per cache with msgpack envelopes
  - ddb: single-table DynamoDB engine
  - mock: error-injecting engine for tests
*/
package datastore
