/*
Package ddb is a single-table DynamoDB engine for memstore.

Every cache is one partition of the table. Item keys come from macro
templates; without a registered index map an alias uses:

	PK: "ALIAS#{Alias}"
	SK: "ID#{ID}"

Index maps registered on the type registry replace the defaults. PK may
only reference {Alias} and SK must reference {ID}; further templates (for
example GSI keys) are expanded from the value's attributes on write.

Each item carries:
  - EntityType: the registry type name used for polymorphic decoding
  - ID: the record key
  - Value: the entity, marshaled with json tag names
  - Attrs: the queryable attributes resolved by the registry

Queries read the partition in sort key order with paging and retries:

	adapter := ddb.New(client, "memstore", reg,
	    ddb.WithScanOptions(
	        storagemodels.WithPageSize(25),
	        storagemodels.WithMaxRetries(3),
	    ),
	)

Criteria with an exact DynamoDB equivalent are sent as a FilterExpression
over Attrs; the rest are evaluated in process. RemoveAll deletes with
BatchWriteItem in batches of 25.
*/
package ddb
