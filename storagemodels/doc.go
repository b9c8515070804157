/*
Package storagemodels defines the data structures shared by memstore engines.

Envelope:
The serialized form of a value in byte-oriented engines such as Redis:

	env := storagemodels.Envelope{Type: "Person", Payload: payload}

QueryParams:
Parameters for a DynamoDB Query over one cache partition:

	params := &QueryParams{
	    TableName:              "memstore",
	    KeyConditionExpression: "#pk = :pk",
	    FilterExpression:       expr.Filter(),
	}

ScanOptions:
Paging and retry behavior when an engine reads a whole cache:

	opts := []ScanOption{
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
