/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Envelope is the serialized form of a value in engines that store bytes.
// Type is the registry type name used to decode Payload.
type Envelope struct {
	Type    string `msgpack:"t"`
	Payload []byte `msgpack:"p"`
}

// QueryParams defines parameters for a DynamoDB Query operation.
type QueryParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// KeyConditionExpression is the primary condition for the query.
	KeyConditionExpression string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeNames contains the name placeholders of both expressions.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// ConsistentRead requests strongly consistent reads.
	ConsistentRead *bool
	// ScanIndexForward specifies the order for sort key traversal.
	// If true (default), traversal is in ascending order.
	ScanIndexForward *bool
}
