/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB operations the
// engine uses. Filter expressions are not parsed; tests emulate them with
// filter.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]map[string]types.AttributeValue // PK -> SK -> item

	filter      func(item map[string]types.AttributeValue) bool
	queryErrs   []error
	unprocessed int

	queries    []*sdk.QueryInput
	batchCalls int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) lookup(key map[string]types.AttributeValue) (map[string]types.AttributeValue, bool) {
	part, ok := f.items[str(key[AttrPK])]
	if !ok {
		return nil, false
	}
	item, ok := part[str(key[AttrSK])]
	return item, ok
}

func (f *fakeDynamo) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, _ := f.lookup(in.Key)
	return &sdk.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.lookup(in.Item); exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	pk, sk := str(in.Item[AttrPK]), str(in.Item[AttrSK])
	if f.items[pk] == nil {
		f.items[pk] = make(map[string]map[string]types.AttributeValue)
	}
	f.items[pk][sk] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.lookup(in.Key)
	if !ok {
		return &sdk.DeleteItemOutput{}, nil
	}
	delete(f.items[str(in.Key[AttrPK])], str(in.Key[AttrSK]))
	if in.ReturnValues == types.ReturnValueAllOld {
		return &sdk.DeleteItemOutput{Attributes: old}, nil
	}
	return &sdk.DeleteItemOutput{}, nil
}

var keyConditionPattern = regexp.MustCompile(`(#\w+) = (:\w+)`)

func (f *fakeDynamo) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)

	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}

	var pk string
	if m := keyConditionPattern.FindStringSubmatch(aws.ToString(in.KeyConditionExpression)); m != nil && in.ExpressionAttributeNames[m[1]] == AttrPK {
		pk = str(in.ExpressionAttributeValues[m[2]])
	}
	part := f.items[pk]
	sks := make([]string, 0, len(part))
	for sk := range part {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey[AttrSK])
		start = sort.SearchStrings(sks, after)
		if start < len(sks) && sks[start] == after {
			start++
		}
	}
	end := len(sks)
	if in.Limit != nil && start+int(*in.Limit) < end {
		end = start + int(*in.Limit)
	}

	out := &sdk.QueryOutput{}
	for _, sk := range sks[start:end] {
		item := part[sk]
		if in.FilterExpression != nil && f.filter != nil && !f.filter(item) {
			continue
		}
		out.Count++
		if in.Select != types.SelectCount {
			out.Items = append(out.Items, item)
		}
	}
	if end < len(sks) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: pk},
			AttrSK: &types.AttributeValueMemberS{Value: sks[end-1]},
		}
	}
	return out, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++

	out := &sdk.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, requests := range in.RequestItems {
		for i, req := range requests {
			if f.unprocessed > 0 && i == len(requests)-1 {
				f.unprocessed--
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
				continue
			}
			if req.DeleteRequest != nil {
				delete(f.items[str(req.DeleteRequest.Key[AttrPK])], str(req.DeleteRequest.Key[AttrSK]))
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) lastQuery() *sdk.QueryInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeDynamo) partitionSize(pk string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[pk])
}
