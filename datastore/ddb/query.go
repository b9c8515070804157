/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/search"
	"github.com/suparena/memstore/storagemodels"
)

// partitionQuery builds a Query over the cache partition with an optional
// filter and projection.
func (c *Cache) partitionQuery(filter *expression.ConditionBuilder, projection *expression.ProjectionBuilder) (*sdk.QueryInput, error) {
	b := expression.NewBuilder().
		WithKeyCondition(expression.Key(AttrPK).Equal(expression.Value(c.pk)))
	if filter != nil {
		b = b.WithFilter(*filter)
	}
	if projection != nil {
		b = b.WithProjection(*projection)
	}
	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	params := &storagemodels.QueryParams{
		TableName:                 c.adapter.tableName,
		KeyConditionExpression:    aws.ToString(expr.KeyCondition()),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(c.adapter.consistentRead),
		ScanIndexForward:          aws.Bool(true),
	}
	input := queryInput(params)
	input.ProjectionExpression = expr.Projection()
	return input, nil
}

// queryInput converts query parameters to an SDK input.
func queryInput(params *storagemodels.QueryParams) *sdk.QueryInput {
	return &sdk.QueryInput{
		TableName:                 &params.TableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		FilterExpression:          params.FilterExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		ConsistentRead:            params.ConsistentRead,
		ScanIndexForward:          params.ScanIndexForward,
	}
}

// records reads the partition in sort key order. Criteria that translate to
// a filter expression are evaluated by DynamoDB and reported as applied;
// anything else is left to the search query.
func (c *Cache) records(ctx context.Context, criteria query.Criteria) ([]search.Record, bool, error) {
	var expr *expression.ConditionBuilder
	pushed := criteria == nil
	if criteria != nil {
		f := filter{known: func(property string) bool {
			return c.adapter.registry.HasAttribute(c.name, property)
		}}
		if cond, ok := f.condition(criteria); ok {
			expr = &cond
			pushed = true
		}
	}

	input, err := c.partitionQuery(expr, nil)
	if err != nil {
		return nil, false, err
	}

	var records []search.Record
	err = c.adapter.queryPages(ctx, input, func(items []map[string]types.AttributeValue) error {
		for _, item := range items {
			id, v, err := c.decode(item)
			if err != nil {
				return err
			}
			records = append(records, search.Record{Key: id, Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	c.adapter.logger.Debug("Partition queried",
		zap.String("cache", c.name),
		zap.Bool("filterPushedDown", expr != nil),
		zap.Int("records", len(records)),
	)
	return records, pushed, nil
}

// filter translates criteria into a DynamoDB filter expression. known
// reports whether a property resolves on every type stored in the
// partition. Criteria on other properties are left to the search query.
type filter struct {
	known func(property string) bool
}

// condition translates criteria into a filter over the stored attributes.
// ok is false when any part of the tree has no exact DynamoDB equivalent:
// LIKE (case-insensitive), inequality, time values, unknown properties
// and empty conjunctions are evaluated in process instead.
func (f filter) condition(c query.Criteria) (cond expression.ConditionBuilder, ok bool) {
	switch c := c.(type) {
	case query.Comparison:
		name, ok := f.attributeName(c.Property)
		if !ok || !scalar(c.Value) || (c.Op != query.OpEq && !ordered(c.Value)) {
			return cond, false
		}
		v := expression.Value(c.Value)
		switch c.Op {
		case query.OpEq:
			return name.Equal(v), true
		case query.OpGt:
			return name.GreaterThan(v), true
		case query.OpGe:
			return name.GreaterThanEqual(v), true
		case query.OpLt:
			return name.LessThan(v), true
		case query.OpLe:
			return name.LessThanEqual(v), true
		}
		return cond, false

	case query.Range:
		name, ok := f.attributeName(c.Property)
		if !ok || !ordered(c.Min) || !ordered(c.Max) {
			return cond, false
		}
		return name.Between(expression.Value(c.Min), expression.Value(c.Max)), true

	case query.In:
		name, ok := f.attributeName(c.Property)
		if !ok || len(c.Values) == 0 || len(c.Values) > 100 {
			return cond, false
		}
		operands := make([]expression.OperandBuilder, 0, len(c.Values)-1)
		for _, v := range c.Values {
			if !scalar(v) {
				return cond, false
			}
		}
		for _, v := range c.Values[1:] {
			operands = append(operands, expression.Value(v))
		}
		return name.In(expression.Value(c.Values[0]), operands...), true

	case query.Null:
		name, ok := f.attributeName(c.Property)
		if !ok {
			return cond, false
		}
		isNull := expression.Or(name.AttributeNotExists(), name.AttributeType(expression.Null))
		if c.Negate {
			return expression.Not(isNull), true
		}
		return isNull, true

	case query.And:
		return f.combine(c.Clauses, expression.And)

	case query.Or:
		return f.combine(c.Clauses, expression.Or)

	case query.Not:
		if c.Clause == nil {
			return cond, false
		}
		inner, ok := f.condition(c.Clause)
		if !ok {
			return cond, false
		}
		return expression.Not(inner), true
	}
	return cond, false
}

func (f filter) combine(
	clauses []query.Criteria,
	join func(left, right expression.ConditionBuilder, other ...expression.ConditionBuilder) expression.ConditionBuilder,
) (expression.ConditionBuilder, bool) {
	var cond expression.ConditionBuilder
	conds := make([]expression.ConditionBuilder, 0, len(clauses))
	for _, clause := range clauses {
		if clause == nil {
			continue
		}
		cb, ok := f.condition(clause)
		if !ok {
			return cond, false
		}
		conds = append(conds, cb)
	}
	switch len(conds) {
	case 0:
		return cond, false
	case 1:
		return conds[0], true
	default:
		return join(conds[0], conds[1], conds[2:]...), true
	}
}

// attributeName addresses a query attribute inside the Attrs map. Names
// that would be read as document paths are rejected.
func (f filter) attributeName(property string) (expression.NameBuilder, bool) {
	if property == "" || strings.ContainsAny(property, ".[]") {
		return expression.NameBuilder{}, false
	}
	if f.known != nil && !f.known(property) {
		return expression.NameBuilder{}, false
	}
	return expression.Name(AttrAttributes + "." + property), true
}

// scalar reports whether v marshals to a DynamoDB string, number or bool
// that compares the way the in-process comparator does.
func scalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ordered reports whether v is a scalar DynamoDB can order, which excludes bools.
func ordered(v any) bool {
	return scalar(v) && reflect.TypeOf(v).Kind() != reflect.Bool
}
