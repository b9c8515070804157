/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/registry"
	"github.com/suparena/memstore/search"
	"github.com/suparena/memstore/storagemodels"
)

// Item attribute names.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrEntityType = "EntityType"
	AttrID         = "ID"
	AttrValue      = "Value"
	AttrAttributes = "Attrs"
)

// DefaultIndexMap is used for aliases without a registered index map.
var DefaultIndexMap = map[string]string{
	AttrPK: "ALIAS#{Alias}",
	AttrSK: "ID#{ID}",
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// API is the subset of the DynamoDB client used by the engine.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
}

var _ API = (*sdk.Client)(nil)

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are
// used when an access key is given, the default chain otherwise. A non-empty
// endpoint targets DynamoDB Local or another compatible service.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithScanOptions configures paging and retries of partition queries.
func WithScanOptions(opts ...storagemodels.ScanOption) Option {
	return func(a *Adapter) { a.scan = append(a.scan, opts...) }
}

// WithConsistentRead requests strongly consistent reads.
func WithConsistentRead(consistent bool) Option {
	return func(a *Adapter) { a.consistentRead = consistent }
}

// Adapter stores every cache in a single DynamoDB table, one partition per
// alias.
type Adapter struct {
	client         API
	tableName      string
	registry       *registry.TypeRegistry
	handles        *datastore.Handles[*Cache]
	logger         *zap.Logger
	scan           []storagemodels.ScanOption
	consistentRead bool
}

var _ datastore.Adapter = (*Adapter)(nil)

// New returns an adapter over tableName. The table must have a string
// partition key PK and a string sort key SK.
func New(client API, tableName string, reg *registry.TypeRegistry, opts ...Option) *Adapter {
	a := &Adapter{
		client:    client,
		tableName: tableName,
		registry:  reg,
		handles:   datastore.NewHandles[*Cache](),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the cache for alias name. The alias index map is validated
// when the handle is first created.
func (a *Adapter) Cache(_ context.Context, name string) (datastore.Cache, error) {
	return a.handles.Get(name, func(name string) (*Cache, error) {
		indexMap, ok := a.registry.IndexMap(name)
		if !ok {
			indexMap = DefaultIndexMap
		}
		pk, skTemplate, err := validateIndexMap(name, indexMap)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Cache created",
			zap.String("cache", name),
			zap.String("table", a.tableName),
			zap.String("PK", pk),
		)
		return &Cache{name: name, adapter: a, indexMap: indexMap, pk: pk, skTemplate: skTemplate}, nil
	})
}

// Caches returns the names of the caches created through this adapter.
func (a *Adapter) Caches() []string {
	return a.handles.Names()
}

// Clear empties every cache partition created through this adapter.
func (a *Adapter) Clear(ctx context.Context) error {
	caches := a.handles.Names()
	if err := a.handles.ClearAll(ctx); err != nil {
		return err
	}
	a.logger.Info("Caches cleared",
		zap.String("table", a.tableName),
		zap.Strings("caches", caches),
	)
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (a *Adapter) Close(context.Context) error {
	return nil
}

// validateIndexMap checks that PK depends on the alias alone and SK on the
// record id, and returns the expanded partition key.
func validateIndexMap(alias string, indexMap map[string]string) (string, string, error) {
	pkTemplate, okPK := indexMap[AttrPK]
	skTemplate, okSK := indexMap[AttrSK]
	if !okPK || !okSK || pkTemplate == "" || skTemplate == "" {
		return "", "", errors.NewValidationError("indexMap", fmt.Sprintf("alias %q: PK and SK templates are required", alias))
	}
	for _, m := range macroPattern.FindAllStringSubmatch(pkTemplate, -1) {
		if m[1] != "Alias" {
			return "", "", errors.NewValidationError("indexMap", fmt.Sprintf("alias %q: PK may only reference {Alias}, found {%s}", alias, m[1]))
		}
	}
	var hasID bool
	for _, m := range macroPattern.FindAllStringSubmatch(skTemplate, -1) {
		switch m[1] {
		case "ID":
			hasID = true
		case "Alias":
		default:
			return "", "", errors.NewValidationError("indexMap", fmt.Sprintf("alias %q: SK may only reference {Alias} and {ID}, found {%s}", alias, m[1]))
		}
	}
	if !hasID {
		return "", "", errors.NewValidationError("indexMap", fmt.Sprintf("alias %q: SK must reference {ID}", alias))
	}
	pk := expandMacros(map[string]string{AttrPK: pkTemplate}, map[string]types.AttributeValue{
		"Alias": &types.AttributeValueMemberS{Value: alias},
	})[AttrPK]
	return pk, skTemplate, nil
}

// expandMacros replaces {Name} macros in every template with the matching
// attribute of av. Unknown macros and non-scalar attributes expand to "".
func expandMacros(indexMap map[string]string, av map[string]types.AttributeValue) map[string]string {
	res := make(map[string]string, len(indexMap))
	for fieldName, template := range indexMap {
		res[fieldName] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			val, ok := av[strings.Trim(macro, "{}")]
			if !ok {
				return ""
			}
			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
	}
	return res
}

// Cache is one alias partition of the table.
type Cache struct {
	name       string
	adapter    *Adapter
	indexMap   map[string]string
	pk         string
	skTemplate string
}

var _ datastore.Cache = (*Cache)(nil)

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) macroValues(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"Alias": &types.AttributeValueMemberS{Value: c.name},
		"ID":    &types.AttributeValueMemberS{Value: id},
	}
}

func (c *Cache) key(id string) map[string]types.AttributeValue {
	sk := expandMacros(map[string]string{AttrSK: c.skTemplate}, c.macroValues(id))[AttrSK]
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: c.pk},
		AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func jsonTags(o *attributevalue.EncoderOptions) { o.TagKey = "json" }

func jsonTagsDecode(o *attributevalue.DecoderOptions) { o.TagKey = "json" }

// item builds the stored form of value: keys, type name, the entity under
// Value, its query attributes under Attrs and any extra index attributes.
func (c *Cache) item(id string, value any) (map[string]types.AttributeValue, error) {
	typeName, err := c.adapter.registry.TypeName(value)
	if err != nil {
		return nil, err
	}
	encoded, err := attributevalue.MarshalWithOptions(value, jsonTags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	attrs, err := c.adapter.registry.Attributes(value)
	if err != nil {
		return nil, err
	}
	attrAV, err := attributevalue.MarshalMapWithOptions(attrs, jsonTags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}

	item := c.key(id)
	item[AttrEntityType] = &types.AttributeValueMemberS{Value: typeName}
	item[AttrID] = &types.AttributeValueMemberS{Value: id}
	item[AttrValue] = encoded
	item[AttrAttributes] = &types.AttributeValueMemberM{Value: attrAV}

	if len(c.indexMap) > 2 {
		macros := c.macroValues(id)
		for k, v := range attrAV {
			if _, reserved := macros[k]; !reserved {
				macros[k] = v
			}
		}
		for k, v := range expandMacros(c.indexMap, macros) {
			if k != AttrPK && k != AttrSK && v != "" {
				item[k] = &types.AttributeValueMemberS{Value: v}
			}
		}
	}
	return item, nil
}

// decode rebuilds the value stored in item through the type registry.
func (c *Cache) decode(item map[string]types.AttributeValue) (string, any, error) {
	var entityType, id string
	if err := attributevalue.Unmarshal(item[AttrEntityType], &entityType); err != nil || entityType == "" {
		return "", nil, fmt.Errorf("missing EntityType attribute in item")
	}
	if err := attributevalue.Unmarshal(item[AttrID], &id); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal ID: %w", err)
	}
	v, err := c.adapter.registry.Decode(entityType, func(target any) error {
		return attributevalue.UnmarshalWithOptions(item[AttrValue], target, jsonTagsDecode)
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal item for EntityType %q: %w", entityType, err)
	}
	return id, v, nil
}

func (c *Cache) Put(ctx context.Context, key string, value any) error {
	item, err := c.item(key, value)
	if err != nil {
		return err
	}
	_, err = c.adapter.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &c.adapter.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// PutIfAbsent writes with an attribute_not_exists(PK) condition.
func (c *Cache) PutIfAbsent(ctx context.Context, key string, value any) (bool, error) {
	item, err := c.item(key, value)
	if err != nil {
		return false, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name(AttrPK).AttributeNotExists()).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}
	_, err = c.adapter.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                 &c.adapter.tableName,
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return false, nil
		}
		return false, fmt.Errorf("PutItem failed: %w", err)
	}
	return true, nil
}

func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	out, err := c.adapter.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &c.adapter.tableName,
		Key:            c.key(key),
		ConsistentRead: aws.Bool(c.adapter.consistentRead),
	})
	if err != nil {
		return nil, false, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}
	_, v, err := c.decode(out.Item)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	out, err := c.adapter.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:            &c.adapter.tableName,
		Key:                  c.key(key),
		ProjectionExpression: aws.String(AttrPK),
		ConsistentRead:       aws.Bool(c.adapter.consistentRead),
	})
	if err != nil {
		return false, fmt.Errorf("GetItem error: %w", err)
	}
	return len(out.Item) > 0, nil
}

// Remove deletes key and returns the old item.
func (c *Cache) Remove(ctx context.Context, key string) (any, bool, error) {
	out, err := c.adapter.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    &c.adapter.tableName,
		Key:          c.key(key),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	if len(out.Attributes) == 0 {
		return nil, false, nil
	}
	_, v, err := c.decode(out.Attributes)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// RemoveAll deletes every item of the partition in batches.
func (c *Cache) RemoveAll(ctx context.Context) error {
	projection := expression.NamesList(expression.Name(AttrPK), expression.Name(AttrSK))
	input, err := c.partitionQuery(nil, &projection)
	if err != nil {
		return err
	}

	var keys []map[string]types.AttributeValue
	err = c.adapter.queryPages(ctx, input, func(items []map[string]types.AttributeValue) error {
		for _, item := range items {
			keys = append(keys, map[string]types.AttributeValue{
				AttrPK: item[AttrPK],
				AttrSK: item[AttrSK],
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := c.adapter.batchDelete(ctx, keys); err != nil {
		return err
	}
	c.adapter.logger.Debug("Cache emptied",
		zap.String("cache", c.name),
		zap.Int("deleted", len(keys)),
	)
	return nil
}

// Size counts the partition with a COUNT query.
func (c *Cache) Size(ctx context.Context) (int, error) {
	input, err := c.partitionQuery(nil, nil)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount

	var total int
	err = c.adapter.queryPagesRaw(ctx, input, func(out *sdk.QueryOutput) error {
		total += int(out.Count)
		return nil
	})
	return total, err
}

func (c *Cache) CreateQuery() *search.Query {
	return search.NewQuery(search.SourceFunc(c.records), c.adapter.registry.Attribute)
}
