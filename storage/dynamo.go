package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	dynamoKeyAttr     = "sm_key"
	dynamoValueAttr   = "sm_val"
	dynamoCountAttr   = "sm_count"
	dynamoExpiresAttr = "sm_expires"
)

// DynamoOptions configures the DynamoDB backend.
type DynamoOptions struct {
	// TableName is the DynamoDB table holding the entries. The table needs
	// a string partition key named "sm_key"; enabling TTL on "sm_expires"
	// lets DynamoDB reap expired items.
	TableName string

	// Region overrides the AWS region from the default config chain.
	Region string

	// Client reuses an existing DynamoDB client instead of building one
	// from the default AWS config.
	Client *dynamodb.Client
}

// Dynamo is a durable Storage implementation backed by a DynamoDB table.
// TTLs are written as an item-expiry attribute; because DynamoDB reaps
// expired items lazily, reads additionally check the attribute so expired
// entries are never returned. Transport failures wrap
// core.ErrStorageUnavailable.
type Dynamo struct {
	client *dynamodb.Client
	table  string
	now    func() time.Time
}

// NewDynamo constructs a DynamoDB backend, building a client from the
// default AWS config chain unless one is supplied.
func NewDynamo(ctx context.Context, optFns ...func(o *DynamoOptions)) (*Dynamo, error) {
	opts := DynamoOptions{
		TableName: "slackmachine",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if opts.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		client = dynamodb.NewFromConfig(cfg)
	}

	return &Dynamo{client: client, table: opts.TableName, now: time.Now}, nil
}

func (s *Dynamo) keyOf(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		dynamoKeyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

// Get returns the value stored under key, honoring the expiry attribute
// even before DynamoDB's own TTL sweep removes the item.
func (s *Dynamo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.keyOf(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, unavailable("dynamodb get", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	if s.itemExpired(out.Item) {
		return nil, false, nil
	}
	attr, ok := out.Item[dynamoValueAttr].(*types.AttributeValueMemberB)
	if !ok {
		return nil, false, fmt.Errorf("dynamodb get %q: unexpected value attribute type", key)
	}
	return attr.Value, true, nil
}

func (s *Dynamo) itemExpired(item map[string]types.AttributeValue) bool {
	attr, ok := item[dynamoExpiresAttr].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	expires, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return false
	}
	return s.now().Unix() > expires
}

// Set stores value under key; a positive TTL is written to the item-expiry
// attribute.
func (s *Dynamo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := map[string]types.AttributeValue{
		dynamoKeyAttr:   &types.AttributeValueMemberS{Value: key},
		dynamoValueAttr: &types.AttributeValueMemberB{Value: value},
	}
	if ttl > 0 {
		expires := s.now().Add(ttl).Unix()
		item[dynamoExpiresAttr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)}
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return unavailable("dynamodb put", err)
	}
	return nil
}

// Has reports whether key exists and has not expired.
func (s *Dynamo) Has(ctx context.Context, key string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.table),
		Key:                  s.keyOf(key),
		ProjectionExpression: aws.String(dynamoExpiresAttr),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, unavailable("dynamodb get", err)
	}
	if out.Item == nil {
		return false, nil
	}
	return !s.itemExpired(out.Item), nil
}

// Delete removes key.
func (s *Dynamo) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.keyOf(key),
	}); err != nil {
		return unavailable("dynamodb delete", err)
	}
	return nil
}

// Size returns the table's item count as reported by DescribeTable. The
// count is an approximation: DynamoDB refreshes it roughly every six hours
// and expired-but-unswept items are included.
func (s *Dynamo) Size(ctx context.Context) (int64, error) {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return 0, unavailable("dynamodb describe table", err)
	}
	if out.Table == nil || out.Table.ItemCount == nil {
		return 0, nil
	}
	return *out.Table.ItemCount, nil
}

// Close is a no-op; the underlying HTTP client is shared.
func (s *Dynamo) Close() error { return nil }

// Incr atomically adds delta to the counter stored under key using an ADD
// update expression, initializing an absent counter to zero. Counters live
// in their own numeric attribute and are not readable through Get.
func (s *Dynamo) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              s.keyOf(key),
		UpdateExpression: aws.String("ADD #c :d"),
		ExpressionAttributeNames: map[string]string{
			"#c": dynamoCountAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, unavailable("dynamodb update", err)
	}
	attr, ok := out.Attributes[dynamoCountAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("dynamodb incr %q: unexpected counter attribute type", key)
	}
	value, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dynamodb incr %q: %w", key, err)
	}
	return value, nil
}
