// Package ddb wraps the DynamoDB data plane operations the tool needs,
// consuming compiled expressions and returning plain items.
package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/birdie-ai/golibs/slog"

	"github.com/dynaqlabs/dynaq/config"
	"github.com/dynaqlabs/dynaq/expression"
	"github.com/dynaqlabs/dynaq/schema"
)

// API is the subset of the DynamoDB service client the tool calls.
type API interface {
	Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, input *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	BatchWriteItem(ctx context.Context, input *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Client executes data plane operations against one region, or a local
// endpoint.
type Client struct {
	api    API
	region string
}

// NewClient builds a client for the context's effective region. A local
// context points the SDK at localhost with static dummy credentials,
// the way local engine instances expect.
func NewClient(ctx context.Context, cc *config.Context) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}

	if cc.IsLocal() {
		opts = append(opts,
			awsconfig.WithRegion(config.DefaultRegion),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("LOCALACCESSKEYID", "LOCALSECRETACCESSKEY", "")),
		)
	} else {
		opts = append(opts, awsconfig.WithRegion(cc.EffectiveRegion()))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	api := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint := cc.EffectiveEndpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &Client{api: api, region: cc.EffectiveRegion()}, nil
}

// NewClientWithAPI wraps an existing service client.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// API exposes the underlying service client, e.g. for the batch writer.
func (c *Client) API() API {
	return c.api
}

// DescribeTable fetches and converts the key schema of a table.
func (c *Client) DescribeTable(ctx context.Context, table string) (*schema.Table, error) {
	slog.Debug("describing table", "table", table, "region", c.region)

	out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		return nil, classify(err)
	}

	return schema.FromTableDescription(c.region, out.Table)
}

// QueryInput carries a compiled key condition plus query options.
type QueryInput struct {
	Table        string
	KeyCondition expression.Result
	Index        string
	Consistent   bool
	Limit        int32
	Descending   bool
}

// Query runs a key condition query, following LastEvaluatedKey until
// the result set is complete or the limit is reached.
func (c *Client) Query(ctx context.Context, in QueryInput) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(in.Table),
		KeyConditionExpression:    aws.String(in.KeyCondition.Expression),
		ExpressionAttributeNames:  in.KeyCondition.Names,
		ExpressionAttributeValues: in.KeyCondition.Values,
		ConsistentRead:            aws.Bool(in.Consistent),
	}

	if in.Index != "" {
		input.IndexName = aws.String(in.Index)
	}

	if in.Descending {
		input.ScanIndexForward = aws.Bool(false)
	}

	var items []map[string]types.AttributeValue

	for {
		if in.Limit > 0 {
			input.Limit = aws.Int32(in.Limit - int32(len(items)))
		}

		slog.Debug("query page", "table", in.Table, "expression", in.KeyCondition.Expression)

		out, err := c.api.Query(ctx, input)
		if err != nil {
			return nil, classify(err)
		}

		items = append(items, out.Items...)

		if in.Limit > 0 && int32(len(items)) >= in.Limit {
			return items[:in.Limit], nil
		}

		if out.LastEvaluatedKey == nil {
			return items, nil
		}

		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Scan reads the whole table, paged.
func (c *Client) Scan(ctx context.Context, table string, limit int32) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}

	var items []map[string]types.AttributeValue

	for {
		if limit > 0 {
			input.Limit = aws.Int32(limit - int32(len(items)))
		}

		slog.Debug("scan page", "table", table)

		out, err := c.api.Scan(ctx, input)
		if err != nil {
			return nil, classify(err)
		}

		items = append(items, out.Items...)

		if limit > 0 && int32(len(items)) >= limit {
			return items[:limit], nil
		}

		if out.LastEvaluatedKey == nil {
			return items, nil
		}

		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// GetItem fetches a single item by key. A missing item yields nil.
func (c *Client) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue, consistent bool) (map[string]types.AttributeValue, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	return out.Item, nil
}

// PutItem writes a full item.
func (c *Client) PutItem(ctx context.Context, table string, item map[string]types.AttributeValue) error {
	slog.Debug("putting item", "table", table, "attributes", len(item))

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})

	return classify(err)
}

// UpdateItem applies a compiled update expression and returns the item
// as it looks afterwards.
func (c *Client) UpdateItem(ctx context.Context, table string, key map[string]types.AttributeValue, update expression.Result) (map[string]types.AttributeValue, error) {
	slog.Debug("updating item", "table", table, "expression", update.Expression)

	out, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String(update.Expression),
		ExpressionAttributeNames:  update.Names,
		ExpressionAttributeValues: update.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, classify(err)
	}

	return out.Attributes, nil
}

// DeleteItem removes a single item by key.
func (c *Client) DeleteItem(ctx context.Context, table string, key map[string]types.AttributeValue) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	})

	return classify(err)
}

// classify rewrites well known API failures into actionable messages
// and passes everything else through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		return fmt.Errorf("table not found: %w", err)
	case "ProvisionedThroughputExceededException":
		return fmt.Errorf("throughput exceeded, retry later or raise capacity: %w", err)
	case "ConditionalCheckFailedException":
		return fmt.Errorf("condition not met: %w", err)
	case "ValidationException":
		return fmt.Errorf("request rejected: %s: %w", apiErr.ErrorMessage(), err)
	}

	return err
}
