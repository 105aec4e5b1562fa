package ddb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynaqlabs/dynaq/expression"
)

type stubAPI struct {
	queryFn       func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	scanFn        func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	getFn         func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putFn         func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateFn      func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteFn      func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	describeFn    func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	batchWriteFn  func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
}

func (s *stubAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return s.queryFn(in)
}

func (s *stubAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return s.scanFn(in)
}

func (s *stubAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return s.getFn(in)
}

func (s *stubAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return s.putFn(in)
}

func (s *stubAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return s.updateFn(in)
}

func (s *stubAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return s.deleteFn(in)
}

func (s *stubAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return s.describeFn(in)
}

func (s *stubAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return s.batchWriteFn(in)
}

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func TestQueryFollowsPagination(t *testing.T) {
	calls := 0
	api := &stubAPI{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			calls++
			assert.Equal(t, "Forum", *in.TableName)
			assert.Equal(t, "#p0 = :v0", *in.KeyConditionExpression)

			if calls == 1 {
				assert.Nil(t, in.ExclusiveStartKey)

				return &dynamodb.QueryOutput{
					Items:            []map[string]types.AttributeValue{item("1"), item("2")},
					LastEvaluatedKey: item("2"),
				}, nil
			}

			assert.Equal(t, item("2"), in.ExclusiveStartKey)

			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{item("3")},
			}, nil
		},
	}

	client := NewClientWithAPI(api)

	items, err := client.Query(context.Background(), QueryInput{
		Table: "Forum",
		KeyCondition: expression.Result{
			Expression: "#p0 = :v0",
			Names:      map[string]string{"#p0": "id"},
			Values:     map[string]types.AttributeValue{":v0": &types.AttributeValueMemberS{Value: "1"}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 2, calls)
}

func TestQueryStopsAtLimit(t *testing.T) {
	api := &stubAPI{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			require.NotNil(t, in.Limit)

			return &dynamodb.QueryOutput{
				Items:            []map[string]types.AttributeValue{item("1"), item("2")},
				LastEvaluatedKey: item("2"),
			}, nil
		},
	}

	client := NewClientWithAPI(api)

	items, err := client.Query(context.Background(), QueryInput{Table: "Forum", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestQueryLimitSpansPartialPages(t *testing.T) {
	calls := 0
	api := &stubAPI{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			calls++
			require.NotNil(t, in.Limit)

			if calls == 1 {
				assert.Equal(t, int32(5), *in.Limit)

				return &dynamodb.QueryOutput{
					Items:            []map[string]types.AttributeValue{item("1"), item("2"), item("3")},
					LastEvaluatedKey: item("3"),
				}, nil
			}

			assert.Equal(t, int32(2), *in.Limit)

			return &dynamodb.QueryOutput{
				Items:            []map[string]types.AttributeValue{item("4"), item("5")},
				LastEvaluatedKey: item("5"),
			}, nil
		},
	}

	client := NewClientWithAPI(api)

	items, err := client.Query(context.Background(), QueryInput{Table: "Forum", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 2, calls)
}

func TestScanLimitSpansPartialPages(t *testing.T) {
	calls := 0
	api := &stubAPI{
		scanFn: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			calls++
			require.NotNil(t, in.Limit)

			if calls == 1 {
				assert.Equal(t, int32(3), *in.Limit)

				return &dynamodb.ScanOutput{
					Items:            []map[string]types.AttributeValue{item("1")},
					LastEvaluatedKey: item("1"),
				}, nil
			}

			assert.Equal(t, int32(2), *in.Limit)

			// Engines may overshoot a page, the client still honors the cap.
			return &dynamodb.ScanOutput{
				Items:            []map[string]types.AttributeValue{item("2"), item("3"), item("4")},
				LastEvaluatedKey: item("4"),
			}, nil
		},
	}

	client := NewClientWithAPI(api)

	items, err := client.Scan(context.Background(), "Forum", 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, item("3"), items[2])
	assert.Equal(t, 2, calls)
}

func TestQueryIndexAndOrder(t *testing.T) {
	api := &stubAPI{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			assert.Equal(t, "author-index", *in.IndexName)
			require.NotNil(t, in.ScanIndexForward)
			assert.False(t, *in.ScanIndexForward)

			return &dynamodb.QueryOutput{}, nil
		},
	}

	client := NewClientWithAPI(api)

	_, err := client.Query(context.Background(), QueryInput{
		Table:      "Forum",
		Index:      "author-index",
		Descending: true,
	})
	require.NoError(t, err)
}

func TestGetItemMissing(t *testing.T) {
	api := &stubAPI{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			assert.True(t, *in.ConsistentRead)

			return &dynamodb.GetItemOutput{}, nil
		},
	}

	client := NewClientWithAPI(api)

	got, err := client.GetItem(context.Background(), "Forum", item("1"), true)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateItemReturnsAllNew(t *testing.T) {
	api := &stubAPI{
		updateFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			assert.Equal(t, "SET #p0 = :v0", *in.UpdateExpression)
			assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)

			return &dynamodb.UpdateItemOutput{Attributes: item("1")}, nil
		},
	}

	client := NewClientWithAPI(api)

	attrs, err := client.UpdateItem(context.Background(), "Forum", item("1"), expression.Result{
		Expression: "SET #p0 = :v0",
		Names:      map[string]string{"#p0": "note"},
		Values:     map[string]types.AttributeValue{":v0": &types.AttributeValueMemberS{Value: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, item("1"), attrs)
}

func TestClassify(t *testing.T) {
	api := &stubAPI{
		describeFn: func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "not found"}
		},
	}

	client := NewClientWithAPI(api)

	_, err := client.DescribeTable(context.Background(), "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not found")
}

func TestClassifyPassesUnknownThrough(t *testing.T) {
	boom := errors.New("boom")
	api := &stubAPI{
		deleteFn: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			return nil, boom
		},
	}

	client := NewClientWithAPI(api)

	err := client.DeleteItem(context.Background(), "Forum", item("1"))
	assert.ErrorIs(t, err, boom)
}

func TestDescribeTableConvertsSchema(t *testing.T) {
	api := &stubAPI{
		describeFn: func(in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			assert.Equal(t, "Forum", *in.TableName)

			return &dynamodb.DescribeTableOutput{
				Table: &types.TableDescription{
					TableName: aws.String("Forum"),
					AttributeDefinitions: []types.AttributeDefinition{
						{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
					},
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
					},
				},
			}, nil
		},
	}

	client := NewClientWithAPI(api)

	table, err := client.DescribeTable(context.Background(), "Forum")
	require.NoError(t, err)
	assert.Equal(t, "Forum", table.Name)
	assert.Equal(t, "id", table.Pk.Name)
}
