//go:build integration

package ddb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dynaqlabs/dynaq/config"
	"github.com/dynaqlabs/dynaq/expression"
	"github.com/dynaqlabs/dynaq/schema"
)

const localImage = "amazon/dynamodb-local:2.5.2"

// startLocalEngine runs a throwaway DynamoDB local container and returns
// a client pointed at it.
func startLocalEngine(t *testing.T) *Client {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        localImage,
			ExposedPorts: []string{"8000/tcp"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	mapped, err := container.MappedPort(ctx, "8000")
	require.NoError(t, err)

	cc := (&config.Context{Config: &config.Config{}, Cache: &config.Cache{}}).WithPort(mapped.Int())
	require.True(t, cc.IsLocal())

	client, err := NewClient(ctx, cc)
	require.NoError(t, err)

	return client
}

func createThreadTable(t *testing.T, client *Client) {
	t.Helper()

	raw, ok := client.API().(*dynamodb.Client)
	require.True(t, ok)

	_, err := raw.CreateTable(context.Background(), &dynamodb.CreateTableInput{
		TableName: aws.String("Thread"),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("ts"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("ts"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	require.NoError(t, err)
}

func putThread(t *testing.T, client *Client, doc string) {
	t.Helper()

	parsed, err := expression.ParseItem(doc, false)
	require.NoError(t, err)

	require.NoError(t, client.PutItem(context.Background(), "Thread", parsed.ToItem(nil)))
}

func TestLocalEngineRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	client := startLocalEngine(t)
	createThreadTable(t, client)

	ctx := context.Background()

	table, err := client.DescribeTable(ctx, "Thread")
	require.NoError(t, err)
	assert.Equal(t, "id", table.Pk.Name)
	require.NotNil(t, table.Sk)
	assert.Equal(t, schema.KeyTypeNumber, table.Sk.Type)

	putThread(t, client, `{"id": "user1", "ts": 1, "body": "first"}`)
	putThread(t, client, `{"id": "user1", "ts": 2, "body": "second"}`)
	putThread(t, client, `{"id": "user1", "ts": 3, "body": "third"}`)
	putThread(t, client, `{"id": "user2", "ts": 1, "body": "other"}`)

	pkValue, err := expression.ParseValue(`"user1"`)
	require.NoError(t, err)

	cond, err := expression.ParseSortKeyCondition(`>= 2`)
	require.NoError(t, err)
	cond, err = cond.Resolve(*table.Sk, false)
	require.NoError(t, err)

	compiled := expression.NewCompiler().CompileKeyCondition(table.Pk, pkValue, table.Sk, cond)

	items, err := client.Query(ctx, QueryInput{Table: "Thread", KeyCondition: compiled})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, items[0]["ts"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3"}, items[1]["ts"])

	limited, err := client.Query(ctx, QueryInput{Table: "Thread", KeyCondition: compiled, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLocalEngineUpdateAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	client := startLocalEngine(t)
	createThreadTable(t, client)

	ctx := context.Background()

	putThread(t, client, `{"id": "user1", "ts": 1, "views": 10}`)

	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "user1"},
		"ts": &types.AttributeValueMemberN{Value: "1"},
	}

	actions, err := expression.ParseSetActions(`views = views + 1`)
	require.NoError(t, err)

	attrs, err := client.UpdateItem(ctx, "Thread", key, expression.NewCompiler().CompileSet(actions))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "11"}, attrs["views"])

	got, err := client.GetItem(ctx, "Thread", key, true)
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "11"}, got["views"])

	require.NoError(t, client.DeleteItem(ctx, "Thread", key))

	got, err = client.GetItem(ctx, "Thread", key, true)
	require.NoError(t, err)
	assert.Nil(t, got)
}
