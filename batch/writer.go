// Package batch chunks write requests into BatchWriteItem calls and
// retries unprocessed items.
package batch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/birdie-ai/golibs/slog"
)

// BatchWriteItem accepts at most this many requests per call.
const maxBatchSize = 25

const maxRetries = 5

// API is the single service call the writer needs.
type API interface {
	BatchWriteItem(ctx context.Context, input *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Writer accumulates put and delete requests for one table and flushes
// them in chunks.
type Writer struct {
	api      API
	table    string
	requests []types.WriteRequest
}

// NewWriter creates a writer for a table.
func NewWriter(api API, table string) *Writer {
	return &Writer{api: api, table: table}
}

// Put queues a put request.
func (w *Writer) Put(item map[string]types.AttributeValue) {
	w.requests = append(w.requests, types.WriteRequest{
		PutRequest: &types.PutRequest{Item: item},
	})
}

// Delete queues a delete request.
func (w *Writer) Delete(key map[string]types.AttributeValue) {
	w.requests = append(w.requests, types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{Key: key},
	})
}

// Pending returns the number of queued requests.
func (w *Writer) Pending() int {
	return len(w.requests)
}

// Flush sends all queued requests, 25 at a time. Unprocessed items are
// requeued and retried with a capped attempt count.
func (w *Writer) Flush(ctx context.Context) error {
	for len(w.requests) > 0 {
		n := len(w.requests)
		if n > maxBatchSize {
			n = maxBatchSize
		}

		chunk := w.requests[:n]
		w.requests = w.requests[n:]

		if err := w.writeChunk(ctx, chunk); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeChunk(ctx context.Context, chunk []types.WriteRequest) error {
	for attempt := 0; ; attempt++ {
		slog.Debug("batch write", "table", w.table, "requests", len(chunk), "attempt", attempt)

		out, err := w.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{w.table: chunk},
		})
		if err != nil {
			return fmt.Errorf("batch write to %s: %w", w.table, err)
		}

		unprocessed := out.UnprocessedItems[w.table]
		if len(unprocessed) == 0 {
			return nil
		}

		if attempt+1 >= maxRetries {
			return fmt.Errorf("batch write to %s: %d requests still unprocessed after %d attempts",
				w.table, len(unprocessed), maxRetries)
		}

		chunk = unprocessed
	}
}
