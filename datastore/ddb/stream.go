/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/memstore/storagemodels"
)

// batchSize is the DynamoDB limit of write requests per BatchWriteItem call.
const batchSize = 25

// queryPages runs input page by page and hands every page of items to fn.
func (a *Adapter) queryPages(ctx context.Context, input *sdk.QueryInput, fn func(items []map[string]types.AttributeValue) error) error {
	return a.queryPagesRaw(ctx, input, func(out *sdk.QueryOutput) error {
		return fn(out.Items)
	})
}

// queryPagesRaw runs input page by page, retrying transient failures, and
// hands every page output to fn.
func (a *Adapter) queryPagesRaw(ctx context.Context, input *sdk.QueryInput, fn func(out *sdk.QueryOutput) error) error {
	options := storagemodels.ApplyScanOptions(a.scan...)

	// copy so paging does not leak into the caller's input
	in := *input
	in.Limit = aws.Int32(options.PageSize)

	var (
		items int64
		pages int
		start = time.Now()
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := a.queryWithRetry(ctx, &in, options)
		if err != nil {
			return err
		}
		pages++
		items += int64(out.Count)

		if err := fn(out); err != nil {
			return err
		}
		if options.ProgressHandler != nil {
			options.ProgressHandler(storagemodels.Progress(items, pages, start))
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// queryWithRetry executes a query with configurable retry logic
func (a *Adapter) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.ScanOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := a.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("query error: %w", err)
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			a.logger.Warn("Retrying query",
				zap.String("table", a.tableName),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// batchDelete removes keys in batches of 25, resubmitting unprocessed
// requests with the scan retry budget.
func (a *Adapter) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	options := storagemodels.ApplyScanOptions(a.scan...)

	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))

		requests := make([]types.WriteRequest, 0, end-i)
		for _, key := range keys[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		for attempt := 0; len(requests) > 0; attempt++ {
			out, err := a.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					a.tableName: requests,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to delete batch: %w", err)
			}
			requests = out.UnprocessedItems[a.tableName]
			if len(requests) == 0 {
				break
			}
			if attempt >= options.MaxRetries {
				return fmt.Errorf("failed to delete %d items after %d retries", len(requests), options.MaxRetries)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
			}
		}
	}
	return nil
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	switch {
	case stderrors.As(err, &throughput), stderrors.As(err, &limit), stderrors.As(err, &internal):
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if stderrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}
