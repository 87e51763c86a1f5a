// Package dynamodb implements the repository contracts on a single DynamoDB
// table. Items are keyed PK/SK with two GSIs: GSI1 orders entities of one
// kind (natural creation order for notes, title order for categories) and
// GSI2 serves direct secondary lookups (notes by category, users by name).
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "notekeeper/pkg/errors"
)

const (
	attrPK     = "PK"
	attrSK     = "SK"
	skMetadata = "META"

	gsi1Name = "GSI1"
	gsi2Name = "GSI2"
)

// NewClient creates a DynamoDB client for the given region.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// isConditionalCheckFailed reports whether err is a conditional write
// rejection, either standalone or inside a cancelled transaction.
func isConditionalCheckFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return true
	}
	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for _, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

// storageError wraps a raw SDK failure as an internal application error.
func storageError(op string, err error) error {
	return apperrors.NewInternal(fmt.Sprintf("dynamodb %s failed", op), err)
}

// queryAll drains a query, following pagination until exhaustion.
func queryAll(ctx context.Context, client *dynamodb.Client, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}
