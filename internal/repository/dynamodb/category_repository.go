package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	apperrors "notekeeper/pkg/errors"
)

// CategoryRepository is the DynamoDB implementation of
// repository.CategoryRepository. Title uniqueness is enforced with a guard
// item written in the same transaction as the category, so concurrent
// creates with the same title cannot both land.
type CategoryRepository struct {
	client    *dynamodb.Client
	tableName string
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a category repository on the given table.
func NewCategoryRepository(client *dynamodb.Client, tableName string) *CategoryRepository {
	return &CategoryRepository{client: client, tableName: tableName}
}

type categoryRecord struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	GSI1PK      string    `dynamodbav:"GSI1PK"`
	GSI1SK      string    `dynamodbav:"GSI1SK"`
	EntityType  string    `dynamodbav:"EntityType"`
	ID          string    `dynamodbav:"ID"`
	Title       string    `dynamodbav:"Title"`
	Description string    `dynamodbav:"Description"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

// titleGuardRecord reserves a category title. Its existence is the
// uniqueness invariant; it stores the owning id for title lookups.
type titleGuardRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	CategoryID string `dynamodbav:"CategoryID"`
}

func categoryKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "CAT#" + id},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func titleGuardKey(title string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "CATTITLE#" + title},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func toCategoryRecord(category domain.Category) categoryRecord {
	return categoryRecord{
		PK:          "CAT#" + category.ID,
		SK:          skMetadata,
		GSI1PK:      "CATEGORY",
		GSI1SK:      "TITLE#" + category.Title,
		EntityType:  "CATEGORY",
		ID:          category.ID,
		Title:       category.Title,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func (r categoryRecord) toDomain() domain.Category {
	return domain.Category{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ListAll returns every category, ordered by title.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("CATEGORY"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, storageError("expression build", err)
	}

	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, storageError("query categories", err)
	}

	categories := make([]domain.Category, 0, len(items))
	for _, item := range items {
		var record categoryRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, storageError("unmarshal category", err)
		}
		categories = append(categories, record.toDomain())
	}
	return categories, nil
}

// GetByID fetches a category, returning (nil, nil) when absent.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       categoryKey(id),
	})
	if err != nil {
		return nil, storageError("get category", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record categoryRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, storageError("unmarshal category", err)
	}
	category := record.toDomain()
	return &category, nil
}

// GetByTitle resolves a category through its title guard item.
func (r *CategoryRepository) GetByTitle(ctx context.Context, title string) (*domain.Category, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       titleGuardKey(title),
	})
	if err != nil {
		return nil, storageError("get title guard", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var guard titleGuardRecord
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return nil, storageError("unmarshal title guard", err)
	}
	return r.GetByID(ctx, guard.CategoryID)
}

// Create persists a category and its title guard atomically. A guard that
// already exists means the title is taken and the create fails Conflict.
func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) error {
	item, err := attributevalue.MarshalMap(toCategoryRecord(category))
	if err != nil {
		return storageError("marshal category", err)
	}
	guard, err := attributevalue.MarshalMap(titleGuardRecord{
		PK:         "CATTITLE#" + category.Title,
		SK:         skMetadata,
		EntityType: "CATEGORY_TITLE",
		CategoryID: category.ID,
	})
	if err != nil {
		return storageError("marshal title guard", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      item,
			}},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewConflict("category already exists")
		}
		return storageError("create category", err)
	}
	return nil
}

// Update persists new fields. When the title changed, the old guard is
// released and the new one claimed in the same transaction.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	current, err := r.GetByID(ctx, category.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return apperrors.NewNotFound("category")
	}

	item, err := attributevalue.MarshalMap(toCategoryRecord(category))
	if err != nil {
		return storageError("marshal category", err)
	}

	if current.Title == category.Title {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		})
		if err != nil {
			return storageError("update category", err)
		}
		return nil
	}

	guard, err := attributevalue.MarshalMap(titleGuardRecord{
		PK:         "CATTITLE#" + category.Title,
		SK:         skMetadata,
		EntityType: "CATEGORY_TITLE",
		CategoryID: category.ID,
	})
	if err != nil {
		return storageError("marshal title guard", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       titleGuardKey(current.Title),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      item,
			}},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewConflict("category already exists")
		}
		return storageError("update category", err)
	}
	return nil
}

// Remove deletes a category and releases its title guard.
func (r *CategoryRepository) Remove(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       categoryKey(id),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       titleGuardKey(current.Title),
			}},
		},
	})
	if err != nil {
		return storageError("remove category", err)
	}
	return nil
}
