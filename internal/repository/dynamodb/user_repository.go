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

// UserRepository is the DynamoDB implementation of repository.UserRepository.
// GSI1 indexes users by email and GSI2 by username for the signup uniqueness
// checks and the login lookup.
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a user repository on the given table.
func NewUserRepository(client *dynamodb.Client, tableName string) *UserRepository {
	return &UserRepository{client: client, tableName: tableName}
}

type userRecord struct {
	PK           string    `dynamodbav:"PK"`
	SK           string    `dynamodbav:"SK"`
	GSI1PK       string    `dynamodbav:"GSI1PK"`
	GSI1SK       string    `dynamodbav:"GSI1SK"`
	GSI2PK       string    `dynamodbav:"GSI2PK"`
	GSI2SK       string    `dynamodbav:"GSI2SK"`
	EntityType   string    `dynamodbav:"EntityType"`
	ID           string    `dynamodbav:"ID"`
	Email        string    `dynamodbav:"Email"`
	Username     string    `dynamodbav:"Username"`
	PasswordHash string    `dynamodbav:"PasswordHash"`
	Notes        []string  `dynamodbav:"Notes"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt    time.Time `dynamodbav:"UpdatedAt"`
}

func userKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "USER#" + id},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func toUserRecord(user domain.User) userRecord {
	return userRecord{
		PK:           "USER#" + user.ID,
		SK:           skMetadata,
		GSI1PK:       "USEREMAIL",
		GSI1SK:       user.Email,
		GSI2PK:       "USERNAME",
		GSI2SK:       user.Username,
		EntityType:   "USER",
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Notes:        user.Notes,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (r userRecord) toDomain() domain.User {
	notes := r.Notes
	if notes == nil {
		notes = []string{}
	}
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Notes:        notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// GetByID fetches a user, returning (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       userKey(id),
	})
	if err != nil {
		return nil, storageError("get user", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, storageError("unmarshal user", err)
	}
	user := record.toDomain()
	return &user, nil
}

func (r *UserRepository) queryOne(ctx context.Context, indexName string, keyCond expression.KeyConditionBuilder) (*domain.User, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, storageError("expression build", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, storageError("query user", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, storageError("unmarshal user", err)
	}
	user := record.toDomain()
	return &user, nil
}

// GetByEmail resolves a user by email, returning (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("USEREMAIL")).
		And(expression.Key("GSI1SK").Equal(expression.Value(email)))
	return r.queryOne(ctx, gsi1Name, keyCond)
}

// GetByUsername resolves a user by username, returning (nil, nil) when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value("USERNAME")).
		And(expression.Key("GSI2SK").Equal(expression.Value(username)))
	return r.queryOne(ctx, gsi2Name, keyCond)
}

// Create persists a new user. The item key guards against id reuse.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	item, err := attributevalue.MarshalMap(toUserRecord(user))
	if err != nil {
		return storageError("marshal user", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewConflict("user already exists")
		}
		return storageError("create user", err)
	}
	return nil
}

// Update overwrites an existing user.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	item, err := attributevalue.MarshalMap(toUserRecord(user))
	if err != nil {
		return storageError("marshal user", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storageError("update user", err)
	}
	return nil
}
