package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
)

// batchWriteLimit is DynamoDB's maximum batch size for BatchWriteItem.
const batchWriteLimit = 25

// NoteRepository is the DynamoDB implementation of repository.NoteRepository.
// GSI1 keeps notes in natural creation order; GSI2 groups them by category.
// Match/sort/paginate stages run over the drained GSI1 set, since the engine
// has no server-side aggregation.
type NoteRepository struct {
	client    *dynamodb.Client
	tableName string
}

var _ repository.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a note repository on the given table.
func NewNoteRepository(client *dynamodb.Client, tableName string) *NoteRepository {
	return &NoteRepository{client: client, tableName: tableName}
}

type noteRecord struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	GSI1PK        string    `dynamodbav:"GSI1PK"`
	GSI1SK        string    `dynamodbav:"GSI1SK"`
	GSI2PK        string    `dynamodbav:"GSI2PK"`
	GSI2SK        string    `dynamodbav:"GSI2SK"`
	EntityType    string    `dynamodbav:"EntityType"`
	ID            string    `dynamodbav:"ID"`
	Title         string    `dynamodbav:"Title"`
	Text          string    `dynamodbav:"Text"`
	CategoryID    string    `dynamodbav:"CategoryID"`
	CategoryTitle string    `dynamodbav:"CategoryTitle"`
	Creator       string    `dynamodbav:"Creator,omitempty"`
	Tags          []string  `dynamodbav:"Tags"`
	CreatedAt     time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt     time.Time `dynamodbav:"UpdatedAt"`
}

func noteKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "NOTE#" + id},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func toNoteRecord(note domain.Note) noteRecord {
	return noteRecord{
		PK:     "NOTE#" + note.ID,
		SK:     skMetadata,
		GSI1PK: "NOTE",
		// Creation timestamp first so GSI1 range order is natural order.
		GSI1SK:        fmt.Sprintf("CREATED#%s#%s", note.CreatedAt.UTC().Format(time.RFC3339Nano), note.ID),
		GSI2PK:        "CATNOTES#" + note.CategoryID,
		GSI2SK:        note.ID,
		EntityType:    "NOTE",
		ID:            note.ID,
		Title:         note.Title,
		Text:          note.Text,
		CategoryID:    note.CategoryID,
		CategoryTitle: note.CategoryTitle,
		Creator:       note.Creator,
		Tags:          note.Tags,
		CreatedAt:     note.CreatedAt,
		UpdatedAt:     note.UpdatedAt,
	}
}

func (r noteRecord) toDomain() domain.Note {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Note{
		ID:            r.ID,
		Title:         r.Title,
		Text:          r.Text,
		CategoryID:    r.CategoryID,
		CategoryTitle: r.CategoryTitle,
		Creator:       r.Creator,
		Tags:          tags,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// listNatural drains GSI1, returning every note in natural order.
func (r *NoteRepository) listNatural(ctx context.Context) ([]domain.Note, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("NOTE"))
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
		return nil, storageError("query notes", err)
	}

	notes := make([]domain.Note, 0, len(items))
	for _, item := range items {
		var record noteRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, storageError("unmarshal note", err)
		}
		notes = append(notes, record.toDomain())
	}
	return notes, nil
}

// ListPage returns a skip/limit window of the natural-order sequence.
func (r *NoteRepository) ListPage(ctx context.Context, skip, limit int) ([]domain.Note, error) {
	pipeline := repository.NotePipeline{Page: repository.PageStage{Skip: skip, Limit: limit}}
	return r.RunPipeline(ctx, pipeline)
}

// GetByID fetches a note, returning (nil, nil) when absent.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       noteKey(id),
	})
	if err != nil {
		return nil, storageError("get note", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record noteRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, storageError("unmarshal note", err)
	}
	note := record.toDomain()
	return &note, nil
}

// FindByCategory returns every note referencing the category.
func (r *NoteRepository) FindByCategory(ctx context.Context, categoryID string) ([]domain.Note, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value("CATNOTES#" + categoryID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, storageError("expression build", err)
	}

	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, storageError("query category notes", err)
	}

	notes := make([]domain.Note, 0, len(items))
	for _, item := range items {
		var record noteRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, storageError("unmarshal note", err)
		}
		notes = append(notes, record.toDomain())
	}
	return notes, nil
}

// Create persists a note.
func (r *NoteRepository) Create(ctx context.Context, note domain.Note) error {
	item, err := attributevalue.MarshalMap(toNoteRecord(note))
	if err != nil {
		return storageError("marshal note", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storageError("create note", err)
	}
	return nil
}

// Update overwrites an existing note. Last write wins; there is no
// optimistic concurrency control on edits.
func (r *NoteRepository) Update(ctx context.Context, note domain.Note) error {
	item, err := attributevalue.MarshalMap(toNoteRecord(note))
	if err != nil {
		return storageError("marshal note", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storageError("update note", err)
	}
	return nil
}

// RemoveByID deletes a note.
func (r *NoteRepository) RemoveByID(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       noteKey(id),
	})
	if err != nil {
		return storageError("remove note", err)
	}
	return nil
}

// RemoveAllByCategory deletes every note referencing the category in batches.
func (r *NoteRepository) RemoveAllByCategory(ctx context.Context, categoryID string) (int, error) {
	notes, err := r.FindByCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for start := 0; start < len(notes); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(notes) {
			end = len(notes)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, note := range notes[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: noteKey(note.ID)},
			})
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: requests},
		}
		for len(input.RequestItems[r.tableName]) > 0 {
			out, err := r.client.BatchWriteItem(ctx, input)
			if err != nil {
				return removed, storageError("batch delete notes", err)
			}
			removed += len(input.RequestItems[r.tableName]) - len(out.UnprocessedItems[r.tableName])
			if len(out.UnprocessedItems) == 0 {
				break
			}
			input.RequestItems = out.UnprocessedItems
		}
	}
	return removed, nil
}

// RunPipeline executes a match/sort/paginate pipeline over the note set.
func (r *NoteRepository) RunPipeline(ctx context.Context, pipeline repository.NotePipeline) ([]domain.Note, error) {
	notes, err := r.listNatural(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.Apply(notes), nil
}

// Count returns the number of stored notes.
func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("NOTE"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, storageError("expression build", err)
	}

	count := 0
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, storageError("count notes", err)
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return count, nil
}
