package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	pkPrefixDoc = "DOC#"
	skDocument  = "DOCUMENT"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoBackend.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// documentItem is the single table item holding the encoded document.
type documentItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Document  string `dynamodbav:"document"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// DynamoBackend keeps the document as a string attribute of one item. Items
// are capped at 400 KB, so this suits small deployments only.
type DynamoBackend struct {
	api       dynamodbAPI
	tableName string
	pk        string
	now       func() time.Time
}

// NewDynamoBackend creates a backend storing object in tableName.
func NewDynamoBackend(api dynamodbAPI, tableName, object string) (*DynamoBackend, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if strings.TrimSpace(object) == "" {
		return nil, errors.New("repository: object name must not be empty")
	}
	return &DynamoBackend{
		api:       api,
		tableName: strings.TrimSpace(tableName),
		pk:        docPK(object),
		now:       time.Now,
	}, nil
}

// docPK returns the partition key for a named document.
func docPK(object string) string {
	return pkPrefixDoc + strings.TrimSpace(object)
}

func (b *DynamoBackend) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: b.pk},
		"SK": &types.AttributeValueMemberS{Value: skDocument},
	}
}

func (b *DynamoBackend) Fetch(ctx context.Context) ([]byte, error) {
	out, err := b.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.tableName),
		Key:            b.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetItem: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("repository: GetItem unmarshal: %w", err)
	}
	return []byte(item.Document), nil
}

func (b *DynamoBackend) Store(ctx context.Context, body []byte) error {
	item, err := attributevalue.MarshalMap(documentItem{
		PK:        b.pk,
		SK:        skDocument,
		Document:  string(body),
		UpdatedAt: b.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("repository: PutItem marshal: %w", err)
	}

	_, err = b.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: PutItem: %w", err)
	}
	return nil
}
