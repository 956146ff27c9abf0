package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-onboard-api/internal/domain"
)

// GroupRepo stores the key -> LINE group id bindings. This replaces the
// process-wide "last known group id" variable the flow previously relied on:
// concurrent callers each read and write their own key.
type GroupRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGroupRepo(client *dynamodb.Client, tableName string) *GroupRepo {
	return &GroupRepo{client: client, tableName: tableName}
}

func (r *GroupRepo) Put(ctx context.Context, key, groupID string) error {
	b := &domain.GroupBinding{GroupKey: key, GroupID: groupID, UpdatedAt: time.Now().UTC()}
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal group binding: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *GroupRepo) Get(ctx context.Context, key string) (*domain.GroupBinding, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("group_key", key),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("group binding not found: %w", domain.ErrNotFound)
	}
	var b domain.GroupBinding
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
