package seqstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
}

// sequenceRecord is the item persisted per scope.
type sequenceRecord struct {
	Scope      string     `dynamodbav:"scope"` // PK
	Timestamps Timestamps `dynamodbav:"timestamps"`
	Version    int64      `dynamodbav:"version"`
}

// DynamoStore keeps one item per scope. Writes are conditional on the
// version that was read, so concurrent updates retry rather than overwrite.
type DynamoStore struct {
	client     DynamoDBAPI
	tableName  string
	maxRetries int
}

// NewDynamoStore uses tableName, keyed by the string attribute "scope".
func NewDynamoStore(client DynamoDBAPI, tableName string, maxRetries int) *DynamoStore {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &DynamoStore{client: client, tableName: tableName, maxRetries: maxRetries}
}

func (d *DynamoStore) Load(ctx context.Context, scope string) (Timestamps, error) {
	rec, err := d.get(ctx, SanitizeScope(scope))
	if err != nil {
		return nil, err
	}
	return rec.Timestamps, nil
}

func (d *DynamoStore) Update(ctx context.Context, scope string, fn func(Timestamps) error) (Timestamps, error) {
	scope = SanitizeScope(scope)
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		rec, err := d.get(ctx, scope)
		if err != nil {
			return nil, err
		}
		if err := fn(rec.Timestamps); err != nil {
			return nil, err
		}
		err = d.put(ctx, rec)
		if err == nil {
			return rec.Timestamps.Clone(), nil
		}
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			zap.S().Debugf("seqstore: dynamodb item %s changed during update, retry %d", scope, attempt+1)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: scope %s after %d attempts", ErrConflict, scope, d.maxRetries)
}

func (d *DynamoStore) get(ctx context.Context, scope string) (*sequenceRecord, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      aws.String(d.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"scope": &types.AttributeValueMemberS{Value: scope},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seqstore: get item: %w", err)
	}
	rec := &sequenceRecord{Scope: scope, Timestamps: Timestamps{}}
	if len(out.Item) == 0 {
		return rec, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, rec); err != nil {
		return nil, fmt.Errorf("seqstore: unmarshal item: %w", err)
	}
	if rec.Timestamps == nil {
		rec.Timestamps = Timestamps{}
	}
	return rec, nil
}

// put writes rec with version+1, only if the stored version is still rec.Version.
func (d *DynamoStore) put(ctx context.Context, rec *sequenceRecord) error {
	read := rec.Version
	rec.Version = read + 1
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("seqstore: marshal item: %w", err)
	}
	input := &dyn.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}
	if read == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(#s)")
		input.ExpressionAttributeNames = map[string]string{"#s": "scope"}
	} else {
		input.ConditionExpression = aws.String("#v = :read")
		input.ExpressionAttributeNames = map[string]string{"#v": "version"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":read": &types.AttributeValueMemberN{Value: strconv.FormatInt(read, 10)},
		}
	}
	_, err = d.client.PutItem(ctx, input)
	if err != nil {
		rec.Version = read
		return err
	}
	return nil
}
