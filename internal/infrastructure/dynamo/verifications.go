package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/weedscan-auth/internal/domain"
	"github.com/weedscan-auth/internal/pkg/token"
)

// VerificationRepo persists PendingVerification records.
// PK: verification_id.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.PendingVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal pending verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(verification_id)"),
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, id string) (*domain.PendingVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("verification_id", id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending verification %s: %w", id, domain.ErrVerificationNotFound)
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkCompleted flips the completed flag in a single conditional UpdateItem.
// The condition requires the record to exist, be uncompleted, carry the
// expected token hash and not be past expiry — so two racing completion
// attempts with the same link can never both succeed. On condition failure
// the old item returned by DynamoDB is classified into the domain taxonomy.
//
// Token mismatch and already-completed intentionally produce the same
// ErrInvalidToken, so a replayed link is indistinguishable from a forged one.
func (r *VerificationRepo) MarkCompleted(ctx context.Context, id, tokenHash string) (*domain.PendingVerification, error) {
	now := time.Now().Unix()
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("verification_id", id),
		UpdateExpression: aws.String("SET completed = :t"),
		ConditionExpression: aws.String(
			"attribute_exists(verification_id) AND completed = :f AND token_hash = :h AND expires_at > :now",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":h":   &types.AttributeValueMemberS{Value: tokenHash},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, classifyConditionFailure(ccf.Item, tokenHash, now)
		}
		return nil, err
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("verification_id", id),
	})
	return err
}

// classifyConditionFailure inspects the old item returned on a failed
// conditional update and decides which invariant was violated. The token
// check comes first: a wrong token is rejected as invalid_token no matter
// what state the record is in, so a probe with a forged token learns nothing
// about whether the id exists expired or completed.
func classifyConditionFailure(item map[string]types.AttributeValue, tokenHash string, now int64) error {
	if len(item) == 0 {
		return domain.ErrVerificationNotFound
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return domain.ErrVerificationNotFound
	}
	if !token.Equal(v.TokenHash, tokenHash) {
		return domain.ErrInvalidToken
	}
	if v.ExpiresAt <= now {
		return domain.ErrLinkExpired
	}
	return domain.ErrInvalidToken
}
