package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchWriteMax is the DynamoDB BatchWriteItem request limit.
const batchWriteMax = 25

// batchRetryMax bounds retries of unprocessed BatchWriteItem requests.
const batchRetryMax = 5

// batchRetryBase is the initial backoff between batch retries; it doubles
// per attempt.
const batchRetryBase = 50 * time.Millisecond

// Dynamo is the DynamoDB-backed Store implementation. Each collection maps
// to one table (Config.TablePrefix + collection) keyed by "id"; unique
// constraints live as conditional records in Config.UniqueTable.
type Dynamo struct {
	client *dynamodb.Client
	config Config
}

// NewDynamo creates a Dynamo store from an existing client.
func NewDynamo(client *dynamodb.Client, config Config) *Dynamo {
	config.validate()
	return &Dynamo{
		client: client,
		config: config,
	}
}

// NewDynamoFromEnv creates a Dynamo store using the default AWS credential
// and region chain.
func NewDynamoFromEnv(ctx context.Context, config Config) (*Dynamo, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamo(dynamodb.NewFromConfig(awsCfg), config), nil
}

var _ Store = (*Dynamo)(nil)

// Insert implements Store. The entity put and its unique constraint puts
// run in one TransactWriteItems call so a constraint violation rejects the
// whole insert.
func (d *Dynamo) Insert(ctx context.Context, collection string, doc Document, uniques []Unique) error {
	id := stringField(doc, "id")
	if id == "" {
		return ErrMissingID
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stored := cloneDocument(doc)
	stored["createdAt"] = now
	stored["updatedAt"] = now

	keys := constraintKeys(collection, stored, uniques)
	if len(keys) > 0 {
		stored[uniqueKeysField] = keys
	}

	item, err := attributevalue.MarshalMap(map[string]any(stored))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	var items []types.TransactWriteItem
	for _, u := range uniques {
		value := stringField(stored, u.Field)
		if value == "" {
			continue
		}
		scope := ""
		if u.ScopeField != "" {
			scope = stringField(stored, u.ScopeField)
		}
		items = append(items, d.constraintPut(collection, scope, u.Field, value, id))
	}

	entityPutIndex := len(items)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(d.config.TableFor(collection)),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	_, err = d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapInsertError(err, entityPutIndex)
}

// constraintPut builds the conditional put for one unique constraint record.
func (d *Dynamo) constraintPut(collection, scope, field, value, id string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(d.config.UniqueTable),
			Item: map[string]types.AttributeValue{
				"pk":         &types.AttributeValueMemberS{Value: constraintKey(collection, scope, field, value)},
				"sk":         &types.AttributeValueMemberS{Value: "CONSTRAINT"},
				"collection": &types.AttributeValueMemberS{Value: collection},
				"scope":      &types.AttributeValueMemberS{Value: scope},
				"fieldName":  &types.AttributeValueMemberS{Value: field},
				"fieldValue": &types.AttributeValueMemberS{Value: value},
				"documentId": &types.AttributeValueMemberS{Value: id},
			},
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		},
	}
}

// FindByID implements Store.
func (d *Dynamo) FindByID(ctx context.Context, collection, id string) (Document, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.config.TableFor(collection)),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	doc, err := unmarshalDocument(result.Item)
	if err != nil {
		return nil, err
	}
	return publicDocument(doc), nil
}

// FindMany implements Store.
func (d *Dynamo) FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	docs, err := d.findManyRaw(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, publicDocument(doc))
	}
	return out, nil
}

// findManyRaw scans a collection, keeping internal fields on the results.
func (d *Dynamo) findManyRaw(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.config.TableFor(collection)),
	}
	if len(filter) > 0 {
		expr, names, values, err := filterExpression(filter)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var docs []Document
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			doc, err := unmarshalDocument(raw)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// UpdateByID implements Store. When the patch touches fields involved in a
// unique constraint, the old constraint records are deleted and new ones
// created in the same transaction as the entity update.
func (d *Dynamo) UpdateByID(ctx context.Context, collection, id string, patch Document, uniques []Unique) (Document, error) {
	current, err := d.FindByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := cloneDocument(current)
	for k, v := range patch {
		if managed(k) {
			continue
		}
		merged[k] = v
	}

	oldKeys := constraintKeys(collection, current, uniques)
	newKeys := constraintKeys(collection, merged, uniques)

	if equalKeys(oldKeys, newKeys) {
		return d.updateSimple(ctx, collection, id, patch, nil)
	}
	return d.updateWithConstraints(ctx, collection, id, patch, current, merged, uniques, oldKeys, newKeys)
}

// updateSimple performs a plain UpdateItem with a SET expression.
func (d *Dynamo) updateSimple(ctx context.Context, collection, id string, patch Document, newKeys []string) (Document, error) {
	expr, names, values, err := setExpression(patch, newKeys)
	if err != nil {
		return nil, err
	}

	result, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.config.TableFor(collection)),
		Key:                       idKey(id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc, err := unmarshalDocument(result.Attributes)
	if err != nil {
		return nil, err
	}
	return publicDocument(doc), nil
}

// updateWithConstraints swaps changed unique constraint records and updates
// the entity in one transaction.
func (d *Dynamo) updateWithConstraints(ctx context.Context, collection, id string, patch, current, merged Document, uniques []Unique, oldKeys, newKeys []string) (Document, error) {
	var items []types.TransactWriteItem

	newSet := make(map[string]bool, len(newKeys))
	for _, k := range newKeys {
		newSet[k] = true
	}
	for _, k := range oldKeys {
		if !newSet[k] {
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(d.config.UniqueTable),
					Key:       constraintRecordKey(k),
				},
			})
		}
	}

	oldSet := make(map[string]bool, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[k] = true
	}
	for _, u := range uniques {
		value := stringField(merged, u.Field)
		if value == "" {
			continue
		}
		scope := ""
		if u.ScopeField != "" {
			scope = stringField(merged, u.ScopeField)
		}
		if oldSet[constraintKey(collection, scope, u.Field, value)] {
			continue // unchanged constraint, keep its record
		}
		items = append(items, d.constraintPut(collection, scope, u.Field, value, id))
	}

	expr, names, values, err := setExpression(patch, newKeys)
	if err != nil {
		return nil, err
	}
	entityUpdateIndex := len(items)
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(d.config.TableFor(collection)),
			Key:                       idKey(id),
			UpdateExpression:          aws.String(expr),
			ConditionExpression:       aws.String("attribute_exists(id)"),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		},
	})

	_, err = d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return nil, mapUpdateError(err, entityUpdateIndex)
	}

	return d.FindByID(ctx, collection, id)
}

// DeleteByID implements Store.
func (d *Dynamo) DeleteByID(ctx context.Context, collection, id string) error {
	result, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.config.TableFor(collection)),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return err
	}

	doc, err := unmarshalDocument(result.Attributes)
	if err != nil {
		return err
	}
	d.releaseConstraints(ctx, doc)
	return nil
}

// DeleteMany implements Store. BatchWriteItem may return unprocessed
// requests under throttling; those are retried with backoff, and the
// returned count covers confirmed deletions only, so cascade steps never
// report rows deleted that are still alive.
func (d *Dynamo) DeleteMany(ctx context.Context, collection string, filter Filter) (int, error) {
	docs, err := d.findManyRaw(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	table := d.config.TableFor(collection)
	deleted := 0
	for start := 0; start < len(docs); start += batchWriteMax {
		end := start + batchWriteMax
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		requests := make([]types.WriteRequest, 0, len(chunk))
		for _, doc := range chunk {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: idKey(stringField(doc, "id")),
				},
			})
		}

		remaining, batchErr := d.batchDelete(ctx, table, requests)
		missed := unprocessedIDs(remaining)
		for _, doc := range chunk {
			if missed[stringField(doc, "id")] {
				continue
			}
			deleted++
			d.releaseConstraints(ctx, doc)
		}
		if batchErr != nil {
			return deleted, batchErr
		}
	}
	return deleted, nil
}

// batchDelete writes one batch of delete requests, retrying unprocessed
// items with exponential backoff. It returns the requests that never
// confirmed.
func (d *Dynamo) batchDelete(ctx context.Context, table string, requests []types.WriteRequest) ([]types.WriteRequest, error) {
	pending := requests
	backoff := batchRetryBase
	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: pending},
		})
		if err != nil {
			return pending, err
		}
		pending = out.UnprocessedItems[table]
		if len(pending) == 0 {
			return nil, nil
		}
		if attempt >= batchRetryMax {
			return pending, fmt.Errorf("batch delete: %d items unprocessed after %d retries", len(pending), batchRetryMax)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return pending, ctx.Err()
		}
		backoff *= 2
	}
}

// unprocessedIDs collects the entity ids of unconfirmed delete requests.
func unprocessedIDs(requests []types.WriteRequest) map[string]bool {
	out := map[string]bool{}
	for _, r := range requests {
		if r.DeleteRequest == nil {
			continue
		}
		if s, ok := r.DeleteRequest.Key["id"].(*types.AttributeValueMemberS); ok {
			out[s.Value] = true
		}
	}
	return out
}

// releaseConstraints deletes the constraint records claimed by a document.
// Best effort; nothing sweeps the constraints table, so a failed delete
// leaves the record behind and the value stays claimed until the record is
// removed by hand.
func (d *Dynamo) releaseConstraints(ctx context.Context, doc Document) {
	for _, k := range uniqueKeysOf(doc) {
		_, _ = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(d.config.UniqueTable),
			Key:       constraintRecordKey(k),
		})
	}
}
