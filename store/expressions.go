package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/widgetsrus/catalog/internal/uniquekey"
)

// constraintKey computes the partition key for one unique constraint record.
func constraintKey(collection, scope, field, value string) string {
	return uniquekey.ConstraintPK(collection, scope, field, value)
}

// idKey builds the primary key for an entity table.
func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// constraintRecordKey builds the primary key for a unique constraint record.
func constraintRecordKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: "CONSTRAINT"},
	}
}

// unmarshalDocument converts a DynamoDB item into a Document.
func unmarshalDocument(raw map[string]types.AttributeValue) (Document, error) {
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return Document(doc), nil
}

// uniqueKeysOf extracts the claimed constraint keys from a stored document.
// Memory documents hold []string; documents unmarshalled from DynamoDB
// hold []any.
func uniqueKeysOf(doc Document) []string {
	switch v := doc[uniqueKeysField].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// equalKeys reports whether two constraint key slices hold the same keys,
// order-insensitively.
func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if !set[k] {
			return false
		}
	}
	return true
}

// filterExpression builds a DynamoDB filter expression from an
// equality-match filter.
func filterExpression(filter Filter) (string, map[string]string, map[string]types.AttributeValue, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	expr := ""

	i := 0
	for field, want := range filter {
		av, err := attributevalue.Marshal(want)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal filter value %q: %w", field, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = field
		values[valueKey] = av
		if expr != "" {
			expr += " AND "
		}
		expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
		i++
	}
	return expr, names, values, nil
}

// setExpression builds the update expression for a patch. Managed fields in
// the patch are skipped; updatedAt is always refreshed. A non-nil newKeys
// rewrites the claimed constraint keys (removing the attribute when empty).
func setExpression(patch Document, newKeys []string) (string, map[string]string, map[string]types.AttributeValue, error) {
	names := map[string]string{
		"#updatedAt": "updatedAt",
	}
	values := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{
			Value: time.Now().UTC().Format(time.RFC3339),
		},
	}
	clauses := []string{"#updatedAt = :updatedAt"}

	i := 0
	for field, v := range patch {
		if managed(field) {
			continue
		}
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal patch value %q: %w", field, err)
		}
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		names[nameKey] = field
		values[valueKey] = av
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}

	removeClause := ""
	if newKeys != nil {
		names["#uniqueKeys"] = uniqueKeysField
		if len(newKeys) > 0 {
			av, err := attributevalue.Marshal(newKeys)
			if err != nil {
				return "", nil, nil, fmt.Errorf("marshal constraint keys: %w", err)
			}
			values[":uniqueKeys"] = av
			clauses = append(clauses, "#uniqueKeys = :uniqueKeys")
		} else {
			removeClause = " REMOVE #uniqueKeys"
		}
	}

	expr := "SET " + strings.Join(clauses, ", ") + removeClause
	return expr, names, values, nil
}

// mapInsertError maps DynamoDB transaction errors for Insert operations.
// entityPutIndex is the index of the entity put within the transaction.
func mapInsertError(err error, entityPutIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == entityPutIndex {
					return ErrAlreadyExists
				}
				// Must be a unique constraint.
				return ErrDuplicateValue
			}
		}
	}
	return err
}

// mapUpdateError maps DynamoDB transaction errors for constraint-swapping
// updates. entityUpdateIndex is the index of the entity update within the
// transaction: a conditional failure there means the row vanished between
// read and write, while a failure on any constraint put means another
// document holds the new value.
func mapUpdateError(err error, entityUpdateIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == entityUpdateIndex {
					return ErrNotFound
				}
				return ErrDuplicateValue
			}
		}
	}
	return err
}
