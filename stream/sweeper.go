// Package stream provides a DynamoDB Streams handler that sweeps up
// dependents missed by the synchronous cascade. Concurrent deletes can
// strand junction rows (the cascade and the row delete are independent
// calls); those rows are pure associations, so cleanup is allowed to be
// eventually consistent. The sweeper re-runs the cascade whenever an
// entity row is removed.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

// Handler processes DynamoDB stream events for cascade sweeping.
type Handler struct {
	engine   *integrity.Engine
	registry *schema.Registry
	config   store.Config
	logger   *slog.Logger
}

// NewHandler creates a stream handler. The config must match the store's
// so table names map back to entity types.
func NewHandler(engine *integrity.Engine, registry *schema.Registry, config store.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:   engine,
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// HandleSweep processes stream records, re-running the cascade for every
// removed entity row. Idempotent: re-sweeping a fully cleaned entity just
// logs zero-row steps. Designed to be used as an AWS Lambda handler.
func (h *Handler) HandleSweep(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord handles a single stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	entityType, ok := h.entityTypeFor(record.EventSourceArn)
	if !ok {
		// Not an entity table (e.g. the unique constraints table).
		return nil
	}

	id := getStringAttr(record.Change.Keys, "id")
	if id == "" {
		return nil
	}

	h.logger.Info("sweeping removed entity",
		"entityType", entityType,
		"id", id,
	)

	result, err := h.engine.OnDelete(ctx, entityType, id)
	if err != nil {
		return fmt.Errorf("sweep %s %s: %w", entityType, id, err)
	}
	if failed := result.Failed(); len(failed) > 0 {
		return fmt.Errorf("sweep %s %s: %d steps failed", entityType, id, len(failed))
	}

	h.logger.Info("sweep completed",
		"entityType", entityType,
		"id", id,
		"affected", result.Affected(),
	)
	return nil
}

// entityTypeFor maps a stream record's source table back to a registered
// entity type.
func (h *Handler) entityTypeFor(eventSourceArn string) (string, bool) {
	table := tableFromARN(eventSourceArn)
	entityType := strings.TrimPrefix(table, h.config.TablePrefix)
	if entityType == table && h.config.TablePrefix != "" {
		return "", false
	}
	if _, ok := h.registry.Describe(entityType); !ok {
		return "", false
	}
	return entityType, true
}

// tableFromARN extracts the table name from a stream ARN
// (arn:aws:dynamodb:region:account:table/NAME/stream/LABEL).
func tableFromARN(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// getStringAttr extracts a string attribute from a stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
