package repo

import (
	"context"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/model"
	"github.com/widgetsrus/catalog/schema"
)

// CreateErrorLog persists an error record. Nothing in this layer writes
// these; they exist for outer layers (HTTP handlers, jobs) to record
// faults against.
func (r *Repository) CreateErrorLog(ctx context.Context, e *model.ErrorLog) (*model.ErrorLog, error) {
	if err := r.create(ctx, schema.TypeErrorLog, r.rules.ValidateErrorLog(e), e.Document()); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateErrorLog validates the provided fields and merges them.
func (r *Repository) UpdateErrorLog(ctx context.Context, id string, p model.ErrorLogPatch) (*model.ErrorLog, error) {
	doc, err := r.update(ctx, schema.TypeErrorLog, id, r.rules.ValidateErrorLogPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.ErrorLogFromDocument(doc), nil
}

// DeleteErrorLog removes an error record. Error logs have no dependents.
func (r *Repository) DeleteErrorLog(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeErrorLog, id)
}

// GetErrorLog fetches an error record by id.
func (r *Repository) GetErrorLog(ctx context.Context, id string) (*model.ErrorLog, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeErrorLog, id)
	if err != nil {
		return nil, err
	}
	return model.ErrorLogFromDocument(doc), nil
}

// ListErrorLogs returns all error records.
func (r *Repository) ListErrorLogs(ctx context.Context) ([]*model.ErrorLog, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeErrorLog, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ErrorLog, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.ErrorLogFromDocument(doc))
	}
	return out, nil
}
