// Package repo is the caller-facing surface of the catalog: CRUD per
// entity type, with validators run before writes and cascade rules run
// before deletes.
//
// Validation and persistence are not atomic: a concurrent delete of a
// referenced parent between validation and the write can let a document be
// created referencing an already-deleted id. That race is a documented
// property of this layer, not a bug to fix here; junction rows stranded by
// it are association-only and get swept eventually (see the stream
// package).
package repo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
	"github.com/widgetsrus/catalog/validate"
)

// Repository wires validators, the schema registry, and the integrity
// engine around a document store.
type Repository struct {
	store     store.Store
	registry  *schema.Registry
	rules     *validate.Ruleset
	integrity *integrity.Engine
	logger    *slog.Logger
}

// New creates a Repository. A nil ruleset gets the default rules; a nil
// logger gets slog.Default.
func New(s store.Store, registry *schema.Registry, rules *validate.Ruleset, logger *slog.Logger) *Repository {
	if rules == nil {
		rules = validate.DefaultRuleset()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		store:     s,
		registry:  registry,
		rules:     rules,
		integrity: integrity.NewEngine(s, registry, logger),
		logger:    logger,
	}
}

// uniques maps an entity's declared uniqueness constraints to the store's
// representation.
func (r *Repository) uniques(entityType string) []store.Unique {
	def, ok := r.registry.Describe(entityType)
	if !ok {
		return nil
	}
	out := make([]store.Unique, 0, len(def.Uniques))
	for _, u := range def.Uniques {
		out = append(out, store.Unique{Field: u.Field, ScopeField: u.ScopeField})
	}
	return out
}

// create runs the shared create path: verdict check, then insert with the
// entity's unique constraints.
func (r *Repository) create(ctx context.Context, entityType, verdict string, doc store.Document) error {
	if verdict != validate.Pass {
		return &ValidationError{Message: verdict}
	}
	err := r.store.Insert(ctx, entityType, doc, r.uniques(entityType))
	return mapWriteError(err)
}

// update runs the shared update path and returns the merged document.
func (r *Repository) update(ctx context.Context, entityType, id, verdict string, patch store.Document) (store.Document, error) {
	if verdict != validate.Pass {
		return nil, &ValidationError{Message: verdict}
	}
	doc, err := r.store.UpdateByID(ctx, entityType, id, patch, r.uniques(entityType))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return doc, nil
}

// remove runs the shared delete path: existence check, cascade, then the
// row itself. The cascade result is returned even when some steps failed;
// callers inspect Result.Failed for partial cleanup.
func (r *Repository) remove(ctx context.Context, entityType, id string) (*integrity.Result, error) {
	if _, err := r.store.FindByID(ctx, entityType, id); err != nil {
		return nil, err
	}
	result, err := r.integrity.OnDelete(ctx, entityType, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.DeleteByID(ctx, entityType, id); err != nil {
		return result, err
	}
	return result, nil
}

// mapWriteError converts store uniqueness rejections into validation
// errors; everything else passes through.
func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicateValue):
		return &ValidationError{Message: "Failed validation: value already in use for a unique field", cause: err}
	case errors.Is(err, store.ErrAlreadyExists):
		return &ValidationError{Message: "Failed validation: id already exists", cause: err}
	}
	return err
}
