// Package store defines the document-storage boundary for the catalog and
// provides DynamoDB and in-memory implementations.
package store

import "context"

// Document is a persisted document shape: field name to value.
type Document map[string]any

// Filter matches documents whose fields equal every value in the map.
// An empty or nil filter matches all documents in a collection.
type Filter map[string]any

// Unique declares a uniqueness constraint enforced at write time.
// Field is the document field whose value must be unique. ScopeField, if
// set, names the field whose value scopes the constraint (e.g. "parentId"
// for per-parent uniqueness); empty means collection-wide.
type Unique struct {
	Field      string
	ScopeField string
}

// Store is the generic document store the catalog core is built against.
// Implementations enforce the declared unique constraints on insert and
// update and release them when a document is removed.
type Store interface {
	// Insert persists a new document. The document must carry a non-empty
	// string "id" field. Returns ErrAlreadyExists if the id is taken and
	// ErrDuplicateValue if a unique constraint is violated.
	Insert(ctx context.Context, collection string, doc Document, uniques []Unique) error

	// FindByID returns the document with the given id, or ErrNotFound.
	FindByID(ctx context.Context, collection, id string) (Document, error)

	// FindMany returns all documents matching the filter.
	FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// UpdateByID merges patch into the stored document and returns the
	// merged result. Managed fields (id, createdAt, updatedAt) in the patch
	// are ignored. Returns ErrNotFound for unknown ids and ErrDuplicateValue
	// if the patch would violate a unique constraint.
	UpdateByID(ctx context.Context, collection, id string, patch Document, uniques []Unique) (Document, error)

	// DeleteByID removes a single document, releasing its unique
	// constraints. Returns ErrNotFound for unknown ids.
	DeleteByID(ctx context.Context, collection, id string) error

	// DeleteMany removes all documents matching the filter and returns the
	// number removed. Matching nothing is not an error.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int, error)
}

// uniqueKeysField is the document field holding the constraint partition
// keys claimed by an insert, so deletes can release them without knowing
// the entity's constraint declarations.
const uniqueKeysField = "_uniqueKeys"

// managed reports whether a field is store-managed and must not be set
// through a patch.
func managed(field string) bool {
	return field == "id" || field == "createdAt" || field == "updatedAt" || field == uniqueKeysField
}

// stringField extracts a string field from a document.
func stringField(doc Document, field string) string {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}
