package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store implementation with the same unique
// constraint semantics as the DynamoDB store. It backs the unit tests and
// is usable by embedders that don't need durability.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	claims      map[string]string // constraint key -> owning document id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Document),
		claims:      make(map[string]string),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) collection(name string) map[string]Document {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Document)
		m.collections[name] = c
	}
	return c
}

// Insert implements Store.
func (m *Memory) Insert(_ context.Context, collection string, doc Document, uniques []Unique) error {
	id := stringField(doc, "id")
	if id == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, exists := c[id]; exists {
		return ErrAlreadyExists
	}

	keys := constraintKeys(collection, doc, uniques)
	for _, k := range keys {
		if owner, claimed := m.claims[k]; claimed && owner != id {
			return ErrDuplicateValue
		}
	}

	stored := cloneDocument(doc)
	now := time.Now().UTC().Format(time.RFC3339)
	stored["createdAt"] = now
	stored["updatedAt"] = now
	if len(keys) > 0 {
		stored[uniqueKeysField] = keys
	}

	for _, k := range keys {
		m.claims[k] = id
	}
	c[id] = stored
	return nil
}

// FindByID implements Store.
func (m *Memory) FindByID(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return publicDocument(doc), nil
}

// FindMany implements Store.
func (m *Memory) FindMany(_ context.Context, collection string, filter Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Document
	for _, doc := range m.collection(collection) {
		if matches(doc, filter) {
			out = append(out, publicDocument(doc))
		}
	}
	return out, nil
}

// UpdateByID implements Store.
func (m *Memory) UpdateByID(_ context.Context, collection, id string, patch Document, uniques []Unique) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	current, ok := c[id]
	if !ok {
		return nil, ErrNotFound
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
	for _, k := range newKeys {
		if owner, claimed := m.claims[k]; claimed && owner != id {
			return nil, ErrDuplicateValue
		}
	}

	for _, k := range oldKeys {
		delete(m.claims, k)
	}
	for _, k := range newKeys {
		m.claims[k] = id
	}

	merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
	if len(newKeys) > 0 {
		merged[uniqueKeysField] = newKeys
	} else {
		delete(merged, uniqueKeysField)
	}
	c[id] = merged
	return publicDocument(merged), nil
}

// DeleteByID implements Store.
func (m *Memory) DeleteByID(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	doc, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	m.release(doc)
	delete(c, id)
	return nil
}

// DeleteMany implements Store.
func (m *Memory) DeleteMany(_ context.Context, collection string, filter Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	count := 0
	for id, doc := range c {
		if matches(doc, filter) {
			m.release(doc)
			delete(c, id)
			count++
		}
	}
	return count, nil
}

// release drops the constraint claims recorded on a stored document.
func (m *Memory) release(doc Document) {
	for _, k := range uniqueKeysOf(doc) {
		delete(m.claims, k)
	}
}

// constraintKeys computes the constraint partition keys a document claims.
// Constraints whose field is absent or empty claim nothing.
func constraintKeys(collection string, doc Document, uniques []Unique) []string {
	var keys []string
	for _, u := range uniques {
		value := stringField(doc, u.Field)
		if value == "" {
			continue
		}
		scope := ""
		if u.ScopeField != "" {
			scope = stringField(doc, u.ScopeField)
		}
		keys = append(keys, constraintKey(collection, scope, u.Field, value))
	}
	return keys
}

// matches reports whether every filter field equals the document's value.
func matches(doc Document, filter Filter) bool {
	for k, v := range filter {
		if doc[k] != v {
			return false
		}
	}
	return true
}

// cloneDocument copies a document one level deep.
func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// publicDocument returns a copy of a stored document without internal fields.
func publicDocument(doc Document) Document {
	out := cloneDocument(doc)
	delete(out, uniqueKeysField)
	return out
}
