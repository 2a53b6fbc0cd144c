// Package schema declares the catalog's entity shapes, relations, and
// cascade rules in one registry. The registry is built once at startup and
// is read-only afterwards; there is no package-level mutable state.
package schema

import "fmt"

// CascadeKind selects what happens to dependent documents when their
// parent is deleted.
type CascadeKind int

const (
	// CascadeNone leaves dependents untouched.
	CascadeNone CascadeKind = iota

	// CascadeDeleteDependents bulk-deletes dependents by foreign key.
	CascadeDeleteDependents

	// CascadeDeleteAndRecurse runs each dependent's own cascade rules
	// before deleting it; required when dependents have dependents of
	// their own (self-referential trees, chained junctions).
	CascadeDeleteAndRecurse
)

// String implements fmt.Stringer.
func (k CascadeKind) String() string {
	switch k {
	case CascadeNone:
		return "none"
	case CascadeDeleteDependents:
		return "deleteDependents"
	case CascadeDeleteAndRecurse:
		return "deleteAndRecurse"
	}
	return fmt.Sprintf("CascadeKind(%d)", int(k))
}

// FieldKind is the semantic type of a field.
type FieldKind string

const (
	KindID    FieldKind = "id"
	KindText  FieldKind = "text"
	KindInt   FieldKind = "int"
	KindFloat FieldKind = "float"
)

// Field describes one declared field of an entity.
type Field struct {
	Name       string
	Kind       FieldKind
	Constraint string // human-readable rule tag, e.g. "uuid" or "2..256 chars"
}

// Relation declares that documents in Target whose ForeignKey field equals
// this entity's id depend on it, with the given cascade behavior.
type Relation struct {
	Target     string // dependent entity type
	ForeignKey string // field on the dependent referencing this entity's id
	Cascade    CascadeKind
}

// Unique declares a uniqueness constraint on an entity. ScopeField, if
// set, scopes the constraint to documents sharing that field's value.
type Unique struct {
	Field      string
	ScopeField string
}

// EntityDef is the full declaration of one entity type.
type EntityDef struct {
	Type       string // entity type name, also the collection name
	Collection string
	Fields     []Field
	Relations  []Relation
	Uniques    []Unique
}

// Registry holds all entity definitions. Build it with NewRegistry; it is
// safe for concurrent reads and never mutated after construction.
type Registry struct {
	byType map[string]EntityDef
	order  []string
}

// NewRegistry builds a registry from explicit definitions, rejecting
// duplicate types and relations pointing at undeclared targets.
func NewRegistry(defs ...EntityDef) (*Registry, error) {
	r := &Registry{byType: make(map[string]EntityDef, len(defs))}
	for _, def := range defs {
		if def.Collection == "" {
			def.Collection = def.Type
		}
		if _, dup := r.byType[def.Type]; dup {
			return nil, fmt.Errorf("schema: duplicate entity type %q", def.Type)
		}
		r.byType[def.Type] = def
		r.order = append(r.order, def.Type)
	}

	for _, def := range defs {
		for _, rel := range def.Relations {
			if _, ok := r.byType[rel.Target]; !ok {
				return nil, fmt.Errorf("schema: entity %q relation targets undeclared type %q", def.Type, rel.Target)
			}
			if rel.ForeignKey == "" {
				return nil, fmt.Errorf("schema: entity %q relation to %q has no foreign key", def.Type, rel.Target)
			}
		}
	}
	return r, nil
}

// Describe returns the definition for an entity type.
func (r *Registry) Describe(entityType string) (EntityDef, bool) {
	def, ok := r.byType[entityType]
	return def, ok
}

// Types returns all entity types in declaration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
