// Package integrity executes cascade-on-delete rules. Cascade steps are
// sequential, independent best-effort deletes: there is no transaction
// around them, failures are collected and reported rather than swallowed,
// and a step that removes zero rows is a logged warning, not an error.
package integrity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

// Step records one cascade delete and its outcome.
type Step struct {
	// Collection is the dependent collection the delete ran against.
	Collection string

	// ForeignKey is the field the delete filtered on.
	ForeignKey string

	// ParentID is the id the filter matched.
	ParentID string

	// Affected is the number of rows removed.
	Affected int

	// Err is the step's failure, if any. Later steps still run.
	Err error
}

// Result reports every cascade step executed for one deletion,
// depth-first, in registry declaration order.
type Result struct {
	EntityType string
	ID         string
	Steps      []Step
}

// Affected sums the rows removed across all steps.
func (r *Result) Affected() int {
	total := 0
	for _, s := range r.Steps {
		total += s.Affected
	}
	return total
}

// Failed returns the steps that reported errors.
func (r *Result) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Engine walks the schema registry's cascade rules against a store.
type Engine struct {
	store    store.Store
	registry *schema.Registry
	logger   *slog.Logger
}

// NewEngine creates a cascade engine.
func NewEngine(s store.Store, registry *schema.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    s,
		registry: registry,
		logger:   logger,
	}
}

// OnDelete runs the cascade rules for one entity instance about to be
// deleted. The instance's own row is not touched; callers remove it after
// the cascade. An entity with no dependents yields a result whose steps
// all report zero rows, which is success.
func (e *Engine) OnDelete(ctx context.Context, entityType, id string) (*Result, error) {
	if _, ok := e.registry.Describe(entityType); !ok {
		return nil, fmt.Errorf("integrity: unknown entity type %q", entityType)
	}

	result := &Result{EntityType: entityType, ID: id}
	e.cascade(ctx, entityType, id, result, map[string]bool{})

	if failed := result.Failed(); len(failed) > 0 {
		e.logger.Error("cascade completed with failures",
			"entityType", entityType,
			"id", id,
			"failedSteps", len(failed),
			"affected", result.Affected(),
		)
	} else {
		e.logger.Info("cascade completed",
			"entityType", entityType,
			"id", id,
			"steps", len(result.Steps),
			"affected", result.Affected(),
		)
	}
	return result, nil
}

// cascade appends the steps for one instance to the result. visited guards
// against parent loops in stored category data.
func (e *Engine) cascade(ctx context.Context, entityType, id string, result *Result, visited map[string]bool) {
	ref := entityType + "#" + id
	if visited[ref] {
		return
	}
	visited[ref] = true

	def, ok := e.registry.Describe(entityType)
	if !ok {
		return
	}

	for _, rel := range def.Relations {
		if rel.Cascade == schema.CascadeNone {
			continue
		}

		target, ok := e.registry.Describe(rel.Target)
		if !ok {
			continue
		}
		filter := store.Filter{rel.ForeignKey: id}

		if rel.Cascade == schema.CascadeDeleteAndRecurse {
			dependents, err := e.store.FindMany(ctx, target.Collection, filter)
			if err != nil {
				result.Steps = append(result.Steps, Step{
					Collection: target.Collection,
					ForeignKey: rel.ForeignKey,
					ParentID:   id,
					Err:        fmt.Errorf("find dependents: %w", err),
				})
				continue
			}
			for _, dep := range dependents {
				depID, _ := dep["id"].(string)
				if depID == "" {
					continue
				}
				e.cascade(ctx, rel.Target, depID, result, visited)
			}
		}

		affected, err := e.store.DeleteMany(ctx, target.Collection, filter)
		step := Step{
			Collection: target.Collection,
			ForeignKey: rel.ForeignKey,
			ParentID:   id,
			Affected:   affected,
			Err:        err,
		}
		result.Steps = append(result.Steps, step)

		switch {
		case err != nil:
			e.logger.Warn("cascade step failed",
				"collection", target.Collection,
				"foreignKey", rel.ForeignKey,
				"parentId", id,
				"error", err,
			)
		case affected == 0:
			e.logger.Warn("cascade step removed no rows",
				"collection", target.Collection,
				"foreignKey", rel.ForeignKey,
				"parentId", id,
			)
		default:
			e.logger.Info("cascade step",
				"collection", target.Collection,
				"foreignKey", rel.ForeignKey,
				"parentId", id,
				"affected", affected,
			)
		}
	}
}
