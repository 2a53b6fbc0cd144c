package integrity_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/model"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

const widgetID = "1b671a64-40d5-491e-99b0-da01ff1f3341"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T) (*integrity.Engine, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	return integrity.NewEngine(s, schema.Catalog(), quietLogger()), s
}

func insert(t *testing.T, s *store.Memory, collection string, doc store.Document) {
	t.Helper()
	if err := s.Insert(context.Background(), collection, doc, nil); err != nil {
		t.Fatalf("insert into %s: %v", collection, err)
	}
}

func count(t *testing.T, s *store.Memory, collection string) int {
	t.Helper()
	docs, err := s.FindMany(context.Background(), collection, store.Filter{})
	if err != nil {
		t.Fatalf("find in %s: %v", collection, err)
	}
	return len(docs)
}

func TestOnDelete_UnknownType(t *testing.T) {
	engine, _ := newEngine(t)
	if _, err := engine.OnDelete(context.Background(), "Gadget", "g-1"); err == nil {
		t.Fatal("expected error for unknown entity type")
	}
}

func TestOnDelete_NoDependents(t *testing.T) {
	engine, _ := newEngine(t)

	res, err := engine.OnDelete(context.Background(), schema.TypeWidget, widgetID)
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if res.Affected() != 0 {
		t.Errorf("expected 0 affected rows, got %d", res.Affected())
	}
	if failed := res.Failed(); len(failed) != 0 {
		t.Errorf("expected no failed steps, got %d", len(failed))
	}
}

func TestOnDelete_WidgetFanOut(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	// Two attribute junctions, one option junction, one product with two
	// order lines under the widget; one unrelated junction that must stay.
	insert(t, s, model.CollectionWidgetXWidgetAttribute, store.Document{
		"id": "j-1", "widgetId": widgetID, "widgetAttributeId": "attr-1",
	})
	insert(t, s, model.CollectionWidgetXWidgetAttribute, store.Document{
		"id": "j-2", "widgetId": widgetID, "widgetAttributeId": "attr-2",
	})
	insert(t, s, model.CollectionWidgetXWidgetAttribute, store.Document{
		"id": "j-other", "widgetId": "some-other-widget", "widgetAttributeId": "attr-1",
	})
	insert(t, s, model.CollectionWidgetXWidgetCategoryOption, store.Document{
		"id": "j-3", "widgetId": widgetID, "widgetCategoryOptionId": "opt-1",
	})
	insert(t, s, model.CollectionProduct, store.Document{
		"id": "prod-1", "merchandiseId": widgetID, "name": "Sprocket",
	})
	insert(t, s, model.CollectionOrderXProduct, store.Document{
		"id": "line-1", "orderId": "order-1", "productId": "prod-1", "quantityToBuy": 1,
	})
	insert(t, s, model.CollectionOrderXProduct, store.Document{
		"id": "line-2", "orderId": "order-2", "productId": "prod-1", "quantityToBuy": 2,
	})

	res, err := engine.OnDelete(ctx, schema.TypeWidget, widgetID)
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if failed := res.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed steps, got %+v", failed)
	}

	// 2 attribute junctions + 1 option junction + 1 product + 2 order lines.
	if res.Affected() != 6 {
		t.Errorf("expected 6 affected rows, got %d", res.Affected())
	}
	if got := count(t, s, model.CollectionWidgetXWidgetAttribute); got != 1 {
		t.Errorf("expected 1 surviving attribute junction, got %d", got)
	}
	if got := count(t, s, model.CollectionWidgetXWidgetCategoryOption); got != 0 {
		t.Errorf("expected no surviving option junctions, got %d", got)
	}
	if got := count(t, s, model.CollectionProduct); got != 0 {
		t.Errorf("expected no surviving products, got %d", got)
	}
	if got := count(t, s, model.CollectionOrderXProduct); got != 0 {
		t.Errorf("expected no surviving order lines, got %d", got)
	}
}

func TestOnDelete_CategoryTree(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	// root -> child -> grandchild, options at each level, plus an option
	// junction under the grandchild's option.
	insert(t, s, model.CollectionWidgetCategory, store.Document{"id": "cat-root", "name": "Gears"})
	insert(t, s, model.CollectionWidgetCategory, store.Document{"id": "cat-child", "parentId": "cat-root", "name": "Spur"})
	insert(t, s, model.CollectionWidgetCategory, store.Document{"id": "cat-grand", "parentId": "cat-child", "name": "Mini"})
	insert(t, s, model.CollectionWidgetCategoryOption, store.Document{"id": "opt-1", "parentId": "cat-child", "name": "Steel"})
	insert(t, s, model.CollectionWidgetCategoryOption, store.Document{"id": "opt-2", "parentId": "cat-grand", "name": "Brass"})
	insert(t, s, model.CollectionWidgetXWidgetCategoryOption, store.Document{
		"id": "j-1", "widgetId": widgetID, "widgetCategoryOptionId": "opt-2",
	})

	res, err := engine.OnDelete(ctx, schema.TypeWidgetCategory, "cat-root")
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if failed := res.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed steps, got %+v", failed)
	}

	// 2 descendant categories + 2 options + 1 option junction; the root
	// itself is left for the caller.
	if res.Affected() != 5 {
		t.Errorf("expected 5 affected rows, got %d", res.Affected())
	}
	if got := count(t, s, model.CollectionWidgetCategory); got != 1 {
		t.Errorf("expected only the root category to remain, got %d", got)
	}
	if got := count(t, s, model.CollectionWidgetCategoryOption); got != 0 {
		t.Errorf("expected no surviving options, got %d", got)
	}
	if got := count(t, s, model.CollectionWidgetXWidgetCategoryOption); got != 0 {
		t.Errorf("expected no surviving option junctions, got %d", got)
	}
}

func TestOnDelete_CategoryLoopTerminates(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	// Corrupt tree: two categories pointing at each other.
	insert(t, s, model.CollectionWidgetCategory, store.Document{"id": "cat-a", "parentId": "cat-b", "name": "A"})
	insert(t, s, model.CollectionWidgetCategory, store.Document{"id": "cat-b", "parentId": "cat-a", "name": "B"})

	res, err := engine.OnDelete(ctx, schema.TypeWidgetCategory, "cat-a")
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if res.Affected() != 2 {
		t.Errorf("expected both loop members to be removed, got %d", res.Affected())
	}
	if got := count(t, s, model.CollectionWidgetCategory); got != 0 {
		t.Errorf("expected no surviving categories, got %d", got)
	}
}

func TestOnDelete_UserOrderChain(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	insert(t, s, model.CollectionOrder, store.Document{"id": "order-1", "userId": "user-1"})
	insert(t, s, model.CollectionOrderXProduct, store.Document{
		"id": "line-1", "orderId": "order-1", "productId": "prod-1", "quantityToBuy": 3,
	})

	res, err := engine.OnDelete(ctx, schema.TypeUser, "user-1")
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if res.Affected() != 2 {
		t.Errorf("expected 2 affected rows, got %d", res.Affected())
	}
	if got := count(t, s, model.CollectionOrder); got != 0 {
		t.Errorf("expected no surviving orders, got %d", got)
	}
	if got := count(t, s, model.CollectionOrderXProduct); got != 0 {
		t.Errorf("expected no surviving order lines, got %d", got)
	}
}

// failingStore wraps Memory and fails DeleteMany for one collection so a
// cascade can be driven through a partial failure.
type failingStore struct {
	*store.Memory
	failCollection string
}

func (f *failingStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int, error) {
	if collection == f.failCollection {
		return 0, fmt.Errorf("simulated outage in %s", collection)
	}
	return f.Memory.DeleteMany(ctx, collection, filter)
}

func TestOnDelete_PartialFailureKeepsGoing(t *testing.T) {
	s := &failingStore{Memory: store.NewMemory(), failCollection: model.CollectionWidgetXWidgetAttribute}
	engine := integrity.NewEngine(s, schema.Catalog(), quietLogger())
	ctx := context.Background()

	insert(t, s.Memory, model.CollectionWidgetXWidgetAttribute, store.Document{
		"id": "j-1", "widgetId": widgetID, "widgetAttributeId": "attr-1",
	})
	insert(t, s.Memory, model.CollectionWidgetXWidgetCategoryOption, store.Document{
		"id": "j-2", "widgetId": widgetID, "widgetCategoryOptionId": "opt-1",
	})

	res, err := engine.OnDelete(ctx, schema.TypeWidget, widgetID)
	if err != nil {
		t.Fatalf("OnDelete: %v", err)
	}

	failed := res.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed step, got %d", len(failed))
	}
	if failed[0].Collection != model.CollectionWidgetXWidgetAttribute {
		t.Errorf("unexpected failed collection %q", failed[0].Collection)
	}
	if failed[0].Err == nil || errors.Is(failed[0].Err, store.ErrNotFound) {
		t.Errorf("unexpected step error %v", failed[0].Err)
	}

	// Later steps still ran.
	if got := count(t, s.Memory, model.CollectionWidgetXWidgetCategoryOption); got != 0 {
		t.Errorf("expected option junction to be removed despite earlier failure, got %d", got)
	}
}
