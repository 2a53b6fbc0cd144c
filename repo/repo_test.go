package repo_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/widgetsrus/catalog/model"
	"github.com/widgetsrus/catalog/repo"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

const (
	widgetID      = "1b671a64-40d5-491e-99b0-da01ff1f3341"
	otherWidgetID = "3e0f676f-4c18-469c-a4ea-dc1c44c15e92"
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T) (*repo.Repository, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo.New(s, schema.Catalog(), nil, logger), s
}

func TestCreateWidget_RoundTrip(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateWidget(ctx, &model.Widget{ID: widgetID, Name: "Sprocket"}); err != nil {
		t.Fatalf("CreateWidget: %v", err)
	}

	got, err := r.GetWidget(ctx, widgetID)
	if err != nil {
		t.Fatalf("GetWidget: %v", err)
	}
	if got.Name != "Sprocket" {
		t.Errorf("expected name %q, got %q", "Sprocket", got.Name)
	}

	all, err := r.ListWidgets(ctx)
	if err != nil {
		t.Fatalf("ListWidgets: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 widget, got %d", len(all))
	}
}

func TestCreateWidget_InvalidNothingPersists(t *testing.T) {
	r, s := newRepo(t)
	ctx := context.Background()

	_, err := r.CreateWidget(ctx, &model.Widget{ID: widgetID, Name: "x"})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := s.FindByID(ctx, model.CollectionWidget, widgetID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected nothing persisted, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateUser(ctx, &model.User{ID: "user-1", Username: "alice"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := r.CreateUser(ctx, &model.User{ID: "user-2", Username: "alice"})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Failed validation: value already in use for a unique field" {
		t.Errorf("unexpected message %q", verr.Message)
	}
	if !errors.Is(err, store.ErrDuplicateValue) {
		t.Error("expected the store sentinel to be wrapped")
	}
}

func TestCreateWidgetCategory_SiblingNames(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateWidgetCategory(ctx, &model.WidgetCategory{ID: "cat-1", Name: "Gears"}); err != nil {
		t.Fatalf("create root: %v", err)
	}
	if _, err := r.CreateWidgetCategory(ctx, &model.WidgetCategory{ID: "cat-2", ParentID: "cat-1", Name: "Spur"}); err != nil {
		t.Fatalf("create child: %v", err)
	}

	// Same name under the same parent is rejected.
	_, err := r.CreateWidgetCategory(ctx, &model.WidgetCategory{ID: "cat-3", ParentID: "cat-1", Name: "Spur"})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for sibling name clash, got %v", err)
	}

	// Same name under a different parent is fine.
	if _, err := r.CreateWidgetCategory(ctx, &model.WidgetCategory{ID: "cat-4", Name: "Other"}); err != nil {
		t.Fatalf("create second root: %v", err)
	}
	if _, err := r.CreateWidgetCategory(ctx, &model.WidgetCategory{ID: "cat-5", ParentID: "cat-4", Name: "Spur"}); err != nil {
		t.Errorf("expected same name under a different parent to pass, got %v", err)
	}

	children, err := r.ListWidgetCategoryChildren(ctx, "cat-1")
	if err != nil {
		t.Fatalf("ListWidgetCategoryChildren: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("expected 1 child of cat-1, got %d", len(children))
	}
}

func TestCreateOrder_OnePerUser(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateOrder(ctx, &model.Order{ID: "order-1", UserID: "user-1"}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err := r.CreateOrder(ctx, &model.Order{ID: "order-2", UserID: "user-1"})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for second order of same user, got %v", err)
	}

	if _, err := r.CreateOrder(ctx, &model.Order{ID: "order-3", UserID: "user-2"}); err != nil {
		t.Errorf("expected order for a different user to pass, got %v", err)
	}
}

func TestUpdateWidget(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateWidget(ctx, &model.Widget{ID: widgetID, Name: "Sprocket"}); err != nil {
		t.Fatalf("CreateWidget: %v", err)
	}

	got, err := r.UpdateWidget(ctx, widgetID, model.WidgetPatch{Name: ptr("Sprocket mk2")})
	if err != nil {
		t.Fatalf("UpdateWidget: %v", err)
	}
	if got.Name != "Sprocket mk2" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if got.ID != widgetID {
		t.Errorf("expected id to survive the merge, got %q", got.ID)
	}
}

func TestUpdateWidget_InvalidPatchChangesNothing(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateWidget(ctx, &model.Widget{ID: widgetID, Name: "Sprocket"}); err != nil {
		t.Fatalf("CreateWidget: %v", err)
	}

	_, err := r.UpdateWidget(ctx, widgetID, model.WidgetPatch{Name: ptr("x")})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, err := r.GetWidget(ctx, widgetID)
	if err != nil {
		t.Fatalf("GetWidget: %v", err)
	}
	if got.Name != "Sprocket" {
		t.Errorf("expected name untouched, got %q", got.Name)
	}
}

func TestUpdateWidget_NotFound(t *testing.T) {
	r, _ := newRepo(t)
	_, err := r.UpdateWidget(context.Background(), widgetID, model.WidgetPatch{Name: ptr("Sprocket")})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser_UsernameSwap(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateUser(ctx, &model.User{ID: "user-1", Username: "alice"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := r.UpdateUser(ctx, "user-1", model.UserPatch{Username: ptr("alice2")}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	// The old username is free again.
	if _, err := r.CreateUser(ctx, &model.User{ID: "user-2", Username: "alice"}); err != nil {
		t.Errorf("expected released username to be reusable, got %v", err)
	}
}

func TestDeleteWidget_Cascades(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateWidget(ctx, &model.Widget{ID: widgetID, Name: "Sprocket"}); err != nil {
		t.Fatalf("CreateWidget: %v", err)
	}
	if _, err := r.CreateWidgetAttribute(ctx, &model.WidgetAttribute{ID: "attr-1", Name: "Color"}); err != nil {
		t.Fatalf("CreateWidgetAttribute: %v", err)
	}
	if _, err := r.CreateWidgetXWidgetAttribute(ctx, &model.WidgetXWidgetAttribute{
		ID: "j-1", WidgetID: widgetID, WidgetAttributeID: "attr-1",
	}); err != nil {
		t.Fatalf("CreateWidgetXWidgetAttribute: %v", err)
	}
	if _, err := r.CreateProduct(ctx, &model.Product{
		ID: "prod-1", MerchandiseID: widgetID, Name: "Sprocket", Quantity: 5, Price: 9.99,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	res, err := r.DeleteWidget(ctx, widgetID)
	if err != nil {
		t.Fatalf("DeleteWidget: %v", err)
	}
	if failed := res.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed cascade steps, got %+v", failed)
	}
	if res.Affected() != 2 {
		t.Errorf("expected 2 cascaded rows, got %d", res.Affected())
	}

	if _, err := r.GetWidget(ctx, widgetID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected widget gone, got %v", err)
	}
	lines, err := r.ListWidgetAttributesOf(ctx, widgetID)
	if err != nil {
		t.Fatalf("ListWidgetAttributesOf: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no surviving junction rows, got %d", len(lines))
	}
	products, err := r.ListProductsByMerchandise(ctx, widgetID)
	if err != nil {
		t.Fatalf("ListProductsByMerchandise: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected no surviving products, got %d", len(products))
	}

	// The attribute itself is untouched.
	if _, err := r.GetWidgetAttribute(ctx, "attr-1"); err != nil {
		t.Errorf("expected attribute to survive, got %v", err)
	}
}

func TestDeleteUser_TakesOrderAndLines(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	if _, err := r.CreateUser(ctx, &model.User{ID: "user-1", Username: "alice"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := r.CreateOrder(ctx, &model.Order{ID: "order-1", UserID: "user-1"}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := r.CreateOrderXProduct(ctx, &model.OrderXProduct{
		ID: "line-1", OrderID: "order-1", ProductID: "prod-1", QuantityToBuy: 2,
	}); err != nil {
		t.Fatalf("CreateOrderXProduct: %v", err)
	}

	res, err := r.DeleteUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if res.Affected() != 2 {
		t.Errorf("expected order and line removed, got %d", res.Affected())
	}
	if _, err := r.GetOrder(ctx, "order-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected order gone, got %v", err)
	}
	lines, err := r.ListOrderLines(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderLines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no surviving lines, got %d", len(lines))
	}

	// The one-order-per-user slot is released with the order.
	if _, err := r.CreateUser(ctx, &model.User{ID: "user-1b", Username: "alice"}); err != nil {
		t.Errorf("expected username released, got %v", err)
	}
	if _, err := r.CreateOrder(ctx, &model.Order{ID: "order-2", UserID: "user-1"}); err != nil {
		t.Errorf("expected order slot released, got %v", err)
	}
}

func TestDeleteWidget_NotFound(t *testing.T) {
	r, _ := newRepo(t)
	if _, err := r.DeleteWidget(context.Background(), widgetID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestErrorLogLifecycle(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	e := &model.ErrorLog{ID: "log-1", Context: "checkout", Code: "E42", Message: "boom", Data: `{"orderId":"order-1"}`}
	if _, err := r.CreateErrorLog(ctx, e); err != nil {
		t.Fatalf("CreateErrorLog: %v", err)
	}

	got, err := r.GetErrorLog(ctx, "log-1")
	if err != nil {
		t.Fatalf("GetErrorLog: %v", err)
	}
	if got.Message != "boom" || got.Data != `{"orderId":"order-1"}` {
		t.Errorf("unexpected error log %+v", got)
	}

	if _, err := r.UpdateErrorLog(ctx, "log-1", model.ErrorLogPatch{Message: ptr("still boom")}); err != nil {
		t.Fatalf("UpdateErrorLog: %v", err)
	}
	if _, err := r.DeleteErrorLog(ctx, "log-1"); err != nil {
		t.Fatalf("DeleteErrorLog: %v", err)
	}
	if _, err := r.GetErrorLog(ctx, "log-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected error log gone, got %v", err)
	}
}

func TestProductNumericRules(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	_, err := r.CreateProduct(ctx, &model.Product{
		ID: "prod-1", MerchandiseID: otherWidgetID, Name: "Sprocket", Quantity: -1,
	})
	var verr *repo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Failed validation: quantity must be non-negative" {
		t.Errorf("unexpected message %q", verr.Message)
	}

	_, err = r.CreateOrderXProduct(ctx, &model.OrderXProduct{
		ID: "line-1", OrderID: "order-1", ProductID: "prod-1", QuantityToBuy: 0,
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Failed validation: quantityToBuy must be positive" {
		t.Errorf("unexpected message %q", verr.Message)
	}
}
