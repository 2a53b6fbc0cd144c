package repo

import (
	"context"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/model"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

// CreateUser validates and persists a user; the username is unique.
func (r *Repository) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if err := r.create(ctx, schema.TypeUser, r.rules.ValidateUser(u), u.Document()); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser validates the provided fields and merges them.
func (r *Repository) UpdateUser(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	doc, err := r.update(ctx, schema.TypeUser, id, r.rules.ValidateUserPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.UserFromDocument(doc), nil
}

// DeleteUser cascades to the user's order (and its junction rows) and
// removes the user.
func (r *Repository) DeleteUser(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeUser, id)
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeUser, id)
	if err != nil {
		return nil, err
	}
	return model.UserFromDocument(doc), nil
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeUser, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.UserFromDocument(doc))
	}
	return out, nil
}

// CreateOrder validates and persists an order. userId is unique: a second
// order for the same user is rejected.
func (r *Repository) CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	if err := r.create(ctx, schema.TypeOrder, r.rules.ValidateOrder(o), o.Document()); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateOrder validates the provided fields and merges them.
func (r *Repository) UpdateOrder(ctx context.Context, id string, p model.OrderPatch) (*model.Order, error) {
	doc, err := r.update(ctx, schema.TypeOrder, id, r.rules.ValidateOrderPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.OrderFromDocument(doc), nil
}

// DeleteOrder cascades to the order's junction rows and removes the order.
func (r *Repository) DeleteOrder(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeOrder, id)
}

// GetOrder fetches an order by id.
func (r *Repository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeOrder, id)
	if err != nil {
		return nil, err
	}
	return model.OrderFromDocument(doc), nil
}

// CreateProduct validates and persists a product. merchandiseId is a loose
// UUID reference, not checked against the Widget collection.
func (r *Repository) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	if err := r.create(ctx, schema.TypeProduct, r.rules.ValidateProduct(p), p.Document()); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct validates the provided fields and merges them.
func (r *Repository) UpdateProduct(ctx context.Context, id string, p model.ProductPatch) (*model.Product, error) {
	doc, err := r.update(ctx, schema.TypeProduct, id, r.rules.ValidateProductPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.ProductFromDocument(doc), nil
}

// DeleteProduct cascades to order junction rows and removes the product.
func (r *Repository) DeleteProduct(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeProduct, id)
}

// GetProduct fetches a product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeProduct, id)
	if err != nil {
		return nil, err
	}
	return model.ProductFromDocument(doc), nil
}

// ListProducts returns all products.
func (r *Repository) ListProducts(ctx context.Context) ([]*model.Product, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeProduct, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.ProductFromDocument(doc))
	}
	return out, nil
}

// ListProductsByMerchandise returns products referencing a merchandise id.
func (r *Repository) ListProductsByMerchandise(ctx context.Context, merchandiseID string) ([]*model.Product, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeProduct, store.Filter{"merchandiseId": merchandiseID})
	if err != nil {
		return nil, err
	}
	out := make([]*model.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.ProductFromDocument(doc))
	}
	return out, nil
}

// CreateOrderXProduct validates and persists an order line.
func (r *Repository) CreateOrderXProduct(ctx context.Context, j *model.OrderXProduct) (*model.OrderXProduct, error) {
	if err := r.create(ctx, schema.TypeOrderXProduct, r.rules.ValidateOrderXProduct(j), j.Document()); err != nil {
		return nil, err
	}
	return j, nil
}

// UpdateOrderXProduct validates the provided fields and merges them.
func (r *Repository) UpdateOrderXProduct(ctx context.Context, id string, p model.OrderXProductPatch) (*model.OrderXProduct, error) {
	doc, err := r.update(ctx, schema.TypeOrderXProduct, id, r.rules.ValidateOrderXProductPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.OrderXProductFromDocument(doc), nil
}

// DeleteOrderXProduct removes an order line.
func (r *Repository) DeleteOrderXProduct(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeOrderXProduct, id)
}

// ListOrderLines returns the junction rows of an order.
func (r *Repository) ListOrderLines(ctx context.Context, orderID string) ([]*model.OrderXProduct, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeOrderXProduct, store.Filter{"orderId": orderID})
	if err != nil {
		return nil, err
	}
	out := make([]*model.OrderXProduct, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.OrderXProductFromDocument(doc))
	}
	return out, nil
}
