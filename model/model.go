// Package model defines the catalog's persistent entity shapes and their
// document codecs. Collections are singular PascalCase; fields camelCase;
// junction collections combine both entity names (e.g. OrderXProduct).
package model

import "github.com/widgetsrus/catalog/store"

// Collection names.
const (
	CollectionErrorLog                    = "ErrorLog"
	CollectionWidget                      = "Widget"
	CollectionWidgetAttribute             = "WidgetAttribute"
	CollectionWidgetXWidgetAttribute      = "WidgetXWidgetAttribute"
	CollectionWidgetCategory              = "WidgetCategory"
	CollectionWidgetCategoryOption        = "WidgetCategoryOption"
	CollectionWidgetXWidgetCategoryOption = "WidgetXWidgetCategoryOption"
	CollectionUser                        = "User"
	CollectionOrder                       = "Order"
	CollectionProduct                     = "Product"
	CollectionOrderXProduct               = "OrderXProduct"
)

// ErrorLog is a persisted error record. Context names the function where
// the error occurred, Code is a category plus short summary (e.g.
// "http/404"), Message is user-friendly, and Data is any JSON-serializable
// string that helps reconstruct what was happening. Written by outer
// layers, never by this core.
type ErrorLog struct {
	ID        string
	Context   string
	Code      string
	Message   string
	Data      string
	CreatedAt string
	UpdatedAt string
}

// Widget is a catalog item. The id is a caller-generated UUID so Product
// can reference it loosely: a product references merchandise by UUID, and
// merchandise doesn't have to be a widget forever.
type Widget struct {
	ID   string
	Name string
}

// WidgetAttribute is a user-defined attribute (e.g. "Haunted"), attached
// to widgets through WidgetXWidgetAttribute. Names are unique.
type WidgetAttribute struct {
	ID   string
	Name string
}

// WidgetXWidgetAttribute joins Widget to WidgetAttribute.
type WidgetXWidgetAttribute struct {
	ID                string
	WidgetID          string
	WidgetAttributeID string
}

// WidgetCategory is a node in the self-referential category tree. ParentID
// is empty for roots. (parentId, name) is unique.
type WidgetCategory struct {
	ID       string
	ParentID string
	Name     string
}

// WidgetCategoryOption is an option under a category (category "Scent"
// might have options "sweet", "musky"). (parentId, name) is unique.
type WidgetCategoryOption struct {
	ID       string
	ParentID string
	Name     string
}

// WidgetXWidgetCategoryOption joins Widget to WidgetCategoryOption.
type WidgetXWidgetCategoryOption struct {
	ID                     string
	WidgetID               string
	WidgetCategoryOptionID string
}

// User is a store user. Usernames are unique.
type User struct {
	ID       string
	Username string
}

// Order belongs to exactly one user; userId is unique, so a user has at
// most one order.
type Order struct {
	ID     string
	UserID string
}

// Product is sellable merchandise. MerchandiseID carries the UUID of the
// referenced merchandise (today always a Widget) and is deliberately not a
// strict foreign key.
type Product struct {
	ID            string
	MerchandiseID string
	Name          string
	Quantity      int
	Price         float64
}

// OrderXProduct joins Order to Product with the quantity being bought.
type OrderXProduct struct {
	ID            string
	OrderID       string
	ProductID     string
	QuantityToBuy int
}

// Document converts the entity to its persisted shape.
func (e *ErrorLog) Document() store.Document {
	return store.Document{
		"id":      e.ID,
		"context": e.Context,
		"code":    e.Code,
		"message": e.Message,
		"data":    e.Data,
	}
}

func (w *Widget) Document() store.Document {
	return store.Document{
		"id":   w.ID,
		"name": w.Name,
	}
}

func (a *WidgetAttribute) Document() store.Document {
	return store.Document{
		"id":   a.ID,
		"name": a.Name,
	}
}

func (j *WidgetXWidgetAttribute) Document() store.Document {
	return store.Document{
		"id":                j.ID,
		"widgetId":          j.WidgetID,
		"widgetAttributeId": j.WidgetAttributeID,
	}
}

func (c *WidgetCategory) Document() store.Document {
	return store.Document{
		"id":       c.ID,
		"parentId": c.ParentID,
		"name":     c.Name,
	}
}

func (o *WidgetCategoryOption) Document() store.Document {
	return store.Document{
		"id":       o.ID,
		"parentId": o.ParentID,
		"name":     o.Name,
	}
}

func (j *WidgetXWidgetCategoryOption) Document() store.Document {
	return store.Document{
		"id":                     j.ID,
		"widgetId":               j.WidgetID,
		"widgetCategoryOptionId": j.WidgetCategoryOptionID,
	}
}

func (u *User) Document() store.Document {
	return store.Document{
		"id":       u.ID,
		"username": u.Username,
	}
}

func (o *Order) Document() store.Document {
	return store.Document{
		"id":     o.ID,
		"userId": o.UserID,
	}
}

func (p *Product) Document() store.Document {
	return store.Document{
		"id":            p.ID,
		"merchandiseId": p.MerchandiseID,
		"name":          p.Name,
		"quantity":      p.Quantity,
		"price":         p.Price,
	}
}

func (j *OrderXProduct) Document() store.Document {
	return store.Document{
		"id":            j.ID,
		"orderId":       j.OrderID,
		"productId":     j.ProductID,
		"quantityToBuy": j.QuantityToBuy,
	}
}
