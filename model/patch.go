package model

import "github.com/widgetsrus/catalog/store"

// Patch types model partial updates. A nil field means "not provided" and
// is skipped by subset validation and by the merge; a pointer to the zero
// value means "set it to empty/zero".

type ErrorLogPatch struct {
	Context *string
	Code    *string
	Message *string
	Data    *string
}

type WidgetPatch struct {
	Name *string
}

type WidgetAttributePatch struct {
	Name *string
}

type WidgetXWidgetAttributePatch struct {
	WidgetID          *string
	WidgetAttributeID *string
}

type WidgetCategoryPatch struct {
	ParentID *string
	Name     *string
}

type WidgetCategoryOptionPatch struct {
	ParentID *string
	Name     *string
}

type WidgetXWidgetCategoryOptionPatch struct {
	WidgetID               *string
	WidgetCategoryOptionID *string
}

type UserPatch struct {
	Username *string
}

type OrderPatch struct {
	UserID *string
}

type ProductPatch struct {
	MerchandiseID *string
	Name          *string
	Quantity      *int
	Price         *float64
}

type OrderXProductPatch struct {
	OrderID       *string
	ProductID     *string
	QuantityToBuy *int
}

// setString adds a field to a patch document when provided.
func setString(doc store.Document, field string, v *string) {
	if v != nil {
		doc[field] = *v
	}
}

func setInt(doc store.Document, field string, v *int) {
	if v != nil {
		doc[field] = *v
	}
}

func setFloat(doc store.Document, field string, v *float64) {
	if v != nil {
		doc[field] = *v
	}
}

// Document converts a patch to a partial document holding only the
// provided fields.
func (p ErrorLogPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "context", p.Context)
	setString(doc, "code", p.Code)
	setString(doc, "message", p.Message)
	setString(doc, "data", p.Data)
	return doc
}

func (p WidgetPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "name", p.Name)
	return doc
}

func (p WidgetAttributePatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "name", p.Name)
	return doc
}

func (p WidgetXWidgetAttributePatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "widgetId", p.WidgetID)
	setString(doc, "widgetAttributeId", p.WidgetAttributeID)
	return doc
}

func (p WidgetCategoryPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "parentId", p.ParentID)
	setString(doc, "name", p.Name)
	return doc
}

func (p WidgetCategoryOptionPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "parentId", p.ParentID)
	setString(doc, "name", p.Name)
	return doc
}

func (p WidgetXWidgetCategoryOptionPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "widgetId", p.WidgetID)
	setString(doc, "widgetCategoryOptionId", p.WidgetCategoryOptionID)
	return doc
}

func (p UserPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "username", p.Username)
	return doc
}

func (p OrderPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "userId", p.UserID)
	return doc
}

func (p ProductPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "merchandiseId", p.MerchandiseID)
	setString(doc, "name", p.Name)
	setInt(doc, "quantity", p.Quantity)
	setFloat(doc, "price", p.Price)
	return doc
}

func (p OrderXProductPatch) Document() store.Document {
	doc := store.Document{}
	setString(doc, "orderId", p.OrderID)
	setString(doc, "productId", p.ProductID)
	setInt(doc, "quantityToBuy", p.QuantityToBuy)
	return doc
}
