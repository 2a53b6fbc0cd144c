package model

import "github.com/widgetsrus/catalog/store"

// docString extracts a string field, tolerating absence.
func docString(doc store.Document, field string) string {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}

// docInt extracts an integer field. DynamoDB unmarshals numbers as
// float64; the memory store keeps them as written.
func docInt(doc store.Document, field string) int {
	switch v := doc[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// docFloat extracts a numeric field as float64.
func docFloat(doc store.Document, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// ErrorLogFromDocument decodes a persisted ErrorLog.
func ErrorLogFromDocument(doc store.Document) *ErrorLog {
	return &ErrorLog{
		ID:        docString(doc, "id"),
		Context:   docString(doc, "context"),
		Code:      docString(doc, "code"),
		Message:   docString(doc, "message"),
		Data:      docString(doc, "data"),
		CreatedAt: docString(doc, "createdAt"),
		UpdatedAt: docString(doc, "updatedAt"),
	}
}

// WidgetFromDocument decodes a persisted Widget.
func WidgetFromDocument(doc store.Document) *Widget {
	return &Widget{
		ID:   docString(doc, "id"),
		Name: docString(doc, "name"),
	}
}

// WidgetAttributeFromDocument decodes a persisted WidgetAttribute.
func WidgetAttributeFromDocument(doc store.Document) *WidgetAttribute {
	return &WidgetAttribute{
		ID:   docString(doc, "id"),
		Name: docString(doc, "name"),
	}
}

// WidgetXWidgetAttributeFromDocument decodes a persisted junction row.
func WidgetXWidgetAttributeFromDocument(doc store.Document) *WidgetXWidgetAttribute {
	return &WidgetXWidgetAttribute{
		ID:                docString(doc, "id"),
		WidgetID:          docString(doc, "widgetId"),
		WidgetAttributeID: docString(doc, "widgetAttributeId"),
	}
}

// WidgetCategoryFromDocument decodes a persisted WidgetCategory.
func WidgetCategoryFromDocument(doc store.Document) *WidgetCategory {
	return &WidgetCategory{
		ID:       docString(doc, "id"),
		ParentID: docString(doc, "parentId"),
		Name:     docString(doc, "name"),
	}
}

// WidgetCategoryOptionFromDocument decodes a persisted WidgetCategoryOption.
func WidgetCategoryOptionFromDocument(doc store.Document) *WidgetCategoryOption {
	return &WidgetCategoryOption{
		ID:       docString(doc, "id"),
		ParentID: docString(doc, "parentId"),
		Name:     docString(doc, "name"),
	}
}

// WidgetXWidgetCategoryOptionFromDocument decodes a persisted junction row.
func WidgetXWidgetCategoryOptionFromDocument(doc store.Document) *WidgetXWidgetCategoryOption {
	return &WidgetXWidgetCategoryOption{
		ID:                     docString(doc, "id"),
		WidgetID:               docString(doc, "widgetId"),
		WidgetCategoryOptionID: docString(doc, "widgetCategoryOptionId"),
	}
}

// UserFromDocument decodes a persisted User.
func UserFromDocument(doc store.Document) *User {
	return &User{
		ID:       docString(doc, "id"),
		Username: docString(doc, "username"),
	}
}

// OrderFromDocument decodes a persisted Order.
func OrderFromDocument(doc store.Document) *Order {
	return &Order{
		ID:     docString(doc, "id"),
		UserID: docString(doc, "userId"),
	}
}

// ProductFromDocument decodes a persisted Product.
func ProductFromDocument(doc store.Document) *Product {
	return &Product{
		ID:            docString(doc, "id"),
		MerchandiseID: docString(doc, "merchandiseId"),
		Name:          docString(doc, "name"),
		Quantity:      docInt(doc, "quantity"),
		Price:         docFloat(doc, "price"),
	}
}

// OrderXProductFromDocument decodes a persisted junction row.
func OrderXProductFromDocument(doc store.Document) *OrderXProduct {
	return &OrderXProduct{
		ID:            docString(doc, "id"),
		OrderID:       docString(doc, "orderId"),
		ProductID:     docString(doc, "productId"),
		QuantityToBuy: docInt(doc, "quantityToBuy"),
	}
}
