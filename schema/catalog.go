package schema

import "github.com/widgetsrus/catalog/model"

// Entity type names. Types double as collection names.
const (
	TypeErrorLog                    = model.CollectionErrorLog
	TypeWidget                      = model.CollectionWidget
	TypeWidgetAttribute             = model.CollectionWidgetAttribute
	TypeWidgetXWidgetAttribute      = model.CollectionWidgetXWidgetAttribute
	TypeWidgetCategory              = model.CollectionWidgetCategory
	TypeWidgetCategoryOption        = model.CollectionWidgetCategoryOption
	TypeWidgetXWidgetCategoryOption = model.CollectionWidgetXWidgetCategoryOption
	TypeUser                        = model.CollectionUser
	TypeOrder                       = model.CollectionOrder
	TypeProduct                     = model.CollectionProduct
	TypeOrderXProduct               = model.CollectionOrderXProduct
)

// Catalog returns the registry for the widget catalog domain.
//
// Cascade rules, declared parent-side:
//   - Widget: junction rows go directly; dependent Products recurse so
//     their own OrderXProduct rows go too.
//   - WidgetCategory: child categories and options recurse (categories are
//     a tree; options own junction rows).
//   - User: the user's single Order recurses so its junction rows go.
//
// Order is a junction parent even though it is created per-user, so its
// OrderXProduct rows are declared here rather than left to dangle.
func Catalog() *Registry {
	r, err := NewRegistry(
		EntityDef{
			Type: TypeErrorLog,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "context", Kind: KindText},
				{Name: "code", Kind: KindText},
				{Name: "message", Kind: KindText},
				{Name: "data", Kind: KindText, Constraint: "JSON-serializable"},
			},
		},
		EntityDef{
			Type: TypeWidget,
			Fields: []Field{
				{Name: "id", Kind: KindID, Constraint: "uuid"},
				{Name: "name", Kind: KindText, Constraint: "2..256 chars, name charset"},
			},
			Relations: []Relation{
				{Target: TypeWidgetXWidgetAttribute, ForeignKey: "widgetId", Cascade: CascadeDeleteDependents},
				{Target: TypeWidgetXWidgetCategoryOption, ForeignKey: "widgetId", Cascade: CascadeDeleteDependents},
				{Target: TypeProduct, ForeignKey: "merchandiseId", Cascade: CascadeDeleteAndRecurse},
			},
		},
		EntityDef{
			Type: TypeWidgetAttribute,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "name", Kind: KindText, Constraint: "2..48 chars, name charset, unique"},
			},
			Relations: []Relation{
				{Target: TypeWidgetXWidgetAttribute, ForeignKey: "widgetAttributeId", Cascade: CascadeDeleteDependents},
			},
			Uniques: []Unique{
				{Field: "name"},
			},
		},
		EntityDef{
			Type: TypeWidgetXWidgetAttribute,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "widgetId", Kind: KindID, Constraint: "uuid"},
				{Name: "widgetAttributeId", Kind: KindID},
			},
		},
		EntityDef{
			Type: TypeWidgetCategory,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "parentId", Kind: KindID, Constraint: "nullable, self-reference"},
				{Name: "name", Kind: KindText, Constraint: "2..48 chars, name charset"},
			},
			Relations: []Relation{
				{Target: TypeWidgetCategory, ForeignKey: "parentId", Cascade: CascadeDeleteAndRecurse},
				{Target: TypeWidgetCategoryOption, ForeignKey: "parentId", Cascade: CascadeDeleteAndRecurse},
			},
			Uniques: []Unique{
				{Field: "name", ScopeField: "parentId"},
			},
		},
		EntityDef{
			Type: TypeWidgetCategoryOption,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "parentId", Kind: KindID},
				{Name: "name", Kind: KindText, Constraint: "2..48 chars, name charset"},
			},
			Relations: []Relation{
				{Target: TypeWidgetXWidgetCategoryOption, ForeignKey: "widgetCategoryOptionId", Cascade: CascadeDeleteDependents},
			},
			Uniques: []Unique{
				{Field: "name", ScopeField: "parentId"},
			},
		},
		EntityDef{
			Type: TypeWidgetXWidgetCategoryOption,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "widgetId", Kind: KindID, Constraint: "uuid"},
				{Name: "widgetCategoryOptionId", Kind: KindID},
			},
		},
		EntityDef{
			Type: TypeUser,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "username", Kind: KindText, Constraint: "3..15 chars, [a-z0-9_-], unique"},
			},
			Relations: []Relation{
				{Target: TypeOrder, ForeignKey: "userId", Cascade: CascadeDeleteAndRecurse},
			},
			Uniques: []Unique{
				{Field: "username"},
			},
		},
		EntityDef{
			Type: TypeOrder,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "userId", Kind: KindID, Constraint: "unique"},
			},
			Relations: []Relation{
				{Target: TypeOrderXProduct, ForeignKey: "orderId", Cascade: CascadeDeleteDependents},
			},
			Uniques: []Unique{
				{Field: "userId"},
			},
		},
		EntityDef{
			Type: TypeProduct,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "merchandiseId", Kind: KindID, Constraint: "uuid, loose reference"},
				{Name: "name", Kind: KindText},
				{Name: "quantity", Kind: KindInt, Constraint: ">= 0"},
				{Name: "price", Kind: KindFloat, Constraint: ">= 0"},
			},
			Relations: []Relation{
				{Target: TypeOrderXProduct, ForeignKey: "productId", Cascade: CascadeDeleteDependents},
			},
		},
		EntityDef{
			Type: TypeOrderXProduct,
			Fields: []Field{
				{Name: "id", Kind: KindID},
				{Name: "orderId", Kind: KindID},
				{Name: "productId", Kind: KindID},
				{Name: "quantityToBuy", Kind: KindInt, Constraint: "> 0"},
			},
		},
	)
	if err != nil {
		// The catalog definitions are static; a failure here is a
		// programming error.
		panic(err)
	}
	return r
}
