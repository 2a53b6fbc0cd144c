package repo

import (
	"context"

	"github.com/widgetsrus/catalog/integrity"
	"github.com/widgetsrus/catalog/model"
	"github.com/widgetsrus/catalog/schema"
	"github.com/widgetsrus/catalog/store"
)

// CreateWidget validates and persists a widget. The widget id is
// caller-generated and must be a UUID.
func (r *Repository) CreateWidget(ctx context.Context, w *model.Widget) (*model.Widget, error) {
	if err := r.create(ctx, schema.TypeWidget, r.rules.ValidateWidget(w), w.Document()); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWidget validates the provided fields and merges them into the
// stored widget.
func (r *Repository) UpdateWidget(ctx context.Context, id string, p model.WidgetPatch) (*model.Widget, error) {
	doc, err := r.update(ctx, schema.TypeWidget, id, r.rules.ValidateWidgetPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetFromDocument(doc), nil
}

// DeleteWidget cascades (junction rows, dependent products and their
// junction rows) and removes the widget.
func (r *Repository) DeleteWidget(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidget, id)
}

// GetWidget fetches a widget by id.
func (r *Repository) GetWidget(ctx context.Context, id string) (*model.Widget, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeWidget, id)
	if err != nil {
		return nil, err
	}
	return model.WidgetFromDocument(doc), nil
}

// ListWidgets returns all widgets.
func (r *Repository) ListWidgets(ctx context.Context) ([]*model.Widget, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeWidget, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Widget, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.WidgetFromDocument(doc))
	}
	return out, nil
}

// CreateWidgetAttribute validates and persists an attribute; the name is
// unique across attributes.
func (r *Repository) CreateWidgetAttribute(ctx context.Context, a *model.WidgetAttribute) (*model.WidgetAttribute, error) {
	if err := r.create(ctx, schema.TypeWidgetAttribute, r.rules.ValidateWidgetAttribute(a), a.Document()); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateWidgetAttribute validates the provided fields and merges them.
func (r *Repository) UpdateWidgetAttribute(ctx context.Context, id string, p model.WidgetAttributePatch) (*model.WidgetAttribute, error) {
	doc, err := r.update(ctx, schema.TypeWidgetAttribute, id, r.rules.ValidateWidgetAttributePatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetAttributeFromDocument(doc), nil
}

// DeleteWidgetAttribute cascades to junction rows and removes the attribute.
func (r *Repository) DeleteWidgetAttribute(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidgetAttribute, id)
}

// GetWidgetAttribute fetches an attribute by id.
func (r *Repository) GetWidgetAttribute(ctx context.Context, id string) (*model.WidgetAttribute, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeWidgetAttribute, id)
	if err != nil {
		return nil, err
	}
	return model.WidgetAttributeFromDocument(doc), nil
}

// ListWidgetAttributes returns all attributes.
func (r *Repository) ListWidgetAttributes(ctx context.Context) ([]*model.WidgetAttribute, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeWidgetAttribute, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.WidgetAttribute, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.WidgetAttributeFromDocument(doc))
	}
	return out, nil
}

// CreateWidgetXWidgetAttribute validates and persists a widget-attribute
// junction row.
func (r *Repository) CreateWidgetXWidgetAttribute(ctx context.Context, j *model.WidgetXWidgetAttribute) (*model.WidgetXWidgetAttribute, error) {
	if err := r.create(ctx, schema.TypeWidgetXWidgetAttribute, r.rules.ValidateWidgetXWidgetAttribute(j), j.Document()); err != nil {
		return nil, err
	}
	return j, nil
}

// UpdateWidgetXWidgetAttribute validates the provided fields and merges them.
func (r *Repository) UpdateWidgetXWidgetAttribute(ctx context.Context, id string, p model.WidgetXWidgetAttributePatch) (*model.WidgetXWidgetAttribute, error) {
	doc, err := r.update(ctx, schema.TypeWidgetXWidgetAttribute, id, r.rules.ValidateWidgetXWidgetAttributePatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetXWidgetAttributeFromDocument(doc), nil
}

// DeleteWidgetXWidgetAttribute removes a junction row. Junctions have no
// dependents; the cascade is a no-op.
func (r *Repository) DeleteWidgetXWidgetAttribute(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidgetXWidgetAttribute, id)
}

// ListWidgetAttributesOf returns the junction rows attaching attributes to
// a widget.
func (r *Repository) ListWidgetAttributesOf(ctx context.Context, widgetID string) ([]*model.WidgetXWidgetAttribute, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeWidgetXWidgetAttribute, store.Filter{"widgetId": widgetID})
	if err != nil {
		return nil, err
	}
	out := make([]*model.WidgetXWidgetAttribute, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.WidgetXWidgetAttributeFromDocument(doc))
	}
	return out, nil
}

// CreateWidgetCategory validates and persists a category; (parentId, name)
// is unique, so two sibling categories can't share a name.
func (r *Repository) CreateWidgetCategory(ctx context.Context, c *model.WidgetCategory) (*model.WidgetCategory, error) {
	if err := r.create(ctx, schema.TypeWidgetCategory, r.rules.ValidateWidgetCategory(c), c.Document()); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateWidgetCategory validates the provided fields and merges them.
func (r *Repository) UpdateWidgetCategory(ctx context.Context, id string, p model.WidgetCategoryPatch) (*model.WidgetCategory, error) {
	doc, err := r.update(ctx, schema.TypeWidgetCategory, id, r.rules.ValidateWidgetCategoryPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetCategoryFromDocument(doc), nil
}

// DeleteWidgetCategory removes a category and, transitively, its child
// categories, child options, and the options' junction rows.
func (r *Repository) DeleteWidgetCategory(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidgetCategory, id)
}

// GetWidgetCategory fetches a category by id.
func (r *Repository) GetWidgetCategory(ctx context.Context, id string) (*model.WidgetCategory, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeWidgetCategory, id)
	if err != nil {
		return nil, err
	}
	return model.WidgetCategoryFromDocument(doc), nil
}

// ListWidgetCategoryChildren returns the direct child categories of a
// category.
func (r *Repository) ListWidgetCategoryChildren(ctx context.Context, parentID string) ([]*model.WidgetCategory, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeWidgetCategory, store.Filter{"parentId": parentID})
	if err != nil {
		return nil, err
	}
	out := make([]*model.WidgetCategory, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.WidgetCategoryFromDocument(doc))
	}
	return out, nil
}

// CreateWidgetCategoryOption validates and persists an option; (parentId,
// name) is unique within its category.
func (r *Repository) CreateWidgetCategoryOption(ctx context.Context, o *model.WidgetCategoryOption) (*model.WidgetCategoryOption, error) {
	if err := r.create(ctx, schema.TypeWidgetCategoryOption, r.rules.ValidateWidgetCategoryOption(o), o.Document()); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateWidgetCategoryOption validates the provided fields and merges them.
func (r *Repository) UpdateWidgetCategoryOption(ctx context.Context, id string, p model.WidgetCategoryOptionPatch) (*model.WidgetCategoryOption, error) {
	doc, err := r.update(ctx, schema.TypeWidgetCategoryOption, id, r.rules.ValidateWidgetCategoryOptionPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetCategoryOptionFromDocument(doc), nil
}

// DeleteWidgetCategoryOption cascades to junction rows and removes the option.
func (r *Repository) DeleteWidgetCategoryOption(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidgetCategoryOption, id)
}

// GetWidgetCategoryOption fetches an option by id.
func (r *Repository) GetWidgetCategoryOption(ctx context.Context, id string) (*model.WidgetCategoryOption, error) {
	doc, err := r.store.FindByID(ctx, schema.TypeWidgetCategoryOption, id)
	if err != nil {
		return nil, err
	}
	return model.WidgetCategoryOptionFromDocument(doc), nil
}

// CreateWidgetXWidgetCategoryOption validates and persists a
// widget-option junction row.
func (r *Repository) CreateWidgetXWidgetCategoryOption(ctx context.Context, j *model.WidgetXWidgetCategoryOption) (*model.WidgetXWidgetCategoryOption, error) {
	if err := r.create(ctx, schema.TypeWidgetXWidgetCategoryOption, r.rules.ValidateWidgetXWidgetCategoryOption(j), j.Document()); err != nil {
		return nil, err
	}
	return j, nil
}

// UpdateWidgetXWidgetCategoryOption validates the provided fields and
// merges them.
func (r *Repository) UpdateWidgetXWidgetCategoryOption(ctx context.Context, id string, p model.WidgetXWidgetCategoryOptionPatch) (*model.WidgetXWidgetCategoryOption, error) {
	doc, err := r.update(ctx, schema.TypeWidgetXWidgetCategoryOption, id, r.rules.ValidateWidgetXWidgetCategoryOptionPatch(p), p.Document())
	if err != nil {
		return nil, err
	}
	return model.WidgetXWidgetCategoryOptionFromDocument(doc), nil
}

// DeleteWidgetXWidgetCategoryOption removes a junction row.
func (r *Repository) DeleteWidgetXWidgetCategoryOption(ctx context.Context, id string) (*integrity.Result, error) {
	return r.remove(ctx, schema.TypeWidgetXWidgetCategoryOption, id)
}

// ListWidgetCategoryOptionsOf returns the junction rows attaching options
// to a widget.
func (r *Repository) ListWidgetCategoryOptionsOf(ctx context.Context, widgetID string) ([]*model.WidgetXWidgetCategoryOption, error) {
	docs, err := r.store.FindMany(ctx, schema.TypeWidgetXWidgetCategoryOption, store.Filter{"widgetId": widgetID})
	if err != nil {
		return nil, err
	}
	out := make([]*model.WidgetXWidgetCategoryOption, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.WidgetXWidgetCategoryOptionFromDocument(doc))
	}
	return out, nil
}
