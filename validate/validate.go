package validate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/widgetsrus/catalog/model"
)

// guard converts a panic inside a check into a failure verdict so no
// internal fault escapes a validator as a crash.
func guard(check func() string) (verdict string) {
	defer func() {
		if r := recover(); r != nil {
			verdict = fmt.Sprintf("Failed validation: %v", r)
		}
	}()
	return check()
}

// falsy is the verdict for a missing required value.
func falsy(field string) string {
	return fmt.Sprintf("Failed validation: %s was falsy", field)
}

// uuidRule checks a UUID-keyed identifier field.
func uuidRule(field, value string) string {
	if value == "" {
		return falsy(field)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Sprintf("Failed validation: %s must be a UUID", field)
	}
	return Pass
}

// idRule checks an opaque identifier field.
func (r *Ruleset) idRule(field, value string) string {
	if value == "" {
		return falsy(field)
	}
	if len(value) > r.cfg.IDMaxLength || strings.ContainsAny(value, " \t\n") {
		return fmt.Sprintf("Failed validation: %s was not a valid id", field)
	}
	return Pass
}

// longNameRule checks Widget-style names against the configured charset.
func (r *Ruleset) longNameRule(field, value string) string {
	if !r.longName.MatchString(value) {
		return fmt.Sprintf("Failed validation: Invalid %s, must be between %d & %d characters and may contain only letters, numbers, spaces, and allowed punctuation",
			field, r.cfg.LongNameMin, r.cfg.LongNameMax)
	}
	return Pass
}

// shortNameRule checks attribute/category/option names.
func (r *Ruleset) shortNameRule(field, value string) string {
	if !r.shortName.MatchString(value) {
		return fmt.Sprintf("Failed validation: Invalid %s, must be between %d & %d characters and may contain only letters, numbers, spaces, and allowed punctuation",
			field, r.cfg.ShortNameMin, r.cfg.ShortNameMax)
	}
	return Pass
}

// usernameRule checks the username against the configured pattern.
func (r *Ruleset) usernameRule(value string) string {
	if value == "" {
		return falsy("username")
	}
	if !r.username.MatchString(value) {
		return "Failed validation: Invalid username, must be between 3 & 15 characters and may contain only letters, numbers, and hyphens"
	}
	return Pass
}

// first returns the first non-Pass verdict, or Pass.
func first(verdicts ...string) string {
	for _, v := range verdicts {
		if v != Pass {
			return v
		}
	}
	return Pass
}

// ValidateErrorLog checks a full ErrorLog. Data may be empty; it is an
// opaque serialized payload.
func (r *Ruleset) ValidateErrorLog(e *model.ErrorLog) string {
	return guard(func() string {
		if e == nil {
			return falsy("errorLog")
		}
		return first(
			r.idRule("id", e.ID),
			requireText("context", e.Context),
			requireText("code", e.Code),
			requireText("message", e.Message),
		)
	})
}

// ValidateErrorLogPatch checks only the provided ErrorLog fields.
func (r *Ruleset) ValidateErrorLogPatch(p model.ErrorLogPatch) string {
	return guard(func() string {
		if p.Context != nil {
			if v := requireText("context", *p.Context); v != Pass {
				return v
			}
		}
		if p.Code != nil {
			if v := requireText("code", *p.Code); v != Pass {
				return v
			}
		}
		if p.Message != nil {
			if v := requireText("message", *p.Message); v != Pass {
				return v
			}
		}
		return Pass
	})
}

// requireText checks that a required text field is present.
func requireText(field, value string) string {
	if value == "" {
		return falsy(field)
	}
	return Pass
}

// ValidateWidget checks a full Widget.
func (r *Ruleset) ValidateWidget(w *model.Widget) string {
	return guard(func() string {
		if w == nil {
			return falsy("widget")
		}
		return first(
			uuidRule("id", w.ID),
			r.longNameRule("name", w.Name),
		)
	})
}

// ValidateWidgetPatch checks only the provided Widget fields.
func (r *Ruleset) ValidateWidgetPatch(p model.WidgetPatch) string {
	return guard(func() string {
		if p.Name != nil {
			return r.longNameRule("name", *p.Name)
		}
		return Pass
	})
}

// ValidateWidgetAttribute checks a full WidgetAttribute.
func (r *Ruleset) ValidateWidgetAttribute(a *model.WidgetAttribute) string {
	return guard(func() string {
		if a == nil {
			return falsy("widgetAttribute")
		}
		return first(
			r.idRule("id", a.ID),
			r.shortNameRule("name", a.Name),
		)
	})
}

// ValidateWidgetAttributePatch checks only the provided fields.
func (r *Ruleset) ValidateWidgetAttributePatch(p model.WidgetAttributePatch) string {
	return guard(func() string {
		if p.Name != nil {
			return r.shortNameRule("name", *p.Name)
		}
		return Pass
	})
}

// ValidateWidgetXWidgetAttribute checks a full junction row.
func (r *Ruleset) ValidateWidgetXWidgetAttribute(j *model.WidgetXWidgetAttribute) string {
	return guard(func() string {
		if j == nil {
			return falsy("widgetXWidgetAttribute")
		}
		return first(
			r.idRule("id", j.ID),
			uuidRule("widgetId", j.WidgetID),
			r.idRule("widgetAttributeId", j.WidgetAttributeID),
		)
	})
}

// ValidateWidgetXWidgetAttributePatch checks only the provided fields.
func (r *Ruleset) ValidateWidgetXWidgetAttributePatch(p model.WidgetXWidgetAttributePatch) string {
	return guard(func() string {
		if p.WidgetID != nil {
			if v := uuidRule("widgetId", *p.WidgetID); v != Pass {
				return v
			}
		}
		if p.WidgetAttributeID != nil {
			if v := r.idRule("widgetAttributeId", *p.WidgetAttributeID); v != Pass {
				return v
			}
		}
		return Pass
	})
}

// ValidateWidgetCategory checks a full WidgetCategory. ParentID is
// nullable: empty means a root category.
func (r *Ruleset) ValidateWidgetCategory(c *model.WidgetCategory) string {
	return guard(func() string {
		if c == nil {
			return falsy("widgetCategory")
		}
		if v := r.idRule("id", c.ID); v != Pass {
			return v
		}
		if c.ParentID != "" {
			if v := r.idRule("parentId", c.ParentID); v != Pass {
				return v
			}
		}
		return r.shortNameRule("name", c.Name)
	})
}

// ValidateWidgetCategoryPatch checks only the provided fields.
func (r *Ruleset) ValidateWidgetCategoryPatch(p model.WidgetCategoryPatch) string {
	return guard(func() string {
		if p.ParentID != nil && *p.ParentID != "" {
			if v := r.idRule("parentId", *p.ParentID); v != Pass {
				return v
			}
		}
		if p.Name != nil {
			return r.shortNameRule("name", *p.Name)
		}
		return Pass
	})
}

// ValidateWidgetCategoryOption checks a full WidgetCategoryOption. Unlike
// categories, options always have a parent category.
func (r *Ruleset) ValidateWidgetCategoryOption(o *model.WidgetCategoryOption) string {
	return guard(func() string {
		if o == nil {
			return falsy("widgetCategoryOption")
		}
		return first(
			r.idRule("id", o.ID),
			r.idRule("parentId", o.ParentID),
			r.shortNameRule("name", o.Name),
		)
	})
}

// ValidateWidgetCategoryOptionPatch checks only the provided fields.
func (r *Ruleset) ValidateWidgetCategoryOptionPatch(p model.WidgetCategoryOptionPatch) string {
	return guard(func() string {
		if p.ParentID != nil {
			if v := r.idRule("parentId", *p.ParentID); v != Pass {
				return v
			}
		}
		if p.Name != nil {
			return r.shortNameRule("name", *p.Name)
		}
		return Pass
	})
}

// ValidateWidgetXWidgetCategoryOption checks a full junction row.
func (r *Ruleset) ValidateWidgetXWidgetCategoryOption(j *model.WidgetXWidgetCategoryOption) string {
	return guard(func() string {
		if j == nil {
			return falsy("widgetXWidgetCategoryOption")
		}
		return first(
			r.idRule("id", j.ID),
			uuidRule("widgetId", j.WidgetID),
			r.idRule("widgetCategoryOptionId", j.WidgetCategoryOptionID),
		)
	})
}

// ValidateWidgetXWidgetCategoryOptionPatch checks only the provided fields.
func (r *Ruleset) ValidateWidgetXWidgetCategoryOptionPatch(p model.WidgetXWidgetCategoryOptionPatch) string {
	return guard(func() string {
		if p.WidgetID != nil {
			if v := uuidRule("widgetId", *p.WidgetID); v != Pass {
				return v
			}
		}
		if p.WidgetCategoryOptionID != nil {
			if v := r.idRule("widgetCategoryOptionId", *p.WidgetCategoryOptionID); v != Pass {
				return v
			}
		}
		return Pass
	})
}

// ValidateUser checks a full User.
func (r *Ruleset) ValidateUser(u *model.User) string {
	return guard(func() string {
		if u == nil {
			return falsy("user")
		}
		return first(
			r.idRule("id", u.ID),
			r.usernameRule(u.Username),
		)
	})
}

// ValidateUserPatch checks only the provided fields.
func (r *Ruleset) ValidateUserPatch(p model.UserPatch) string {
	return guard(func() string {
		if p.Username != nil {
			return r.usernameRule(*p.Username)
		}
		return Pass
	})
}

// ValidateOrder checks a full Order. Only the id formats are checked; the
// one-order-per-user rule is enforced as a write-time uniqueness
// constraint, not a field rule.
func (r *Ruleset) ValidateOrder(o *model.Order) string {
	return guard(func() string {
		if o == nil {
			return falsy("order")
		}
		return first(
			r.idRule("id", o.ID),
			r.idRule("userId", o.UserID),
		)
	})
}

// ValidateOrderPatch checks only the provided fields.
func (r *Ruleset) ValidateOrderPatch(p model.OrderPatch) string {
	return guard(func() string {
		if p.UserID != nil {
			return r.idRule("userId", *p.UserID)
		}
		return Pass
	})
}

// ValidateProduct checks a full Product.
func (r *Ruleset) ValidateProduct(p *model.Product) string {
	return guard(func() string {
		if p == nil {
			return falsy("product")
		}
		if v := first(
			r.idRule("id", p.ID),
			uuidRule("merchandiseId", p.MerchandiseID),
			requireText("name", p.Name),
		); v != Pass {
			return v
		}
		if p.Quantity < 0 {
			return "Failed validation: quantity must be non-negative"
		}
		if p.Price < 0 {
			return "Failed validation: price must be non-negative"
		}
		return Pass
	})
}

// ValidateProductPatch checks only the provided fields.
func (r *Ruleset) ValidateProductPatch(p model.ProductPatch) string {
	return guard(func() string {
		if p.MerchandiseID != nil {
			if v := uuidRule("merchandiseId", *p.MerchandiseID); v != Pass {
				return v
			}
		}
		if p.Name != nil {
			if v := requireText("name", *p.Name); v != Pass {
				return v
			}
		}
		if p.Quantity != nil && *p.Quantity < 0 {
			return "Failed validation: quantity must be non-negative"
		}
		if p.Price != nil && *p.Price < 0 {
			return "Failed validation: price must be non-negative"
		}
		return Pass
	})
}

// ValidateOrderXProduct checks a full junction row. QuantityToBuy must be
// positive; a zero-quantity order line is meaningless.
func (r *Ruleset) ValidateOrderXProduct(j *model.OrderXProduct) string {
	return guard(func() string {
		if j == nil {
			return falsy("orderXProduct")
		}
		if v := first(
			r.idRule("id", j.ID),
			r.idRule("orderId", j.OrderID),
			r.idRule("productId", j.ProductID),
		); v != Pass {
			return v
		}
		if j.QuantityToBuy <= 0 {
			return "Failed validation: quantityToBuy must be positive"
		}
		return Pass
	})
}

// ValidateOrderXProductPatch checks only the provided fields.
func (r *Ruleset) ValidateOrderXProductPatch(p model.OrderXProductPatch) string {
	return guard(func() string {
		if p.OrderID != nil {
			if v := r.idRule("orderId", *p.OrderID); v != Pass {
				return v
			}
		}
		if p.ProductID != nil {
			if v := r.idRule("productId", *p.ProductID); v != Pass {
				return v
			}
		}
		if p.QuantityToBuy != nil && *p.QuantityToBuy <= 0 {
			return "Failed validation: quantityToBuy must be positive"
		}
		return Pass
	})
}
