package models

import "strings"

// FieldType enumerates the supported input types for a field definition.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextarea    FieldType = "TEXTAREA"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeEmail       FieldType = "EMAIL"
	FieldTypePhone       FieldType = "PHONE"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeDatetime    FieldType = "DATETIME"
	FieldTypeSelect      FieldType = "SELECT"
	FieldTypeMultiselect FieldType = "MULTISELECT"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeFile        FieldType = "FILE"
	FieldTypeImage       FieldType = "IMAGE"
)

// FieldOption is one selectable choice for SELECT/MULTISELECT/RADIO fields.
// Options keep their authored order.
type FieldOption struct {
	Value string `db:"value" json:"value"`
	Label string `db:"label" json:"label"`
}

// ConditionalRef is the parsed target of a conditional visibility rule.
// An empty ScreenCode means the referenced field lives on the same screen
// as the dependent field; otherwise it names another screen in the flow.
type ConditionalRef struct {
	ScreenCode string
	FieldName  string
}

// CrossScreen reports whether the reference points at another screen.
func (r ConditionalRef) CrossScreen() bool {
	return r.ScreenCode != ""
}

// ConditionalRule is a field's visibility rule, parsed once at flow load so
// evaluation never re-splits strings. The field is visible only while the
// referenced field holds one of AllowedValues (compared case-insensitively).
type ConditionalRule struct {
	Ref           ConditionalRef
	AllowedValues []string // trimmed, lower-cased, empty entries dropped
}

// ParseConditionalRule builds a ConditionalRule from the raw administrator-
// authored columns. Returns nil only when no reference is configured at all.
// A reference with an allowed-value list holding no usable entries keeps the
// rule, with an empty set that never matches: the misconfigured field stays
// hidden and therefore exempt from validation, rather than erroring, since
// screen definitions are authored by hand.
func ParseConditionalRule(conditionalField, conditionalValue string) *ConditionalRule {
	ref := strings.TrimSpace(conditionalField)
	if ref == "" {
		return nil
	}

	rule := &ConditionalRule{}
	// Cross-screen references use "<screenCode>.<fieldName>"; split on the
	// first dot only so field names containing dots keep working.
	if before, after, found := strings.Cut(ref, "."); found && strings.TrimSpace(before) != "" && strings.TrimSpace(after) != "" {
		rule.Ref = ConditionalRef{ScreenCode: strings.TrimSpace(before), FieldName: strings.TrimSpace(after)}
	} else {
		rule.Ref = ConditionalRef{FieldName: ref}
	}

	for _, v := range strings.Split(conditionalValue, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			rule.AllowedValues = append(rule.AllowedValues, v)
		}
	}
	return rule
}

// Matches reports whether the resolved referenced value satisfies the rule.
func (r *ConditionalRule) Matches(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}
	for _, allowed := range r.AllowedValues {
		if v == allowed {
			return true
		}
	}
	return false
}

// FieldDefinition describes one input of a screen: its type, constraints,
// choice options, conditional visibility rule, and the per-role permission
// matrix. Definitions are authored by administrators and are immutable while
// a submission is being filled (referenced by value, never copied).
//
// Database Table: field_definitions
type FieldDefinition struct {
	ID                string        `db:"id" json:"id"`
	ScreenID          string        `db:"screen_id" json:"screenId"`
	Name              string        `db:"name" json:"name"`   // Unique within its screen; key into form data
	Label             string        `db:"label" json:"label"` // Display label, also used in validation messages
	Type              FieldType     `db:"type" json:"type"`
	IsRequired        bool          `db:"is_required" json:"isRequired"`
	ValidationRegex   string        `db:"validation_regex" json:"validationRegex,omitempty"`
	ValidationMessage string        `db:"validation_message" json:"validationMessage,omitempty"`
	MinValue          *float64      `db:"min_value" json:"minValue,omitempty"`
	MaxValue          *float64      `db:"max_value" json:"maxValue,omitempty"`
	MinLength         *int          `db:"min_length" json:"minLength,omitempty"`
	MaxLength         *int          `db:"max_length" json:"maxLength,omitempty"`
	Options           []FieldOption `db:"-" json:"options,omitempty"`
	ConditionalField  string        `db:"conditional_field" json:"conditionalField,omitempty"`
	ConditionalValue  string        `db:"conditional_value" json:"conditionalValue,omitempty"`
	SortOrder         int           `db:"sort_order" json:"sortOrder"`

	// Per-role permission matrix. Manager/associate/viewer each get an
	// independent visible and editable flag.
	VisibleToManager    bool `db:"visible_to_manager" json:"visibleToManager"`
	VisibleToAssociate  bool `db:"visible_to_associate" json:"visibleToAssociate"`
	VisibleToViewer     bool `db:"visible_to_viewer" json:"visibleToViewer"`
	EditableByManager   bool `db:"editable_by_manager" json:"editableByManager"`
	EditableByAssociate bool `db:"editable_by_associate" json:"editableByAssociate"`
	EditableByViewer    bool `db:"editable_by_viewer" json:"editableByViewer"`

	// Conditional is the parsed form of ConditionalField/ConditionalValue,
	// populated once when the flow is loaded.
	Conditional *ConditionalRule `db:"-" json:"-"`
}

// Rule returns the field's parsed conditional rule, parsing the raw columns
// lazily when the loader did not populate it. Nil means "always visible"
// (subject to the role flag).
func (f *FieldDefinition) Rule() *ConditionalRule {
	if f.Conditional != nil {
		return f.Conditional
	}
	if f.ConditionalField == "" {
		return nil
	}
	f.Conditional = ParseConditionalRule(f.ConditionalField, f.ConditionalValue)
	return f.Conditional
}

// VisibleTo resolves the per-role visibility flag.
// INSURANCE_EXECUTIVE shares the manager flags; SUPERADMIN always sees the
// field (conditional rules still apply on top of this flag).
func (f *FieldDefinition) VisibleTo(role Role) bool {
	switch role {
	case RoleManager, RoleInsuranceExecutive:
		return f.VisibleToManager
	case RoleAssociate:
		return f.VisibleToAssociate
	case RoleViewer:
		return f.VisibleToViewer
	case RoleSuperadmin:
		return true
	}
	return false
}

// EditableBy resolves the per-role editable flag. The overall edit window and
// the insurance override are the workflow engine's concern; this only answers
// the static flag question.
func (f *FieldDefinition) EditableBy(role Role) bool {
	switch role {
	case RoleManager, RoleInsuranceExecutive:
		return f.EditableByManager
	case RoleAssociate:
		return f.EditableByAssociate
	case RoleViewer:
		return f.EditableByViewer
	case RoleSuperadmin:
		return true
	}
	return false
}
