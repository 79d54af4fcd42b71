package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// bookingDateField is the dedicated booking-date rule's target: any DATE
// field with this exact name may not resolve to a calendar date earlier than
// the current date.
const bookingDateField = "booking_date"

// timeNow is swapped out by tests.
var timeNow = time.Now

// ValidateTab checks one tab's proposed values before they are persisted.
//
// Only fields currently visible to the role are validated; invisible fields
// are skipped entirely so conditional fields may hold leftover data without
// blocking a save. All failures are collected in one pass and returned
// together as a *ValidationError; nil means the tab may be persisted.
//
// formData supplies the rest of the submission's data for cross-screen
// conditional lookups; the proposed values take precedence for same-screen
// lookups so visibility reflects what the user is about to save.
func ValidateTab(screen *models.ScreenDefinition, values models.ScreenData, role models.Role, formData models.FormData) error {
	scoped := overlayScreen(formData, screen.Code, values)

	var errs []FieldError
	for i := range screen.Fields {
		field := &screen.Fields[i]
		if !IsVisible(field, screen.Code, role, scoped) {
			continue
		}
		if fe := validateField(field, models.ValueString(values[field.Name])); fe != nil {
			errs = append(errs, *fe)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// validateField applies the per-field rules to a stringified value.
// Returns nil when the value passes.
func validateField(field *models.FieldDefinition, value string) *FieldError {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		if field.IsRequired {
			return &FieldError{Field: field.Name, Message: field.Label + " is required"}
		}
		return nil
	}

	if field.ValidationRegex != "" {
		// A regex that fails to compile is administrator misconfiguration;
		// it degrades to "no pattern check" rather than blocking the save.
		if re, err := regexp.Compile(field.ValidationRegex); err == nil && !re.MatchString(trimmed) {
			return &FieldError{Field: field.Name, Message: validationMessage(field)}
		}
	}

	switch field.Type {
	case models.FieldTypeNumber:
		if fe := validateNumber(field, trimmed); fe != nil {
			return fe
		}
	case models.FieldTypeDate:
		if fe := validateDate(field, trimmed); fe != nil {
			return fe
		}
	default:
		if fe := validateLength(field, trimmed); fe != nil {
			return fe
		}
	}
	return nil
}

func validateNumber(field *models.FieldDefinition, value string) *FieldError {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return &FieldError{Field: field.Name, Message: validationMessage(field)}
	}
	if field.MinValue != nil && n < *field.MinValue {
		return &FieldError{Field: field.Name,
			Message: fmt.Sprintf("%s must be at least %v", field.Label, *field.MinValue)}
	}
	if field.MaxValue != nil && n > *field.MaxValue {
		return &FieldError{Field: field.Name,
			Message: fmt.Sprintf("%s must be at most %v", field.Label, *field.MaxValue)}
	}
	return nil
}

func validateLength(field *models.FieldDefinition, value string) *FieldError {
	if field.MinLength != nil && len(value) < *field.MinLength {
		return &FieldError{Field: field.Name,
			Message: fmt.Sprintf("%s must be at least %d characters", field.Label, *field.MinLength)}
	}
	if field.MaxLength != nil && len(value) > *field.MaxLength {
		return &FieldError{Field: field.Name,
			Message: fmt.Sprintf("%s must be at most %d characters", field.Label, *field.MaxLength)}
	}
	return nil
}

// validateDate enforces the booking-date rule: the booking date may not fall
// before today. Unparseable dates fail with the field's validation message.
func validateDate(field *models.FieldDefinition, value string) *FieldError {
	if field.Name != bookingDateField {
		return nil
	}
	parsed, err := parseDate(value)
	if err != nil {
		return &FieldError{Field: field.Name, Message: validationMessage(field)}
	}
	now := timeNow()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, parsed.Location())
	if parsed.Before(today) {
		return &FieldError{Field: field.Name, Message: validationMessage(field)}
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// validationMessage prefers the administrator-authored message, falling back
// to a generic one naming the field.
func validationMessage(field *models.FieldDefinition) string {
	if field.ValidationMessage != "" {
		return field.ValidationMessage
	}
	return field.Label + " is invalid"
}

// overlayScreen returns form data where the given screen's values are
// replaced by the proposed ones, leaving every other screen untouched. The
// receiver is not mutated.
func overlayScreen(formData models.FormData, screenCode string, values models.ScreenData) models.FormData {
	scoped := make(models.FormData, len(formData)+1)
	for code, sd := range formData {
		scoped[code] = sd
	}
	scoped[screenCode] = values
	return scoped
}
