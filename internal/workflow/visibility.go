package workflow

import (
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// IsVisible decides whether a field is shown to the given role under the
// submission's current form data. Pure function; no error conditions.
//
// The per-role visibility flag is checked first. If the field carries a
// conditional rule, the referenced value is resolved (cross-screen references
// look up the named screen's data, same-screen references use ownScreenCode)
// and the field is visible only while that value, lower-cased, is a member of
// the rule's allowed set. A missing or empty referenced value hides the
// field. Misconfigured rules (dangling reference, empty value list) can never
// match, so the field degrades to hidden and exempt from validation rather
// than blocking anyone.
func IsVisible(field *models.FieldDefinition, ownScreenCode string, role models.Role, formData models.FormData) bool {
	if !field.VisibleTo(role) {
		return false
	}

	rule := field.Rule()
	if rule == nil {
		return true
	}

	screenCode := ownScreenCode
	if rule.Ref.CrossScreen() {
		screenCode = rule.Ref.ScreenCode
	}
	return rule.Matches(formData.Value(screenCode, rule.Ref.FieldName))
}

// IsEditable decides whether a field accepts writes from the given role in
// the submission's current status. Pure function.
//
// The submission's overall edit window (DRAFT or REJECTED) gates everything,
// with one override: while a submission awaits insurance approval, the
// insurance executive may amend fields on the screen flagged
// requiresInsuranceApproval regardless of the per-field editable flags, so
// insurance-specific data can be corrected in place during review.
func IsEditable(field *models.FieldDefinition, screen *models.ScreenDefinition, role models.Role, status models.SubmissionStatus) bool {
	if insuranceOverride(screen, role, status) {
		return true
	}
	if !status.EditWindowOpen() {
		return false
	}
	return field.EditableBy(role)
}

// insuranceOverride reports whether the insurance in-place amendment rule
// applies: insurance executive, submission pending at the insurance gate, and
// the field's screen is the one requiring insurance approval.
func insuranceOverride(screen *models.ScreenDefinition, role models.Role, status models.SubmissionStatus) bool {
	return role == models.RoleInsuranceExecutive &&
		status == models.StatusPendingInsuranceApproval &&
		screen != nil && screen.RequiresInsuranceApproval
}

// CanEditScreen reports whether the role may write any values to the screen
// in the submission's current status. Used to reject tab saves outright
// before per-field resolution runs.
func CanEditScreen(screen *models.ScreenDefinition, role models.Role, status models.SubmissionStatus) bool {
	if insuranceOverride(screen, role, status) {
		return true
	}
	if !status.EditWindowOpen() {
		return false
	}
	switch role {
	case models.RoleManager, models.RoleAssociate, models.RoleSuperadmin:
		return true
	}
	return false
}
