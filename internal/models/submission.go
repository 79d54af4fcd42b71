package models

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionStatus is the submission state machine's state set.
//
// The canonical internal states are DRAFT, PENDING_INSURANCE_APPROVAL,
// PENDING_MANAGER_APPROVAL, APPROVED and REJECTED. Older clients send
// "PENDING_APPROVAL" for the single-gate manager state; ParseSubmissionStatus
// accepts it as an alias but the canonical name is always what gets stored
// and emitted.
type SubmissionStatus string

const (
	StatusDraft                    SubmissionStatus = "DRAFT"
	StatusPendingInsuranceApproval SubmissionStatus = "PENDING_INSURANCE_APPROVAL"
	StatusPendingManagerApproval   SubmissionStatus = "PENDING_MANAGER_APPROVAL"
	StatusApproved                 SubmissionStatus = "APPROVED"
	StatusRejected                 SubmissionStatus = "REJECTED"

	// statusPendingApprovalAlias is the legacy external label for
	// PENDING_MANAGER_APPROVAL, kept for older clients.
	statusPendingApprovalAlias = "PENDING_APPROVAL"
)

// ParseSubmissionStatus normalizes a stored or submitted status string,
// mapping the legacy PENDING_APPROVAL alias onto the canonical manager state.
func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == statusPendingApprovalAlias {
		return StatusPendingManagerApproval, true
	}
	switch SubmissionStatus(v) {
	case StatusDraft, StatusPendingInsuranceApproval, StatusPendingManagerApproval,
		StatusApproved, StatusRejected:
		return SubmissionStatus(v), true
	}
	return "", false
}

// IsPending reports whether the submission is waiting at an approval gate.
func (s SubmissionStatus) IsPending() bool {
	return s == StatusPendingInsuranceApproval || s == StatusPendingManagerApproval
}

// EditWindowOpen reports whether the submission is freely editable by its
// filling user. Rejected submissions are treated like drafts so the user can
// correct and resubmit.
func (s SubmissionStatus) EditWindowOpen() bool {
	return s == StatusDraft || s == StatusRejected
}

// InsuranceStatus tracks the insurance gate's outcome independently of the
// overall submission status.
type InsuranceStatus string

const (
	InsurancePending  InsuranceStatus = "PENDING"
	InsuranceApproved InsuranceStatus = "APPROVED"
	InsuranceRejected InsuranceStatus = "REJECTED"
)

// ScreenData holds one screen's field values keyed by field name.
// Values are whatever JSON the client submitted (strings for most field
// types, arrays for MULTISELECT); an absent key means the field is unset.
type ScreenData map[string]any

// FormData maps screen codes to their saved screen data.
type FormData map[string]ScreenData

// Screen returns the data saved for a screen code, matching the code
// case-insensitively (screen codes in conditional references are
// administrator-typed and may differ in case from the stored key).
func (d FormData) Screen(code string) ScreenData {
	if sd, ok := d[code]; ok {
		return sd
	}
	for k, sd := range d {
		if strings.EqualFold(k, code) {
			return sd
		}
	}
	return nil
}

// Value resolves one field's saved value as a string, or "" when unset.
func (d FormData) Value(screenCode, fieldName string) string {
	sd := d.Screen(screenCode)
	if sd == nil {
		return ""
	}
	v, ok := sd[fieldName]
	if !ok {
		return ""
	}
	return ValueString(v)
}

// ValueString renders a saved form value for comparison and validation.
// Multi-value entries join with commas; nil renders empty.
func ValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, ValueString(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}

// Submission is one user's instance of filling out a flow: per-screen form
// data, the progressive-save tab pointer, and the approval state.
//
// CurrentTabIndex is the highest tab index known to be saved; -1 means no tab
// has been saved yet. It is submission-owned state so forward-navigation
// gating is enforced server-side.
//
// Database Table: submissions
type Submission struct {
	ID                      string           `db:"id" json:"id"`
	FlowID                  string           `db:"flow_id" json:"flowId"`
	BranchID                string           `db:"branch_id" json:"branchId"`
	UserID                  string           `db:"user_id" json:"userId"`
	Status                  SubmissionStatus `db:"status" json:"status"`
	CurrentTabIndex         int              `db:"current_tab_index" json:"currentTabIndex"`
	FormData                FormData         `db:"form_data" json:"formData"`
	InsuranceApprovalStatus *InsuranceStatus `db:"insurance_approval_status" json:"insuranceApprovalStatus"`
	SubmittedAt             *time.Time       `db:"submitted_at" json:"submittedAt"`
	CreatedAt               time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt               time.Time        `db:"updated_at" json:"updatedAt"`
}

// ScreenValues returns the saved values for a screen code, never nil.
func (s *Submission) ScreenValues(code string) ScreenData {
	if sd := s.FormData.Screen(code); sd != nil {
		return sd
	}
	return ScreenData{}
}

// SetInsuranceStatus replaces the insurance gate status.
func (s *Submission) SetInsuranceStatus(st InsuranceStatus) {
	s.InsuranceApprovalStatus = &st
}
