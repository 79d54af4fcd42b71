package models

import "time"

// ScreenDefinition is a reusable set of field definitions representing one
// logical form page. Screens are composed into flows as tabs; the same screen
// may appear in many flows.
//
// The three approval flags drive submission routing: a flow containing any
// screen with RequiresApproval needs the manager gate, any screen with
// RequiresInsuranceApproval needs the insurance gate, and IsPostApproval marks
// output-only screens (generated documents) that are previewable at any time
// but print-eligible only once the submission is fully approved.
//
// Database Table: screen_definitions
type ScreenDefinition struct {
	ID                        string            `db:"id" json:"id"`
	Code                      string            `db:"code" json:"code"` // Stable key namespacing the submission's per-screen data
	Name                      string            `db:"name" json:"name"`
	RequiresApproval          bool              `db:"requires_approval" json:"requiresApproval"`
	RequiresInsuranceApproval bool              `db:"requires_insurance_approval" json:"requiresInsuranceApproval"`
	IsPostApproval            bool              `db:"is_post_approval" json:"isPostApproval"`
	Fields                    []FieldDefinition `db:"-" json:"fields"`
	CreatedAt                 time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt                 time.Time         `db:"updated_at" json:"updatedAt"`
}

// FieldByName returns the field definition with the given name, or nil.
// Field names are stable keys, compared exactly.
func (s *ScreenDefinition) FieldByName(name string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
