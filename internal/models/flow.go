package models

import (
	"strings"
	"time"
)

// FlowScreen places one screen inside a flow as a tab.
// TabOrder values are dense, ascending, and unique per flow, so a fully
// hydrated flow's FlowScreens slice index equals the tab index.
type FlowScreen struct {
	ID       string `db:"id" json:"id"`
	FlowID   string `db:"flow_id" json:"flowId"`
	ScreenID string `db:"screen_id" json:"screenId"`
	TabOrder int    `db:"tab_order" json:"tabOrder"`
	TabName  string `db:"tab_name" json:"tabName"`

	// Screen is hydrated by the flow loader together with its fields.
	Screen *ScreenDefinition `db:"-" json:"screen,omitempty"`
}

// BranchAssignment grants a branch access to a flow, per role.
// INSURANCE_EXECUTIVE and SUPERADMIN are not branch-gated.
type BranchAssignment struct {
	ID              string `db:"id" json:"id"`
	FlowID          string `db:"flow_id" json:"flowId"`
	BranchID        string `db:"branch_id" json:"branchId"`
	ManagerAccess   bool   `db:"manager_access" json:"managerAccess"`
	AssociateAccess bool   `db:"associate_access" json:"associateAccess"`
	ViewerAccess    bool   `db:"viewer_access" json:"viewerAccess"`
}

// FlowDefinition is an ordered composition of screens ("tabs") forming one
// complete submittable form, plus the branch/role grants controlling who may
// start it.
//
// Database Table: flow_definitions
type FlowDefinition struct {
	ID                string             `db:"id" json:"id"`
	Name              string             `db:"name" json:"name"`
	Description       string             `db:"description" json:"description,omitempty"`
	IsActive          bool               `db:"is_active" json:"isActive"`
	FlowScreens       []FlowScreen       `db:"-" json:"flowScreens"`
	BranchAssignments []BranchAssignment `db:"-" json:"branchAssignments,omitempty"`
	CreatedAt         time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updatedAt"`
}

// TabCount returns the number of tabs in the flow.
func (f *FlowDefinition) TabCount() int {
	return len(f.FlowScreens)
}

// TabAt returns the flow screen at the given tab index, or nil when the index
// is out of range.
func (f *FlowDefinition) TabAt(index int) *FlowScreen {
	if index < 0 || index >= len(f.FlowScreens) {
		return nil
	}
	return &f.FlowScreens[index]
}

// ScreenByCode finds a hydrated screen by its code. Lookup is
// case-insensitive because conditional references are administrator-typed.
func (f *FlowDefinition) ScreenByCode(code string) *ScreenDefinition {
	for i := range f.FlowScreens {
		s := f.FlowScreens[i].Screen
		if s != nil && strings.EqualFold(s.Code, code) {
			return s
		}
	}
	return nil
}

// HasManagerGate reports whether any screen in the flow requires manager
// approval.
func (f *FlowDefinition) HasManagerGate() bool {
	for i := range f.FlowScreens {
		if s := f.FlowScreens[i].Screen; s != nil && s.RequiresApproval {
			return true
		}
	}
	return false
}

// HasInsuranceGate reports whether any screen in the flow requires insurance
// approval.
func (f *FlowDefinition) HasInsuranceGate() bool {
	for i := range f.FlowScreens {
		if s := f.FlowScreens[i].Screen; s != nil && s.RequiresInsuranceApproval {
			return true
		}
	}
	return false
}

// FinalFillableTab returns the index of the last tab whose screen is a real
// input screen. Post-approval output tabs sit at the end of a flow and are
// auto-populated, so submit-time validation targets the last fillable tab.
// Returns -1 when the flow has no fillable tabs.
func (f *FlowDefinition) FinalFillableTab() int {
	for i := len(f.FlowScreens) - 1; i >= 0; i-- {
		if s := f.FlowScreens[i].Screen; s != nil && !s.IsPostApproval {
			return i
		}
	}
	return -1
}

// AccessibleBy reports whether a user from the given branch with the given
// role may use this flow. INSURANCE_EXECUTIVE and SUPERADMIN bypass branch
// grants.
func (f *FlowDefinition) AccessibleBy(branchID string, role Role) bool {
	if role == RoleSuperadmin || role == RoleInsuranceExecutive {
		return true
	}
	for i := range f.BranchAssignments {
		a := &f.BranchAssignments[i]
		if a.BranchID != branchID {
			continue
		}
		switch role {
		case RoleManager:
			return a.ManagerAccess
		case RoleAssociate:
			return a.AssociateAccess
		case RoleViewer:
			return a.ViewerAccess
		}
	}
	return false
}
