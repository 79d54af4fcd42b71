// Package models defines the domain entities and data transfer objects for the
// dealer automation platform: screen/flow definitions authored by administrators,
// submissions produced by end users, and the approval audit trail.
package models

import "strings"

// Role identifies the acting user's role within a branch.
// Roles are a closed set; free-form role strings are rejected at parse time.
type Role string

const (
	// RoleManager runs a branch and resolves the manager approval gate.
	RoleManager Role = "MANAGER"
	// RoleAssociate is the standard form-filling user.
	RoleAssociate Role = "ASSOCIATE"
	// RoleViewer has read-only access to submissions.
	RoleViewer Role = "VIEWER"
	// RoleInsuranceExecutive resolves the insurance approval gate and may amend
	// insurance screen data while a submission awaits insurance approval.
	RoleInsuranceExecutive Role = "INSURANCE_EXECUTIVE"
	// RoleSuperadmin bypasses per-field role flags and branch grants.
	RoleSuperadmin Role = "SUPERADMIN"
)

// ParseRole converts a stored or submitted role string into a Role.
// Matching is case-insensitive. Returns false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleManager:
		return RoleManager, true
	case RoleAssociate:
		return RoleAssociate, true
	case RoleViewer:
		return RoleViewer, true
	case RoleInsuranceExecutive:
		return RoleInsuranceExecutive, true
	case RoleSuperadmin:
		return RoleSuperadmin, true
	}
	return "", false
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Actor is the authenticated identity an operation runs as.
// Identity and branch membership are established by the auth middleware;
// the workflow engine trusts these values.
type Actor struct {
	UserID   string // User performing the action
	Role     Role   // Role within the branch
	BranchID string // Branch the user belongs to
}

// IsSuperadmin reports whether the actor bypasses role flag checks.
func (a Actor) IsSuperadmin() bool {
	return a.Role == RoleSuperadmin
}
