package workflow

import (
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// Route is the approval routing computed once at submit time from the union
// of approval flags across the flow's screens.
type Route struct {
	NeedsInsurance bool
	NeedsManager   bool
}

// ComputeRoute derives the routing from a flow's screen flags.
// Pure function: the same flow composition always produces the same route.
func ComputeRoute(flow *models.FlowDefinition) Route {
	return Route{
		NeedsInsurance: flow.HasInsuranceGate(),
		NeedsManager:   flow.HasManagerGate(),
	}
}

// FirstStatus returns the status a fresh submit transitions to:
// no gates auto-approves, the insurance gate always goes first when present,
// otherwise the manager gate.
func (r Route) FirstStatus() models.SubmissionStatus {
	switch {
	case r.NeedsInsurance:
		return models.StatusPendingInsuranceApproval
	case r.NeedsManager:
		return models.StatusPendingManagerApproval
	default:
		return models.StatusApproved
	}
}

// AfterInsuranceApproval returns the status following a successful insurance
// gate: on to the manager gate when one exists, otherwise fully approved.
func (r Route) AfterInsuranceApproval() models.SubmissionStatus {
	if r.NeedsManager {
		return models.StatusPendingManagerApproval
	}
	return models.StatusApproved
}

// gateForStatus maps a pending status to the gate awaiting action.
func gateForStatus(status models.SubmissionStatus) (models.ApprovalGate, bool) {
	switch status {
	case models.StatusPendingInsuranceApproval:
		return models.GateInsurance, true
	case models.StatusPendingManagerApproval:
		return models.GateManager, true
	}
	return "", false
}

// roleMayResolve reports whether the role may resolve the given gate.
// Superadmin may act on either gate.
func roleMayResolve(role models.Role, gate models.ApprovalGate) bool {
	if role == models.RoleSuperadmin {
		return true
	}
	switch gate {
	case models.GateInsurance:
		return role == models.RoleInsuranceExecutive
	case models.GateManager:
		return role == models.RoleManager
	}
	return false
}
