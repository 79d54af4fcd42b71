package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

func flowWithFlags(insurance, manager bool) *models.FlowDefinition {
	return &models.FlowDefinition{
		FlowScreens: []models.FlowScreen{
			{TabOrder: 0, Screen: &models.ScreenDefinition{Code: "customer"}},
			{TabOrder: 1, Screen: &models.ScreenDefinition{Code: "insurance", RequiresInsuranceApproval: insurance}},
			{TabOrder: 2, Screen: &models.ScreenDefinition{Code: "payment", RequiresApproval: manager}},
		},
	}
}

func TestComputeRoute(t *testing.T) {
	tests := []struct {
		name      string
		insurance bool
		manager   bool
		first     models.SubmissionStatus
	}{
		{"no gates auto-approves", false, false, models.StatusApproved},
		{"manager gate only", false, true, models.StatusPendingManagerApproval},
		{"insurance gate only", true, false, models.StatusPendingInsuranceApproval},
		{"both gates route insurance first", true, true, models.StatusPendingInsuranceApproval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := ComputeRoute(flowWithFlags(tt.insurance, tt.manager))
			assert.Equal(t, tt.insurance, route.NeedsInsurance)
			assert.Equal(t, tt.manager, route.NeedsManager)
			assert.Equal(t, tt.first, route.FirstStatus())
		})
	}
}

func TestComputeRouteIsDeterministic(t *testing.T) {
	flow := flowWithFlags(true, true)
	first := ComputeRoute(flow)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ComputeRoute(flow))
	}
}

func TestAfterInsuranceApproval(t *testing.T) {
	both := Route{NeedsInsurance: true, NeedsManager: true}
	assert.Equal(t, models.StatusPendingManagerApproval, both.AfterInsuranceApproval())

	insuranceOnly := Route{NeedsInsurance: true}
	assert.Equal(t, models.StatusApproved, insuranceOnly.AfterInsuranceApproval())
}

func TestGateForStatus(t *testing.T) {
	gate, ok := gateForStatus(models.StatusPendingInsuranceApproval)
	assert.True(t, ok)
	assert.Equal(t, models.GateInsurance, gate)

	gate, ok = gateForStatus(models.StatusPendingManagerApproval)
	assert.True(t, ok)
	assert.Equal(t, models.GateManager, gate)

	_, ok = gateForStatus(models.StatusDraft)
	assert.False(t, ok)
	_, ok = gateForStatus(models.StatusApproved)
	assert.False(t, ok)
}

func TestRoleMayResolve(t *testing.T) {
	assert.True(t, roleMayResolve(models.RoleManager, models.GateManager))
	assert.False(t, roleMayResolve(models.RoleManager, models.GateInsurance))
	assert.True(t, roleMayResolve(models.RoleInsuranceExecutive, models.GateInsurance))
	assert.False(t, roleMayResolve(models.RoleInsuranceExecutive, models.GateManager))
	assert.True(t, roleMayResolve(models.RoleSuperadmin, models.GateManager))
	assert.True(t, roleMayResolve(models.RoleSuperadmin, models.GateInsurance))
	assert.False(t, roleMayResolve(models.RoleAssociate, models.GateManager))
	assert.False(t, roleMayResolve(models.RoleViewer, models.GateInsurance))
}
