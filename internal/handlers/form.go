package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/automation"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/middleware"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// FormHandler exposes the submission lifecycle: starting a flow, saving tabs,
// submitting, and resolving approval gates.
type FormHandler struct {
	engine       *workflow.Engine
	store        *repository.Store
	approvalRepo *repository.ApprovalRepository
	historyRepo  *repository.HistoryRepository
	automation   *automation.Client // nil when the integration is disabled
	log          zerolog.Logger
}

// NewFormHandler creates a FormHandler.
func NewFormHandler(engine *workflow.Engine, store *repository.Store, historyRepo *repository.HistoryRepository, auto *automation.Client, log zerolog.Logger) *FormHandler {
	return &FormHandler{
		engine:       engine,
		store:        store,
		approvalRepo: repository.NewApprovalRepository(),
		historyRepo:  historyRepo,
		automation:   auto,
		log:          log,
	}
}

// ListFlows returns the active flows the actor's branch and role may start.
func (h *FormHandler) ListFlows(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	flows, err := h.store.Flows.ListActive(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	accessible := make([]models.FlowDefinition, 0, len(flows))
	for _, f := range flows {
		if f.AccessibleBy(actor.BranchID, actor.Role) {
			accessible = append(accessible, f)
		}
	}
	return c.JSON(accessible)
}

// GetFlow returns one hydrated flow definition for rendering the form.
func (h *FormHandler) GetFlow(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	flow, err := h.store.LoadFlowWithScreens(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !flow.AccessibleBy(actor.BranchID, actor.Role) {
		return respondError(c, &workflow.ForbiddenError{Action: "view flow", Role: actor.Role})
	}
	return c.JSON(flow)
}

type createSubmissionRequest struct {
	FlowID string `json:"flowId"`
}

// CreateSubmission starts a new DRAFT submission of a flow.
func (h *FormHandler) CreateSubmission(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	var req createSubmissionRequest
	if err := c.BodyParser(&req); err != nil || req.FlowID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "flowId is required")
	}

	sub, err := h.engine.CreateSubmission(c.Context(), actor, req.FlowID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// tabView describes one tab's navigability for the current submission state.
type tabView struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	ScreenCode     string `json:"screenCode"`
	IsPostApproval bool   `json:"isPostApproval"`
	Accessible     bool   `json:"accessible"`
	Printable      bool   `json:"printable"`
}

// GetSubmission returns the submission plus per-tab navigation state.
func (h *FormHandler) GetSubmission(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	sub, flow, err := h.engine.GetSubmission(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	tabs := make([]tabView, 0, flow.TabCount())
	for i := 0; i < flow.TabCount(); i++ {
		tab := flow.TabAt(i)
		tabs = append(tabs, tabView{
			Index:          i,
			Name:           tab.TabName,
			ScreenCode:     tab.Screen.Code,
			IsPostApproval: tab.Screen.IsPostApproval,
			Accessible:     workflow.CanAccessTab(sub, flow, i),
			Printable:      workflow.Printable(sub, tab.Screen),
		})
	}

	return c.JSON(fiber.Map{
		"submission": sub,
		"tabs":       tabs,
	})
}

// MySubmissions lists the actor's own submissions.
func (h *FormHandler) MySubmissions(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	subs, err := h.store.Submissions.ListByUser(c.Context(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}

type saveTabRequest struct {
	Values models.ScreenData `json:"values"`
}

// SaveTab validates and persists one tab's values.
func (h *FormHandler) SaveTab(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	tabIndex, err := strconv.Atoi(c.Params("tab"))
	if err != nil || tabIndex < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid tab index")
	}

	var req saveTabRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Values == nil {
		req.Values = models.ScreenData{}
	}

	sub, err := h.engine.SaveTab(c.Context(), actor, c.Params("id"), tabIndex, req.Values)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// Submit routes a completed draft to its first approval gate (or straight to
// approved for flows with no gates).
func (h *FormHandler) Submit(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	sub, err := h.engine.Submit(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	// Gate-less flows finalize immediately; push them to automation now.
	if sub.Status == models.StatusApproved {
		h.automation.NotifyApproved(sub)
	}
	return c.JSON(sub)
}

type decisionRequest struct {
	Gate     models.ApprovalGate `json:"gate"`
	Comments string              `json:"comments"`
}

// Approve resolves the awaiting gate positively.
func (h *FormHandler) Approve(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	var req decisionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sub, err := h.engine.Approve(c.Context(), actor, c.Params("id"), req.Gate, req.Comments)
	if err != nil {
		return respondError(c, err)
	}

	if sub.Status == models.StatusApproved {
		h.automation.NotifyApproved(sub)
	}
	return c.JSON(sub)
}

// Reject resolves the awaiting gate negatively; comments are mandatory.
func (h *FormHandler) Reject(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	var req decisionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sub, err := h.engine.Reject(c.Context(), actor, c.Params("id"), req.Gate, req.Comments)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// PendingApprovals lists the submissions awaiting the actor's gate.
func (h *FormHandler) PendingApprovals(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	var gate models.ApprovalGate
	switch actor.Role {
	case models.RoleInsuranceExecutive:
		gate = models.GateInsurance
	case models.RoleManager, models.RoleSuperadmin:
		gate = models.GateManager
	default:
		return respondError(c, &workflow.ForbiddenError{Action: "list pending approvals", Role: actor.Role})
	}
	// Superadmins may inspect either queue explicitly.
	if actor.Role == models.RoleSuperadmin {
		if g := models.ApprovalGate(c.Query("gate")); g.Valid() {
			gate = g
		}
	}

	subs, err := h.store.Submissions.ListPendingForGate(c.Context(), gate)
	if err != nil {
		return respondError(c, err)
	}

	// Managers only see their own branch's queue.
	if actor.Role == models.RoleManager {
		filtered := subs[:0]
		for _, s := range subs {
			if s.BranchID == actor.BranchID {
				filtered = append(filtered, s)
			}
		}
		subs = filtered
	}
	return c.JSON(subs)
}

// Approvals returns the append-only audit trail for a submission.
func (h *FormHandler) Approvals(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	// Reuse the engine's read permission check.
	if _, _, err := h.engine.GetSubmission(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	records, err := h.approvalRepo.ListBySubmission(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}

// History returns the submission's event timeline.
func (h *FormHandler) History(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	if _, _, err := h.engine.GetSubmission(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	events, err := h.historyRepo.ListBySubmission(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(events)
}
