package workflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// Storage is the persistence collaborator the engine drives. Implementations
// must make each call atomic: partial writes (tab data saved but status not
// advanced, or a status change without its audit record) must not occur.
type Storage interface {
	// LoadSubmission returns the submission or a *NotFoundError.
	LoadSubmission(ctx context.Context, id string) (*models.Submission, error)

	// CreateSubmission persists a brand new submission.
	CreateSubmission(ctx context.Context, sub *models.Submission) error

	// SaveSubmission persists form data and tab pointer changes.
	SaveSubmission(ctx context.Context, sub *models.Submission) error

	// CommitTransition applies a status change guarded by an optimistic
	// expected-status check, writing the approval record (when non-nil) in
	// the same transaction. Returns *InvalidTransitionError when the stored
	// status no longer matches expected.
	CommitTransition(ctx context.Context, sub *models.Submission, expected models.SubmissionStatus, record *models.ApprovalRecord) error

	// DeleteSubmission removes a submission and its dependent rows.
	DeleteSubmission(ctx context.Context, id string) error

	// LoadFlowWithScreens returns the fully hydrated flow definition
	// (screens, fields, options, branch grants) or a *NotFoundError.
	LoadFlowWithScreens(ctx context.Context, flowID string) (*models.FlowDefinition, error)
}

// HistoryRecorder receives timeline events. Recording is fire-and-forget:
// implementations must not block the operation and the engine ignores their
// failures.
type HistoryRecorder interface {
	Record(ctx context.Context, event models.HistoryEvent)
}

// Engine orchestrates the submission lifecycle over the Storage collaborator.
// It holds no per-submission state; concurrent edits are resolved by the
// storage layer's atomic update semantics plus the optimistic status check on
// every transition.
type Engine struct {
	storage Storage
	history HistoryRecorder // optional
	log     zerolog.Logger
}

// NewEngine creates a workflow engine. history may be nil.
func NewEngine(storage Storage, history HistoryRecorder, log zerolog.Logger) *Engine {
	return &Engine{storage: storage, history: history, log: log}
}

// ── Submission lifecycle ────────────────────────────────────────────────────

// CreateSubmission starts a new DRAFT submission of the flow for the actor.
// The flow must be active and granted to the actor's branch and role.
func (e *Engine) CreateSubmission(ctx context.Context, actor models.Actor, flowID string) (*models.Submission, error) {
	flow, err := e.storage.LoadFlowWithScreens(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if !flow.IsActive {
		return nil, &NotFoundError{Kind: "flow", ID: flowID}
	}
	if !flow.AccessibleBy(actor.BranchID, actor.Role) || actor.Role == models.RoleViewer {
		return nil, &ForbiddenError{Action: "start flow", Role: actor.Role}
	}

	now := time.Now()
	sub := &models.Submission{
		ID:              uuid.New().String(),
		FlowID:          flow.ID,
		BranchID:        actor.BranchID,
		UserID:          actor.UserID,
		Status:          models.StatusDraft,
		CurrentTabIndex: -1, // nothing saved yet
		FormData:        models.FormData{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.storage.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	e.emit(ctx, sub.ID, models.EventCreated, actor.UserID, flow.Name)
	return sub, nil
}

// GetSubmission loads a submission the actor is allowed to see.
func (e *Engine) GetSubmission(ctx context.Context, actor models.Actor, id string) (*models.Submission, *models.FlowDefinition, error) {
	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !canView(actor, sub) {
		return nil, nil, &ForbiddenError{Action: "view submission", Role: actor.Role}
	}
	flow, err := e.storage.LoadFlowWithScreens(ctx, sub.FlowID)
	if err != nil {
		return nil, nil, err
	}
	return sub, flow, nil
}

// SaveTab validates and persists one tab's values, advancing the progressive
// save pointer. Values for fields hidden at save time are preserved from the
// previously stored data; keys that are not field names of the screen are
// dropped.
func (e *Engine) SaveTab(ctx context.Context, actor models.Actor, id string, tabIndex int, values models.ScreenData) (*models.Submission, error) {
	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	flow, err := e.storage.LoadFlowWithScreens(ctx, sub.FlowID)
	if err != nil {
		return nil, err
	}
	tab := flow.TabAt(tabIndex)
	if tab == nil || tab.Screen == nil {
		return nil, &NotFoundError{Kind: "tab", ID: tab2id(id, tabIndex)}
	}
	screen := tab.Screen

	if !canMutate(actor, sub) {
		return nil, &ForbiddenError{Action: "edit submission", Role: actor.Role}
	}
	if !CanEditScreen(screen, actor.Role, sub.Status) {
		return nil, &ForbiddenError{Action: "edit submission", Role: actor.Role}
	}
	if !CanAccessTab(sub, flow, tabIndex) {
		return nil, &ForbiddenError{Action: "skip ahead to an unsaved tab", Role: actor.Role}
	}

	if err := ValidateTab(screen, values, actor.Role, sub.FormData); err != nil {
		return nil, err
	}

	sub.FormData[screen.Code] = mergeTabValues(screen, values, sub.ScreenValues(screen.Code), actor.Role, sub.Status, sub.FormData)
	if tabIndex > sub.CurrentTabIndex {
		sub.CurrentTabIndex = tabIndex
	}
	sub.UpdatedAt = time.Now()

	if err := e.storage.SaveSubmission(ctx, sub); err != nil {
		return nil, err
	}

	e.emit(ctx, sub.ID, models.EventTabSaved, actor.UserID, tab.TabName)
	return sub, nil
}

// Submit moves a DRAFT or REJECTED submission to its first approval gate, or
// straight to APPROVED when no screen in the flow requires approval. The
// routing is recomputed on every submit because the flow's flags may have
// changed since a rejection.
func (e *Engine) Submit(ctx context.Context, actor models.Actor, id string) (*models.Submission, error) {
	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(actor, sub) {
		return nil, &ForbiddenError{Action: "submit submission", Role: actor.Role}
	}
	if !sub.Status.EditWindowOpen() {
		return nil, &InvalidTransitionError{SubmissionID: id, Status: sub.Status, Action: "submit"}
	}

	flow, err := e.storage.LoadFlowWithScreens(ctx, sub.FlowID)
	if err != nil {
		return nil, err
	}

	// The final fillable tab must pass validation before routing runs.
	if idx := flow.FinalFillableTab(); idx >= 0 {
		screen := flow.TabAt(idx).Screen
		if err := ValidateTab(screen, sub.ScreenValues(screen.Code), actor.Role, sub.FormData); err != nil {
			return nil, err
		}
	}

	resubmission := sub.Status == models.StatusRejected
	route := ComputeRoute(flow)

	expected := sub.Status
	sub.Status = route.FirstStatus()
	if route.NeedsInsurance {
		sub.SetInsuranceStatus(models.InsurancePending)
	} else {
		sub.InsuranceApprovalStatus = nil
	}
	if sub.SubmittedAt == nil {
		now := time.Now()
		sub.SubmittedAt = &now
	}
	sub.UpdatedAt = time.Now()

	if err := e.storage.CommitTransition(ctx, sub, expected, nil); err != nil {
		return nil, err
	}

	event := models.EventSubmitted
	if resubmission {
		event = models.EventResubmitted
	}
	e.emit(ctx, sub.ID, event, actor.UserID, string(sub.Status))
	return sub, nil
}

// Approve resolves the gate currently awaiting action. Insurance approval
// advances to the manager gate when the flow has one, otherwise to APPROVED;
// manager approval always finalizes. The approval record commits atomically
// with the status change.
func (e *Engine) Approve(ctx context.Context, actor models.Actor, id string, gate models.ApprovalGate, comments string) (*models.Submission, error) {
	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkGate(sub, gate, actor, "approve"); err != nil {
		return nil, err
	}

	flow, err := e.storage.LoadFlowWithScreens(ctx, sub.FlowID)
	if err != nil {
		return nil, err
	}

	expected := sub.Status
	if gate == models.GateInsurance {
		sub.Status = ComputeRoute(flow).AfterInsuranceApproval()
		sub.SetInsuranceStatus(models.InsuranceApproved)
	} else {
		sub.Status = models.StatusApproved
	}
	sub.UpdatedAt = time.Now()

	record := newApprovalRecord(sub.ID, actor.UserID, gate, models.DecisionApproved, comments)
	if err := e.storage.CommitTransition(ctx, sub, expected, record); err != nil {
		return nil, err
	}

	e.emit(ctx, sub.ID, models.EventApproved, actor.UserID, string(gate))
	return sub, nil
}

// Reject resolves the awaiting gate negatively. Comments are mandatory. The
// submission becomes fully re-editable and must pass through Submit again;
// an insurance rejection never consults the manager gate.
func (e *Engine) Reject(ctx context.Context, actor models.Actor, id string, gate models.ApprovalGate, comments string) (*models.Submission, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, &ValidationError{Errors: []FieldError{
			{Field: "comments", Message: "comments are required to reject a submission"},
		}}
	}

	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkGate(sub, gate, actor, "reject"); err != nil {
		return nil, err
	}

	expected := sub.Status
	sub.Status = models.StatusRejected
	if gate == models.GateInsurance {
		sub.SetInsuranceStatus(models.InsuranceRejected)
	}
	sub.UpdatedAt = time.Now()

	record := newApprovalRecord(sub.ID, actor.UserID, gate, models.DecisionRejected, comments)
	if err := e.storage.CommitTransition(ctx, sub, expected, record); err != nil {
		return nil, err
	}

	e.emit(ctx, sub.ID, models.EventRejected, actor.UserID, string(gate))
	return sub, nil
}

// DeleteSubmission is the explicit administrative delete. Approved
// submissions are permanent records and can no longer be removed.
func (e *Engine) DeleteSubmission(ctx context.Context, actor models.Actor, id string) error {
	if actor.Role != models.RoleSuperadmin {
		return &ForbiddenError{Action: "delete submission", Role: actor.Role}
	}
	sub, err := e.storage.LoadSubmission(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == models.StatusApproved {
		return &InvalidTransitionError{SubmissionID: id, Status: sub.Status, Action: "delete"}
	}
	return e.storage.DeleteSubmission(ctx, id)
}

// ── Navigation ──────────────────────────────────────────────────────────────

// CanAccessTab gates forward navigation on save completion: a tab is
// reachable when its screen is a post-approval output screen (always
// previewable), when it has already been saved, or when it is the next tab
// after the highest saved one.
func CanAccessTab(sub *models.Submission, flow *models.FlowDefinition, tabIndex int) bool {
	tab := flow.TabAt(tabIndex)
	if tab == nil {
		return false
	}
	if tab.Screen != nil && tab.Screen.IsPostApproval {
		return true
	}
	return tabIndex <= sub.CurrentTabIndex+1
}

// Printable reports whether a post-approval output screen may be printed:
// only once the submission is fully approved. Preview access is unrestricted
// and not this function's concern.
func Printable(sub *models.Submission, screen *models.ScreenDefinition) bool {
	return screen != nil && screen.IsPostApproval && sub.Status == models.StatusApproved
}

// ── Internal helpers ────────────────────────────────────────────────────────

// mergeTabValues builds the screen data to persist: submitted values win only
// for fields the role may both see and write, previously stored values survive
// for hidden or read-only fields, and keys that are not field names of the
// screen are dropped. Visibility is evaluated against the proposed values so
// same-screen conditionals reflect what is being saved.
func mergeTabValues(screen *models.ScreenDefinition, values models.ScreenData, existing models.ScreenData, role models.Role, status models.SubmissionStatus, formData models.FormData) models.ScreenData {
	scoped := overlayScreen(formData, screen.Code, values)

	merged := models.ScreenData{}
	for i := range screen.Fields {
		field := &screen.Fields[i]
		if IsVisible(field, screen.Code, role, scoped) && IsEditable(field, screen, role, status) {
			if v, ok := values[field.Name]; ok {
				merged[field.Name] = v
			}
			continue
		}
		if v, ok := existing[field.Name]; ok {
			merged[field.Name] = v
		}
	}
	return merged
}

// canView implements read access: owners always, managers and viewers within
// their branch, insurance executives and superadmins everywhere.
func canView(actor models.Actor, sub *models.Submission) bool {
	switch actor.Role {
	case models.RoleSuperadmin, models.RoleInsuranceExecutive:
		return true
	case models.RoleManager, models.RoleViewer:
		return actor.BranchID == sub.BranchID
	case models.RoleAssociate:
		return actor.UserID == sub.UserID
	}
	return false
}

// canMutate implements write access: the filling associate, branch managers,
// superadmins, and the insurance executive (whose per-screen rights are
// narrowed further by CanEditScreen).
func canMutate(actor models.Actor, sub *models.Submission) bool {
	switch actor.Role {
	case models.RoleSuperadmin, models.RoleInsuranceExecutive:
		return true
	case models.RoleManager:
		return actor.BranchID == sub.BranchID
	case models.RoleAssociate:
		return actor.UserID == sub.UserID
	}
	return false
}

// checkGate verifies that the gate matches the status currently awaiting
// action and that the actor's role may resolve it. Order matters: a wrong
// gate is an InvalidTransition even for a role that could never resolve it,
// so probing with mismatched gates leaks nothing about permissions.
func checkGate(sub *models.Submission, gate models.ApprovalGate, actor models.Actor, action string) error {
	if !gate.Valid() {
		return &InvalidTransitionError{SubmissionID: sub.ID, Status: sub.Status, Action: action}
	}
	awaiting, ok := gateForStatus(sub.Status)
	if !ok || awaiting != gate {
		return &InvalidTransitionError{SubmissionID: sub.ID, Status: sub.Status, Action: action}
	}
	if !roleMayResolve(actor.Role, gate) {
		return &ForbiddenError{Action: action + " at the " + strings.ToLower(string(gate)) + " gate", Role: actor.Role}
	}
	return nil
}

func newApprovalRecord(submissionID, approverID string, gate models.ApprovalGate, decision models.ApprovalDecision, comments string) *models.ApprovalRecord {
	return &models.ApprovalRecord{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		ApproverID:   approverID,
		Gate:         gate,
		Decision:     decision,
		Comments:     comments,
		CreatedAt:    time.Now(),
	}
}

// emit records a history event, swallowing recorder absence. Failures inside
// the recorder are its own concern; the engine only logs the emission.
func (e *Engine) emit(ctx context.Context, submissionID string, event models.HistoryEventType, actorID, detail string) {
	if e.history == nil {
		return
	}
	e.history.Record(ctx, models.HistoryEvent{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		Type:         event,
		ActorID:      actorID,
		Detail:       detail,
		CreatedAt:    time.Now(),
	})
	e.log.Debug().Str("submission_id", submissionID).Str("event", string(event)).Msg("history event emitted")
}

func tab2id(submissionID string, tabIndex int) string {
	return submissionID + "#" + strconv.Itoa(tabIndex)
}
