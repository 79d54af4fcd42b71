package models

import "time"

// ApprovalGate identifies which approval checkpoint acted on a submission.
type ApprovalGate string

const (
	GateInsurance ApprovalGate = "INSURANCE"
	GateManager   ApprovalGate = "MANAGER"
)

// Valid reports whether g is a known gate.
func (g ApprovalGate) Valid() bool {
	return g == GateInsurance || g == GateManager
}

// ApprovalDecision is the outcome recorded when a gate is resolved.
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "APPROVED"
	DecisionRejected ApprovalDecision = "REJECTED"
)

// ApprovalRecord is one append-only audit entry produced each time an
// approval gate is resolved. Resubmission after rejection never deletes
// prior records; the trail accumulates across attempts.
//
// Database Table: approval_records
type ApprovalRecord struct {
	ID           string           `db:"id" json:"id"`
	SubmissionID string           `db:"submission_id" json:"submissionId"`
	ApproverID   string           `db:"approver_id" json:"approverId"`
	Gate         ApprovalGate     `db:"gate" json:"gate"`
	Decision     ApprovalDecision `db:"decision" json:"decision"`
	Comments     string           `db:"comments" json:"comments"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}

// HistoryEventType enumerates the timeline events the engine emits.
type HistoryEventType string

const (
	EventCreated     HistoryEventType = "CREATED"
	EventTabSaved    HistoryEventType = "TAB_SAVED"
	EventSubmitted   HistoryEventType = "SUBMITTED"
	EventApproved    HistoryEventType = "APPROVED"
	EventRejected    HistoryEventType = "REJECTED"
	EventResubmitted HistoryEventType = "RESUBMITTED"
)

// HistoryEvent is a discrete timeline entry for a submission. Emission is
// fire-and-forget from the engine's perspective: a failed history write never
// fails the operation that produced it.
//
// Database Table: submission_history
type HistoryEvent struct {
	ID           string           `db:"id" json:"id"`
	SubmissionID string           `db:"submission_id" json:"submissionId"`
	Type         HistoryEventType `db:"event_type" json:"type"`
	ActorID      string           `db:"actor_id" json:"actorId"`
	Detail       string           `db:"detail" json:"detail,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}
