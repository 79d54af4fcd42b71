// Package workflow implements the form submission and approval workflow
// engine: field visibility/editability resolution, per-tab validation, the
// submission state machine, approval gate routing, and tab navigation gating.
//
// The engine is request-scoped and stateless between calls. Every operation
// reads the current submission, computes a decision, and commits exactly one
// transition through the Storage collaborator; all checks run before any
// persistence call is made.
package workflow

import (
	"fmt"
	"strings"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// FieldError is one validation failure for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error found in one validation pass so
// callers can surface all problems at once. Recoverable: the user corrects
// the values and retries.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// InvalidTransitionError reports a status/gate mismatch: the requested action
// does not apply to the submission's current status. The action is rejected
// with no state change and no audit record.
type InvalidTransitionError struct {
	SubmissionID string
	Status       models.SubmissionStatus
	Action       string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s submission %s in status %s",
		e.Action, e.SubmissionID, e.Status)
}

// NotFoundError reports an unknown submission, flow, screen, or tab.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ForbiddenError reports that the acting role lacks permission for the
// requested action. Enforced before any mutation.
type ForbiddenError struct {
	Action string
	Role   models.Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %s is not permitted to %s", e.Role, e.Action)
}
