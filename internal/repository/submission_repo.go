package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// SubmissionRepository handles persistence of submissions and their status
// transitions. Transitions commit the status change and the approval record
// in one transaction, guarded by an optimistic expected-status predicate so
// concurrent actions on the same submission cannot double-fire a gate.
type SubmissionRepository struct{}

// NewSubmissionRepository creates a SubmissionRepository.
func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{}
}

// Create inserts a brand new submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	_, err := database.DB.Exec(ctx, `
        INSERT INTO submissions
            (id, flow_id, branch_id, user_id, status, current_tab_index,
             form_data, insurance_approval_status, submitted_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, sub.ID, sub.FlowID, sub.BranchID, sub.UserID, string(sub.Status), sub.CurrentTabIndex,
		sub.FormData, insuranceStatusValue(sub.InsuranceApprovalStatus),
		sub.SubmittedAt, sub.CreatedAt, sub.UpdatedAt)
	return err
}

// GetByID loads one submission, returning *workflow.NotFoundError when the
// id is unknown.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	sub := &models.Submission{}
	var status string
	var insurance *string
	err := database.DB.QueryRow(ctx, `
        SELECT id, flow_id, branch_id, user_id, status, current_tab_index,
               form_data, insurance_approval_status, submitted_at, created_at, updated_at
        FROM submissions
        WHERE id = $1
    `, id).Scan(&sub.ID, &sub.FlowID, &sub.BranchID, &sub.UserID, &status, &sub.CurrentTabIndex,
		&sub.FormData, &insurance, &sub.SubmittedAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &workflow.NotFoundError{Kind: "submission", ID: id}
		}
		return nil, err
	}

	sub.Status, _ = models.ParseSubmissionStatus(status)
	if insurance != nil {
		sub.SetInsuranceStatus(models.InsuranceStatus(*insurance))
	}
	if sub.FormData == nil {
		sub.FormData = models.FormData{}
	}
	return sub, nil
}

// Save persists form data and tab pointer changes in a single statement.
func (r *SubmissionRepository) Save(ctx context.Context, sub *models.Submission) error {
	tag, err := database.DB.Exec(ctx, `
        UPDATE submissions
        SET form_data = $2, current_tab_index = $3, updated_at = $4
        WHERE id = $1
    `, sub.ID, sub.FormData, sub.CurrentTabIndex, sub.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.NotFoundError{Kind: "submission", ID: sub.ID}
	}
	return nil
}

// CommitTransition applies a status change with an optimistic guard: the
// UPDATE only matches while the stored status still equals expected. When the
// guard misses (another caller transitioned first), nothing is written and a
// *workflow.InvalidTransitionError comes back. The approval record, when
// present, is inserted in the same transaction.
func (r *SubmissionRepository) CommitTransition(ctx context.Context, sub *models.Submission, expected models.SubmissionStatus, record *models.ApprovalRecord) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE submissions
        SET status = $2, insurance_approval_status = $3, submitted_at = $4, updated_at = $5
        WHERE id = $1 AND status = $6
    `, sub.ID, string(sub.Status), insuranceStatusValue(sub.InsuranceApprovalStatus),
		sub.SubmittedAt, sub.UpdatedAt, string(expected))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.InvalidTransitionError{
			SubmissionID: sub.ID,
			Status:       expected,
			Action:       "commit transition",
		}
	}

	if record != nil {
		_, err = tx.Exec(ctx, `
            INSERT INTO approval_records
                (id, submission_id, approver_id, gate, decision, comments, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, record.ID, record.SubmissionID, record.ApproverID,
			string(record.Gate), string(record.Decision), record.Comments, record.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a submission and its dependent rows.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM approval_records WHERE submission_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM submission_history WHERE submission_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.NotFoundError{Kind: "submission", ID: id}
	}
	return tx.Commit(ctx)
}

// ListByUser returns a user's submissions, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string) ([]models.Submission, error) {
	return r.list(ctx, `
        SELECT id, flow_id, branch_id, user_id, status, current_tab_index,
               form_data, insurance_approval_status, submitted_at, created_at, updated_at
        FROM submissions
        WHERE user_id = $1
        ORDER BY updated_at DESC
    `, userID)
}

// ListPendingForGate returns submissions awaiting the given gate, oldest
// first so approvers work the queue in arrival order.
func (r *SubmissionRepository) ListPendingForGate(ctx context.Context, gate models.ApprovalGate) ([]models.Submission, error) {
	status := models.StatusPendingManagerApproval
	if gate == models.GateInsurance {
		status = models.StatusPendingInsuranceApproval
	}
	return r.list(ctx, `
        SELECT id, flow_id, branch_id, user_id, status, current_tab_index,
               form_data, insurance_approval_status, submitted_at, created_at, updated_at
        FROM submissions
        WHERE status = $1
        ORDER BY submitted_at
    `, string(status))
}

// ListRecords returns the enriched admin records view, optionally filtered to
// one branch (empty branchID means all branches).
func (r *SubmissionRepository) ListRecords(ctx context.Context, branchID string) ([]models.SubmissionRecordView, error) {
	query := `
        SELECT s.id, f.name, b.name, u.name, u.email,
               s.status, s.insurance_approval_status, s.submitted_at, s.updated_at
        FROM submissions s
        JOIN flow_definitions f ON f.id = s.flow_id
        JOIN branches b ON b.id = s.branch_id
        JOIN users u ON u.id = s.user_id
    `
	args := []interface{}{}
	if branchID != "" {
		query += ` WHERE s.branch_id = $1`
		args = append(args, branchID)
	}
	query += ` ORDER BY s.updated_at DESC`

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SubmissionRecordView
	for rows.Next() {
		var rec models.SubmissionRecordView
		var status string
		var insurance *string
		if err := rows.Scan(&rec.SubmissionID, &rec.FlowName, &rec.BranchName,
			&rec.UserName, &rec.UserEmail, &status, &insurance,
			&rec.SubmittedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Status, _ = models.ParseSubmissionStatus(status)
		if insurance != nil {
			st := models.InsuranceStatus(*insurance)
			rec.InsuranceApprovalStatus = &st
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var status string
		var insurance *string
		if err := rows.Scan(&sub.ID, &sub.FlowID, &sub.BranchID, &sub.UserID, &status,
			&sub.CurrentTabIndex, &sub.FormData, &insurance,
			&sub.SubmittedAt, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		sub.Status, _ = models.ParseSubmissionStatus(status)
		if insurance != nil {
			sub.SetInsuranceStatus(models.InsuranceStatus(*insurance))
		}
		if sub.FormData == nil {
			sub.FormData = models.FormData{}
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// insuranceStatusValue renders the nullable insurance status for binding.
func insuranceStatusValue(st *models.InsuranceStatus) *string {
	if st == nil {
		return nil
	}
	s := string(*st)
	return &s
}
