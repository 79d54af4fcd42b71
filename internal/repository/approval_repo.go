package repository

import (
	"context"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// ApprovalRepository reads the append-only approval audit trail. Writes
// happen inside SubmissionRepository.CommitTransition so a record can never
// exist without its status change (and vice versa).
type ApprovalRepository struct{}

// NewApprovalRepository creates an ApprovalRepository.
func NewApprovalRepository() *ApprovalRepository {
	return &ApprovalRepository{}
}

// ListBySubmission returns every gate resolution recorded for a submission,
// oldest first. Resubmissions accumulate records; nothing is ever deleted.
func (r *ApprovalRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.ApprovalRecord, error) {
	rows, err := database.DB.Query(ctx, `
        SELECT id, submission_id, approver_id, gate, decision, comments, created_at
        FROM approval_records
        WHERE submission_id = $1
        ORDER BY created_at
    `, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ApprovalRecord
	for rows.Next() {
		var rec models.ApprovalRecord
		var gate, decision string
		if err := rows.Scan(&rec.ID, &rec.SubmissionID, &rec.ApproverID,
			&gate, &decision, &rec.Comments, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Gate = models.ApprovalGate(gate)
		rec.Decision = models.ApprovalDecision(decision)
		records = append(records, rec)
	}
	return records, rows.Err()
}
