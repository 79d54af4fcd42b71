package repository

import (
	"context"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// StatsRepository aggregates submission counts for dashboards.
type StatsRepository struct{}

// NewStatsRepository creates a StatsRepository.
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// CountByStatus returns submission counts per state, optionally scoped to one
// branch (empty branchID means platform-wide).
func (r *StatsRepository) CountByStatus(ctx context.Context, branchID string) (*models.StatusCounts, error) {
	query := `
        SELECT status, COUNT(*)
        FROM submissions
    `
	args := []interface{}{}
	if branchID != "" {
		query += ` WHERE branch_id = $1`
		args = append(args, branchID)
	}
	query += ` GROUP BY status`

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &models.StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		parsed, _ := models.ParseSubmissionStatus(status)
		switch parsed {
		case models.StatusDraft:
			counts.Draft = n
		case models.StatusPendingInsuranceApproval:
			counts.PendingInsurance = n
		case models.StatusPendingManagerApproval:
			counts.PendingManager = n
		case models.StatusApproved:
			counts.Approved = n
		case models.StatusRejected:
			counts.Rejected = n
		}
	}
	return counts, rows.Err()
}
