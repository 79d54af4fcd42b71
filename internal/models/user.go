package models

import "time"

// User represents a platform account. Role and branch membership come from
// the identity layer; the workflow engine trusts them as supplied.
//
// Database Table: users
// Security Note: PasswordHash must never appear in API responses or logs.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	BranchID     string    `db:"branch_id" json:"branchId"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Branch is an organizational unit flows are assigned to.
//
// Database Table: branches
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SubmissionRecordView is an enriched submission row for the admin records
// listing and the spreadsheet export.
type SubmissionRecordView struct {
	SubmissionID            string           `json:"submissionId"`
	FlowName                string           `json:"flowName"`
	BranchName              string           `json:"branchName"`
	UserName                string           `json:"userName"`
	UserEmail               string           `json:"userEmail"`
	Status                  SubmissionStatus `json:"status"`
	InsuranceApprovalStatus *InsuranceStatus `json:"insuranceApprovalStatus"`
	SubmittedAt             *time.Time       `json:"submittedAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

// StatusCounts aggregates submissions by state for dashboards.
type StatusCounts struct {
	Draft            int `json:"draft"`
	PendingInsurance int `json:"pendingInsurance"`
	PendingManager   int `json:"pendingManager"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`
}

// Total returns the sum across all states.
func (c StatusCounts) Total() int {
	return c.Draft + c.PendingInsurance + c.PendingManager + c.Approved + c.Rejected
}
