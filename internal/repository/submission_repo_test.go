// Package repository_test provides unit tests for the repository layer.
// Tests use pgxmock v4 for database mocking and follow table-driven testing
// patterns with the Arrange-Act-Assert structure.
package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// withMockDB swaps the global pool for a pgxmock pool for one test.
func withMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() {
		database.DB = oldDB
		mock.Close()
	})
	return mock
}

var submissionColumns = []string{
	"id", "flow_id", "branch_id", "user_id", "status", "current_tab_index",
	"form_data", "insurance_approval_status", "submitted_at", "created_at", "updated_at",
}

// TestSubmissionRepository_GetByID verifies submission loading, status
// normalization, and the not-found mapping.
func TestSubmissionRepository_GetByID(t *testing.T) {
	testTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	insurancePending := "PENDING"

	tests := []struct {
		name        string
		mockSetup   func(pgxmock.PgxPoolIface)
		expectError bool
		validate    func(*testing.T, *models.Submission)
	}{
		{
			name: "pending submission with insurance status",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(submissionColumns).
					AddRow("sub-1", "flow-1", "branch-1", "user-1",
						"PENDING_INSURANCE_APPROVAL", 2,
						models.FormData{"customer": {"customer_name": "R. Sharma"}},
						&insurancePending, &testTime, testTime, testTime)

				mock.ExpectQuery(`SELECT(.+)FROM submissions`).
					WithArgs("sub-1").
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, sub *models.Submission) {
				assert.Equal(t, models.StatusPendingInsuranceApproval, sub.Status)
				assert.Equal(t, 2, sub.CurrentTabIndex)
				assert.Equal(t, "R. Sharma", sub.FormData.Value("customer", "customer_name"))
				require.NotNil(t, sub.InsuranceApprovalStatus)
				assert.Equal(t, models.InsurancePending, *sub.InsuranceApprovalStatus)
			},
		},
		{
			name: "legacy stored status normalizes to the canonical name",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(submissionColumns).
					AddRow("sub-2", "flow-1", "branch-1", "user-1",
						"PENDING_APPROVAL", 3,
						models.FormData{}, (*string)(nil), &testTime, testTime, testTime)

				mock.ExpectQuery(`SELECT(.+)FROM submissions`).
					WithArgs("sub-2").
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, sub *models.Submission) {
				assert.Equal(t, models.StatusPendingManagerApproval, sub.Status)
				assert.Nil(t, sub.InsuranceApprovalStatus)
			},
		},
		{
			name: "draft with null form data gets an empty map",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(submissionColumns).
					AddRow("sub-3", "flow-1", "branch-1", "user-1",
						"DRAFT", -1,
						(models.FormData)(nil), (*string)(nil), (*time.Time)(nil), testTime, testTime)

				mock.ExpectQuery(`SELECT(.+)FROM submissions`).
					WithArgs("sub-3").
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, sub *models.Submission) {
				assert.Equal(t, models.StatusDraft, sub.Status)
				assert.NotNil(t, sub.FormData)
				assert.Nil(t, sub.SubmittedAt)
			},
		},
		{
			name: "unknown id maps to NotFoundError",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT(.+)FROM submissions`).
					WithArgs("missing").
					WillReturnError(pgx.ErrNoRows)
			},
			expectError: true,
		},
	}

	ids := []string{"sub-1", "sub-2", "sub-3", "missing"}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock := withMockDB(t)
			tt.mockSetup(mock)
			repo := repository.NewSubmissionRepository()

			// Act
			sub, err := repo.GetByID(context.Background(), ids[i])

			// Assert
			if tt.expectError {
				var notFound *workflow.NotFoundError
				assert.ErrorAs(t, err, &notFound)
			} else {
				require.NoError(t, err)
				tt.validate(t, sub)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestSubmissionRepository_Create verifies the insert binding, including the
// nullable insurance status.
func TestSubmissionRepository_Create(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sub := &models.Submission{
		ID:              "sub-1",
		FlowID:          "flow-1",
		BranchID:        "branch-1",
		UserID:          "user-1",
		Status:          models.StatusDraft,
		CurrentTabIndex: -1,
		FormData:        models.FormData{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec(`INSERT INTO submissions`).
		WithArgs("sub-1", "flow-1", "branch-1", "user-1", "DRAFT", -1,
			models.FormData{}, (*string)(nil), (*time.Time)(nil), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Act
	err := repository.NewSubmissionRepository().Create(context.Background(), sub)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSubmissionRepository_Save verifies progressive-save persistence and the
// vanished-row mapping.
func TestSubmissionRepository_Save(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sub := &models.Submission{
		ID:              "sub-1",
		CurrentTabIndex: 1,
		FormData:        models.FormData{"customer": {"customer_name": "R. Sharma"}},
		UpdatedAt:       now,
	}

	t.Run("successful save", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", sub.FormData, 1, now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repository.NewSubmissionRepository().Save(context.Background(), sub)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deleted submission maps to NotFoundError", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", sub.FormData, 1, now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repository.NewSubmissionRepository().Save(context.Background(), sub)

		var notFound *workflow.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestSubmissionRepository_CommitTransition verifies the optimistic status
// guard and the single-transaction approval record write.
func TestSubmissionRepository_CommitTransition(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	insuranceApproved := "APPROVED"

	sub := &models.Submission{
		ID:          "sub-1",
		Status:      models.StatusPendingManagerApproval,
		SubmittedAt: &now,
		UpdatedAt:   now,
	}
	sub.SetInsuranceStatus(models.InsuranceApproved)

	record := &models.ApprovalRecord{
		ID:           "rec-1",
		SubmissionID: "sub-1",
		ApproverID:   "user-i",
		Gate:         models.GateInsurance,
		Decision:     models.DecisionApproved,
		Comments:     "policy verified",
		CreatedAt:    now,
	}

	t.Run("status change and approval record commit together", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", "PENDING_MANAGER_APPROVAL", &insuranceApproved,
				&now, now, "PENDING_INSURANCE_APPROVAL").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`INSERT INTO approval_records`).
			WithArgs("rec-1", "sub-1", "user-i", "INSURANCE", "APPROVED", "policy verified", now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err := repository.NewSubmissionRepository().CommitTransition(
			context.Background(), sub, models.StatusPendingInsuranceApproval, record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transition without a record skips the insert", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", "PENDING_MANAGER_APPROVAL", &insuranceApproved,
				&now, now, "DRAFT").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := repository.NewSubmissionRepository().CommitTransition(
			context.Background(), sub, models.StatusDraft, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale expected status misses the guard and writes nothing", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", "PENDING_MANAGER_APPROVAL", &insuranceApproved,
				&now, now, "PENDING_INSURANCE_APPROVAL").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err := repository.NewSubmissionRepository().CommitTransition(
			context.Background(), sub, models.StatusPendingInsuranceApproval, record)

		var invalid *workflow.InvalidTransitionError
		assert.ErrorAs(t, err, &invalid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record insert failure rolls the status change back", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE submissions`).
			WithArgs("sub-1", "PENDING_MANAGER_APPROVAL", &insuranceApproved,
				&now, now, "PENDING_INSURANCE_APPROVAL").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`INSERT INTO approval_records`).
			WithArgs("rec-1", "sub-1", "user-i", "INSURANCE", "APPROVED", "policy verified", now).
			WillReturnError(errors.New("insert failed"))
		mock.ExpectRollback()

		err := repository.NewSubmissionRepository().CommitTransition(
			context.Background(), sub, models.StatusPendingInsuranceApproval, record)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestSubmissionRepository_Delete verifies the dependent-row cleanup order.
func TestSubmissionRepository_Delete(t *testing.T) {
	t.Run("removes dependents before the submission", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM approval_records`).
			WithArgs("sub-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec(`DELETE FROM submission_history`).
			WithArgs("sub-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 5))
		mock.ExpectExec(`DELETE FROM submissions`).
			WithArgs("sub-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := repository.NewSubmissionRepository().Delete(context.Background(), "sub-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id maps to NotFoundError", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM approval_records`).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec(`DELETE FROM submission_history`).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec(`DELETE FROM submissions`).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		err := repository.NewSubmissionRepository().Delete(context.Background(), "missing")

		var notFound *workflow.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestSubmissionRepository_ListPendingForGate verifies the gate-to-status
// queue mapping.
func TestSubmissionRepository_ListPendingForGate(t *testing.T) {
	testTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		gate           models.ApprovalGate
		expectedStatus string
	}{
		{"insurance gate queues insurance-pending submissions", models.GateInsurance, "PENDING_INSURANCE_APPROVAL"},
		{"manager gate queues manager-pending submissions", models.GateManager, "PENDING_MANAGER_APPROVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock := withMockDB(t)
			rows := pgxmock.NewRows(submissionColumns).
				AddRow("sub-1", "flow-1", "branch-1", "user-1",
					tt.expectedStatus, 3,
					models.FormData{}, (*string)(nil), &testTime, testTime, testTime)

			mock.ExpectQuery(`SELECT(.+)FROM submissions`).
				WithArgs(tt.expectedStatus).
				WillReturnRows(rows)

			// Act
			subs, err := repository.NewSubmissionRepository().ListPendingForGate(
				context.Background(), tt.gate)

			// Assert
			require.NoError(t, err)
			require.Len(t, subs, 1)
			assert.Equal(t, "sub-1", subs[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestSubmissionRepository_ListRecords verifies the enriched admin view and
// its optional branch filter.
func TestSubmissionRepository_ListRecords(t *testing.T) {
	testTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "flow_name", "branch_name", "user_name", "user_email",
		"status", "insurance_approval_status", "submitted_at", "updated_at",
	}

	t.Run("all branches when no filter given", func(t *testing.T) {
		mock := withMockDB(t)
		rows := pgxmock.NewRows(columns).
			AddRow("sub-1", "Vehicle Booking", "Pune Central", "R. Sharma", "rs@example.com",
				"APPROVED", (*string)(nil), &testTime, testTime)

		mock.ExpectQuery(`SELECT(.+)FROM submissions s`).
			WillReturnRows(rows)

		records, err := repository.NewSubmissionRepository().ListRecords(context.Background(), "")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Vehicle Booking", records[0].FlowName)
		assert.Equal(t, models.StatusApproved, records[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("branch filter binds the branch id", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectQuery(`SELECT(.+)FROM submissions s(.+)WHERE s.branch_id`).
			WithArgs("branch-1").
			WillReturnRows(pgxmock.NewRows(columns))

		records, err := repository.NewSubmissionRepository().ListRecords(context.Background(), "branch-1")

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
