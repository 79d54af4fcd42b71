package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

var userColumns = []string{"id", "email", "name", "role", "branch_id", "password_hash", "created_at"}

// TestUserRepository_FindByEmail verifies login lookups and role parsing.
func TestUserRepository_FindByEmail(t *testing.T) {
	testTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("existing user with parsed role", func(t *testing.T) {
		// Arrange
		mock := withMockDB(t)
		mock.ExpectQuery(`SELECT(.+)FROM users(.+)WHERE email`).
			WithArgs("rs@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-1", "rs@example.com", "R. Sharma", "ASSOCIATE",
					"branch-1", "$2a$12$hash", testTime))

		// Act
		user, err := repository.NewUserRepository().FindByEmail(context.Background(), "rs@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.RoleAssociate, user.Role)
		assert.Equal(t, "branch-1", user.BranchID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email maps to NotFoundError", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectQuery(`SELECT(.+)FROM users(.+)WHERE email`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repository.NewUserRepository().FindByEmail(context.Background(), "nobody@example.com")

		var notFound *workflow.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown stored role is an error", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectQuery(`SELECT(.+)FROM users(.+)WHERE email`).
			WithArgs("odd@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-2", "odd@example.com", "Odd One", "INTERN",
					"branch-1", "$2a$12$hash", testTime))

		_, err := repository.NewUserRepository().FindByEmail(context.Background(), "odd@example.com")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown role")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestUserRepository_GetByID verifies account loading by id.
func TestUserRepository_GetByID(t *testing.T) {
	testTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock := withMockDB(t)
	mock.ExpectQuery(`SELECT(.+)FROM users(.+)WHERE id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("user-1", "mgr@example.com", "Branch Manager", "MANAGER",
				"branch-1", "$2a$12$hash", testTime))

	user, err := repository.NewUserRepository().GetByID(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
