package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// UserRepository handles user account lookups for the identity layer.
type UserRepository struct{}

// NewUserRepository creates a UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail looks a user up for login. The caller verifies the password
// hash; this only fetches the record.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(database.DB.QueryRow(ctx, `
        SELECT id, email, name, role, branch_id, password_hash, created_at
        FROM users
        WHERE email = $1
    `, email), email)
}

// GetByID loads one user account.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanOne(database.DB.QueryRow(ctx, `
        SELECT id, email, name, role, branch_id, password_hash, created_at
        FROM users
        WHERE id = $1
    `, id), id)
}

func (r *UserRepository) scanOne(row pgx.Row, key string) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &role,
		&user.BranchID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &workflow.NotFoundError{Kind: "user", ID: key}
		}
		return nil, err
	}

	parsed, ok := models.ParseRole(role)
	if !ok {
		return nil, errors.New("user " + user.ID + " has an unknown role " + role)
	}
	user.Role = parsed
	return user, nil
}
