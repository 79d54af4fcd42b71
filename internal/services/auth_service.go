// Package services provides the business logic layer between HTTP handlers
// and repositories.
package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
)

// bcryptCost 12 gives 2^12 iterations, per NIST SP 800-63B guidance.
const bcryptCost = 12

// AuthService handles authentication and password management.
//
// Security Notes:
//   - Constant-time password comparison prevents timing attacks.
//   - Plaintext passwords are never stored or logged.
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService creates an AuthService.
func NewAuthService() *AuthService {
	return &AuthService{userRepo: repository.NewUserRepository()}
}

// Authenticate verifies credentials and returns the user record on success.
// The same error shape comes back for "user not found" and "wrong password"
// so callers cannot probe which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	return user, nil
}

// HashPassword generates a bcrypt hash for storing a new password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}
