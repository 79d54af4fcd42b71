package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/services"
)

// AuthHandler manages login and logout over session cookies.
type AuthHandler struct {
	store       *session.Store
	authService *services.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(store *session.Store, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:       store,
		authService: services.NewAuthService(),
		log:         log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates credentials and establishes the session. The response
// deliberately does not distinguish unknown accounts from wrong passwords.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.authService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Info().Str("email", req.Email).Str("ip", c.IP()).Msg("failed login attempt")
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}
	sess.Set("user_id", user.ID)
	sess.Set("user_role", string(user.Role))
	sess.Set("branch_id", user.BranchID)
	if err := sess.Save(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save session")
	}

	h.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"role":     user.Role,
		"branchId": user.BranchID,
	})
}

// Logout destroys the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			h.log.Warn().Err(err).Msg("failed to destroy session")
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}
