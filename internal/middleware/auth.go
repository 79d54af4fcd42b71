// Package middleware provides HTTP middleware for authentication and
// role-based access control. The workflow engine trusts the actor these
// middlewares establish.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// AuthRequired ensures the request carries a valid session and loads the
// actor into the request context.
//
// Context Locals Set:
//   - actor: models.Actor (user id, role, branch id)
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "session unavailable")
		}

		userID, _ := sess.Get("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		roleStr, _ := sess.Get("user_role").(string)
		role, ok := models.ParseRole(roleStr)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "session carries an unknown role")
		}
		branchID, _ := sess.Get("branch_id").(string)

		c.Locals("actor", models.Actor{UserID: userID, Role: role, BranchID: branchID})
		return c.Next()
	}
}

// RoleRequired restricts a route to the listed roles. SUPERADMIN always
// passes. Must be chained after AuthRequired.
func RoleRequired(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals("actor").(models.Actor)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if actor.IsSuperadmin() || allowed[actor.Role] {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// ActorFromContext returns the actor set by AuthRequired.
func ActorFromContext(c *fiber.Ctx) models.Actor {
	actor, _ := c.Locals("actor").(models.Actor)
	return actor
}
