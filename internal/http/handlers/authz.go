package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/services"
)

const (
	localUser  = "user"
	localAdmin = "admin"
)

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func unauthorized(c *fiber.Ctx, reason string) error {
	applog.Security(c, "auth.token.reject", map[string]any{"reason": reason})
	return message(c, fiber.StatusUnauthorized, "Please log in to continue")
}

// RequireUser admits requests carrying a valid shopper token whose account
// still exists.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearer(c)
		if raw == "" {
			return unauthorized(c, "missing")
		}
		claims, err := auth.Tokens.Parse(raw)
		if err != nil {
			return unauthorized(c, "invalid")
		}
		if claims.Role != services.RoleUser {
			applog.Security(c, "access.denied.user", map[string]any{"role": claims.Role})
			return message(c, fiber.StatusForbidden, "Access denied")
		}
		u, err := auth.CurrentUser(claims.Subject)
		if err != nil {
			return unauthorized(c, "unknown_user")
		}
		c.Locals(localUser, u)
		c.Locals(applog.LocalSubject, u.ID)
		c.Locals(applog.LocalRole, services.RoleUser)
		return c.Next()
	}
}

// RequireAdmin is RequireUser for back-office tokens. A shopper token is
// authenticated but not allowed, so it gets 403 rather than 401.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearer(c)
		if raw == "" {
			return unauthorized(c, "missing")
		}
		claims, err := auth.Tokens.Parse(raw)
		if err != nil {
			return unauthorized(c, "invalid")
		}
		if claims.Role != services.RoleAdmin {
			c.Locals(applog.LocalSubject, claims.Subject)
			c.Locals(applog.LocalRole, claims.Role)
			applog.Security(c, "access.denied.admin", nil)
			return message(c, fiber.StatusForbidden, "Access denied")
		}
		a, err := auth.CurrentAdmin(claims.Subject)
		if err != nil {
			return unauthorized(c, "unknown_admin")
		}
		c.Locals(localAdmin, a)
		c.Locals(applog.LocalSubject, a.ID)
		c.Locals(applog.LocalRole, services.RoleAdmin)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

func currentAdmin(c *fiber.Ctx) *domain.Admin {
	a, _ := c.Locals(localAdmin).(*domain.Admin)
	return a
}
