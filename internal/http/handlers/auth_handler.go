package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kicks/internal/domain"
	"kicks/internal/log"
	"kicks/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in credentials
	if !bind(c, &in) {
		return nil
	}
	u, err := h.Auth.Register(c.UserContext(), in.Name, in.Email, in.Password)
	if err != nil {
		return fail(c, err)
	}
	log.Info(c, "auth.register", map[string]any{"email": u.Email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Please check your e-mail for the verification code.",
		"email":   u.Email,
	})
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var in otpRequest
	if !bind(c, &in) {
		return nil
	}
	tok, u, err := h.Auth.VerifyOTP(in.Email, in.OTP)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			log.Security(c, "auth.otp.fail", map[string]any{"email": in.Email})
		}
		return fail(c, err)
	}
	log.Audit(c, "auth.verify.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

// POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var in otpRequest
	if !bind(c, &in) {
		return nil
	}
	if err := h.Auth.ResendOTP(c.UserContext(), in.Email); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "A new code has been sent."})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if !bind(c, &in) {
		return nil
	}
	tok, u, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotVerified) {
			log.Security(c, "auth.login.unverified", map[string]any{"email": in.Email})
		}
		return fail(c, err)
	}
	c.Locals(log.LocalSubject, u.ID)
	log.Audit(c, "auth.login.success", nil)
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in otpRequest
	if !bind(c, &in) {
		return nil
	}
	if err := h.Auth.ForgotPassword(c.UserContext(), in.Email); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "If that account exists, a reset code has been sent."})
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in otpRequest
	if !bind(c, &in) {
		return nil
	}
	if err := h.Auth.ResetPassword(in.Email, in.OTP, in.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			log.Security(c, "auth.reset.fail", map[string]any{"email": in.Email})
		}
		return fail(c, err)
	}
	log.Audit(c, "auth.reset.success", map[string]any{"email": in.Email})
	return c.JSON(fiber.Map{"message": "Password updated. You can now log in."})
}

type adminSignup struct {
	credentials
	Role             domain.AdminRole `json:"role"`
	VerificationCode string           `json:"verificationCode"`
}

// POST /api/admin/auth/register
func (h *AuthHandler) AdminRegister(c *fiber.Ctx) error {
	var in adminSignup
	if !bind(c, &in) {
		return nil
	}
	if in.Role == "" {
		in.Role = domain.RoleAdmin
	}
	tok, a, err := h.Auth.AdminRegister(in.Name, in.Email, in.Password, in.Role, in.VerificationCode)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(log.LocalSubject, a.ID)
	c.Locals(log.LocalRole, services.RoleAdmin)
	log.Audit(c, "admin.register", map[string]any{"role": a.Role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": tok, "admin": a})
}

// POST /api/admin/auth/login
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var in credentials
	if !bind(c, &in) {
		return nil
	}
	tok, a, err := h.Auth.AdminLogin(in.Email, in.Password)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(log.LocalSubject, a.ID)
	c.Locals(log.LocalRole, services.RoleAdmin)
	log.Audit(c, "admin.login.success", nil)
	return c.JSON(fiber.Map{"token": tok, "admin": a})
}

// GET /api/admin/auth/me
func (h *AuthHandler) AdminMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"admin": currentAdmin(c)})
}
