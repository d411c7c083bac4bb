package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "kicks/internal/log"
	"kicks/internal/orderstatus"
	"kicks/internal/services"
)

// FriendlyError is the only body an unexpected failure ever produces.
const FriendlyError = "Something went wrong. Please try again."

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// fail maps service errors onto status codes. Anything it does not
// recognise is returned to the app ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return message(c, fiber.StatusBadRequest, services.Reason(err, services.ErrInvalidInput))
	case errors.Is(err, orderstatus.ErrUnknownStatus), errors.Is(err, orderstatus.ErrInvalidTransition):
		return message(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidOTP):
		return message(c, fiber.StatusBadRequest, services.ErrInvalidOTP.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		applog.Security(c, "auth.login.fail", nil)
		return message(c, fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrNotVerified):
		return message(c, fiber.StatusForbidden, services.ErrNotVerified.Error())
	case errors.Is(err, services.ErrBadVerification):
		applog.Security(c, "admin.register.bad_code", nil)
		return message(c, fiber.StatusForbidden, services.ErrBadVerification.Error())
	case errors.Is(err, services.ErrNotFound):
		return message(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrEmailTaken):
		return message(c, fiber.StatusConflict, services.ErrEmailTaken.Error())
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrOutOfStock), errors.Is(err, services.ErrStaleOrder):
		return message(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrOTPCooldown):
		applog.Security(c, "auth.otp.cooldown", nil)
		return message(c, fiber.StatusTooManyRequests, services.ErrOTPCooldown.Error())
	}
	return err
}

// bind decodes a JSON body, answering 400 itself when that fails.
func bind(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": "body"})
		_ = message(c, fiber.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ErrorHandler keeps client errors raised by Fiber itself (unknown route,
// oversized body) and hides everything else behind FriendlyError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return message(c, fe.Code, fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return message(c, fiber.StatusInternalServerError, FriendlyError)
}
