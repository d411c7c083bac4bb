package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your email before logging in")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrOTPCooldown        = errors.New("please wait before requesting another code")
	ErrBadVerification    = errors.New("invalid verification code")
	ErrConflict           = errors.New("already exists")
	ErrOutOfStock         = errors.New("insufficient stock")
	ErrStaleOrder         = errors.New("order status changed meanwhile, reload and try again")

	// ErrNotOwner is reported as ErrNotFound to the caller.
	ErrNotOwner = fmt.Errorf("%w: order belongs to another account", ErrNotFound)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Reason strips the sentinel prefix from a wrapped error so the remainder can
// be shown to the caller.
func Reason(err error, sentinel error) string {
	msg := err.Error()
	if p := sentinel.Error() + ": "; strings.HasPrefix(msg, p) {
		return strings.TrimPrefix(msg, p)
	}
	return msg
}
