// Package otp holds the one-time code rules shared by the registration and
// password-reset flows.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	Length         = 6
	TTL            = 10 * time.Minute
	ResendCooldown = 60 * time.Second
)

type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

// Sanitize keeps only digits and truncates to Length.
func Sanitize(in string) string {
	var b strings.Builder
	for _, r := range in {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == Length {
			break
		}
	}
	return b.String()
}

// Complete reports whether code is exactly Length digits.
func Complete(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Generate returns a uniformly random code, zero padded.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func Hash(code string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func Matches(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
