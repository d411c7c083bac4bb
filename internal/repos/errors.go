package repos

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate wraps unique-constraint violations (sku, e-mail, fragrance name).
	ErrDuplicate = errors.New("duplicate")
	// ErrInsufficientStock is returned when a variant cannot cover an order line.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleStatus means the order left the expected status before the update.
	ErrStaleStatus = errors.New("order status changed")
)

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func dupOr(err error) error {
	if isUnique(err) {
		return ErrDuplicate
	}
	return err
}
