// Package orderstatus decides which order status changes an admin may make
// and builds the history entry each change appends.
package orderstatus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kicks/internal/domain"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Policy is either Permissive (any status to any status, the admin override
// the store has always had) or Strict (forward lifecycle only).
type Policy struct {
	Strict bool
}

var (
	Permissive = Policy{}
	Strict     = Policy{Strict: true}
)

var forward = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:    {domain.StatusConfirmed, domain.StatusCancelled},
	domain.StatusConfirmed:  {domain.StatusProcessing, domain.StatusCancelled},
	domain.StatusProcessing: {domain.StatusShipped, domain.StatusCancelled},
	domain.StatusShipped:    {domain.StatusDelivered, domain.StatusCancelled},
}

// Check reports whether from -> to is allowed.
func (p Policy) Check(from, to domain.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !p.Strict {
		return nil
	}
	for _, s := range forward[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Next lists the statuses reachable from the current one.
func (p Policy) Next(from domain.OrderStatus) []domain.OrderStatus {
	if p.Strict {
		return append([]domain.OrderStatus(nil), forward[from]...)
	}
	out := make([]domain.OrderStatus, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		if s != from {
			out = append(out, s)
		}
	}
	return out
}

// Entry builds the history row for a status change. A blank note is stored
// as absent.
func Entry(status domain.OrderStatus, note string, at time.Time) domain.StatusEntry {
	e := domain.StatusEntry{Status: status, Timestamp: at.UTC().Format(time.RFC3339)}
	if n := strings.TrimSpace(note); n != "" {
		e.Note = &n
	}
	return e
}
