package orderstatus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/domain"
	"kicks/internal/orderstatus"
)

func TestPermissiveAllowsAnyKnownStatus(t *testing.T) {
	p := orderstatus.Permissive
	assert.NoError(t, p.Check(domain.StatusDelivered, domain.StatusPending))
	assert.NoError(t, p.Check(domain.StatusCancelled, domain.StatusShipped))
	assert.ErrorIs(t, p.Check(domain.StatusPending, "Lost"), orderstatus.ErrUnknownStatus)
}

func TestStrictFollowsLifecycle(t *testing.T) {
	p := orderstatus.Strict
	assert.NoError(t, p.Check(domain.StatusPending, domain.StatusConfirmed))
	assert.NoError(t, p.Check(domain.StatusShipped, domain.StatusCancelled))
	assert.ErrorIs(t, p.Check(domain.StatusPending, domain.StatusShipped), orderstatus.ErrInvalidTransition)
	assert.ErrorIs(t, p.Check(domain.StatusDelivered, domain.StatusCancelled), orderstatus.ErrInvalidTransition)
	assert.ErrorIs(t, p.Check(domain.StatusCancelled, domain.StatusPending), orderstatus.ErrInvalidTransition)
}

func TestNext(t *testing.T) {
	assert.Equal(t, []domain.OrderStatus{domain.StatusConfirmed, domain.StatusCancelled},
		orderstatus.Strict.Next(domain.StatusPending))
	assert.Empty(t, orderstatus.Strict.Next(domain.StatusDelivered))
	assert.Len(t, orderstatus.Permissive.Next(domain.StatusPending), len(domain.OrderStatuses)-1)
}

func TestEntryNote(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	e := orderstatus.Entry(domain.StatusShipped, "  via courier ", at)
	require.NotNil(t, e.Note)
	assert.Equal(t, "via courier", *e.Note)
	assert.Equal(t, "2026-03-01T10:00:00Z", e.Timestamp)

	blank := orderstatus.Entry(domain.StatusShipped, "   ", at)
	assert.Nil(t, blank.Note)
}
