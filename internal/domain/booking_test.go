package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_RecalculateTotals(t *testing.T) {
	t.Run("No discount", func(t *testing.T) {
		b := Booking{HourlyRateCents: 50000, DurationHours: 2}
		b.RecalculateTotals()
		assert.Equal(t, int64(100000), b.SubtotalCents)
		assert.Equal(t, int64(0), b.Discount.AmountCents)
		assert.Equal(t, int64(100000), b.TotalCents)
	})

	t.Run("With discount", func(t *testing.T) {
		b := Booking{
			HourlyRateCents: 50000,
			DurationHours:   2,
			Discount:        Discount{Applied: true, Percentage: 10},
		}
		b.RecalculateTotals()
		assert.Equal(t, int64(100000), b.SubtotalCents)
		assert.Equal(t, int64(10000), b.Discount.AmountCents)
		assert.Equal(t, int64(90000), b.TotalCents)
		assert.Equal(t, b.SubtotalCents-b.Discount.AmountCents, b.TotalCents)
	})

	t.Run("Removing discount clears amount", func(t *testing.T) {
		b := Booking{
			HourlyRateCents: 40000,
			DurationHours:   3,
			Discount:        Discount{Applied: true, Percentage: 10},
		}
		b.RecalculateTotals()
		b.Discount.Applied = false
		b.RecalculateTotals()
		assert.Equal(t, int64(0), b.Discount.AmountCents)
		assert.Equal(t, b.SubtotalCents, b.TotalCents)
	})
}

func TestBooking_CanBeCancelled(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	leadTime := 2 * time.Hour

	t.Run("More than lead time before start", func(t *testing.T) {
		b := Booking{Status: BookingStatusConfirmed, ScheduledAt: now.Add(3 * time.Hour)}
		assert.True(t, b.CanBeCancelled(now, leadTime))
	})

	t.Run("One hour before start", func(t *testing.T) {
		b := Booking{Status: BookingStatusConfirmed, ScheduledAt: now.Add(1 * time.Hour)}
		assert.False(t, b.CanBeCancelled(now, leadTime))
	})

	t.Run("Exactly at lead time boundary", func(t *testing.T) {
		b := Booking{Status: BookingStatusConfirmed, ScheduledAt: now.Add(2 * time.Hour)}
		assert.False(t, b.CanBeCancelled(now, leadTime))
	})

	t.Run("Completed booking", func(t *testing.T) {
		b := Booking{Status: BookingStatusCompleted, ScheduledAt: now.Add(48 * time.Hour)}
		assert.False(t, b.CanBeCancelled(now, leadTime))
	})

	t.Run("Requested booking", func(t *testing.T) {
		b := Booking{Status: BookingStatusRequested, ScheduledAt: now.Add(48 * time.Hour)}
		assert.True(t, b.CanBeCancelled(now, leadTime))
	})
}

func TestBooking_EscrowTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("No deadline", func(t *testing.T) {
		b := Booking{}
		assert.Equal(t, time.Duration(0), b.EscrowTimeRemaining(now))
	})

	t.Run("Deadline in the future", func(t *testing.T) {
		expires := now.Add(6 * time.Hour)
		b := Booking{EscrowExpiresAt: &expires}
		assert.Equal(t, 6*time.Hour, b.EscrowTimeRemaining(now))
	})

	t.Run("Past deadline clamps to zero", func(t *testing.T) {
		expires := now.Add(-1 * time.Hour)
		b := Booking{EscrowExpiresAt: &expires}
		assert.Equal(t, time.Duration(0), b.EscrowTimeRemaining(now))
	})
}

func TestEscrowStatus_IsTerminal(t *testing.T) {
	assert.True(t, EscrowStatusReleased.IsTerminal())
	assert.True(t, EscrowStatusRefunded.IsTerminal())
	assert.True(t, EscrowStatusExpired.IsTerminal())
	assert.False(t, EscrowStatusPending.IsTerminal())
	assert.False(t, EscrowStatusDisputed.IsTerminal())
	assert.False(t, EscrowStatusNone.IsTerminal())
}
