package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func statusRef(s BookingStatus) *BookingStatus {
	return &s
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus *BookingStatus
		newStatus BookingStatus
		want      bool
	}{
		{name: "create pending", oldStatus: nil, newStatus: StatusPending, want: true},
		{name: "create confirmed", oldStatus: nil, newStatus: StatusConfirmed, want: false},
		{name: "pending to confirmed", oldStatus: statusRef(StatusPending), newStatus: StatusConfirmed, want: true},
		{name: "pending to cancelled", oldStatus: statusRef(StatusPending), newStatus: StatusCancelled, want: true},
		{name: "pending to expired", oldStatus: statusRef(StatusPending), newStatus: StatusExpired, want: true},
		{name: "pending to pending", oldStatus: statusRef(StatusPending), newStatus: StatusPending, want: false},
		{name: "confirmed to cancelled", oldStatus: statusRef(StatusConfirmed), newStatus: StatusCancelled, want: true},
		{name: "confirmed to expired", oldStatus: statusRef(StatusConfirmed), newStatus: StatusExpired, want: false},
		{name: "cancelled is terminal", oldStatus: statusRef(StatusCancelled), newStatus: StatusPending, want: false},
		{name: "expired is terminal", oldStatus: statusRef(StatusExpired), newStatus: StatusConfirmed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransition(tt.oldStatus, tt.newStatus))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.False(t, IsTerminalStatus(StatusPending))
	assert.False(t, IsTerminalStatus(StatusConfirmed))
	for _, status := range TerminalStatuses {
		assert.True(t, IsTerminalStatus(status))
	}
}

func TestBookingHoldExpired(t *testing.T) {
	deadline := time.Date(2026, 9, 15, 9, 10, 0, 0, time.UTC)

	pending := &Booking{Status: StatusPending, HoldDeadline: &deadline}
	assert.False(t, pending.HoldExpired(deadline.Add(-time.Minute)))
	// Дедлайн включительно: ровно в deadline бронь уже просрочена
	assert.True(t, pending.HoldExpired(deadline))
	assert.True(t, pending.HoldExpired(deadline.Add(time.Minute)))

	confirmed := &Booking{Status: StatusConfirmed, HoldDeadline: &deadline}
	assert.False(t, confirmed.HoldExpired(deadline.Add(time.Hour)))

	noDeadline := &Booking{Status: StatusPending}
	assert.False(t, noDeadline.HoldExpired(deadline))
}

func TestBookingCountsTowardsOccupancy(t *testing.T) {
	now := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	future := now.Add(10 * time.Minute)
	past := now.Add(-10 * time.Minute)

	tests := []struct {
		name    string
		booking Booking
		want    bool
	}{
		{name: "confirmed always counts", booking: Booking{Status: StatusConfirmed}, want: true},
		{name: "live pending counts", booking: Booking{Status: StatusPending, HoldDeadline: &future}, want: true},
		{name: "expired hold does not count", booking: Booking{Status: StatusPending, HoldDeadline: &past}, want: false},
		{name: "cancelled does not count", booking: Booking{Status: StatusCancelled}, want: false},
		{name: "expired does not count", booking: Booking{Status: StatusExpired}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.booking.CountsTowardsOccupancy(now))
		})
	}
}

func TestBookingOverlaps(t *testing.T) {
	slot := func(h, m int) time.Time {
		return time.Date(2026, 9, 15, h, m, 0, 0, time.UTC)
	}
	booking := &Booking{SlotStart: slot(9, 0), SlotEnd: slot(9, 30)}

	assert.True(t, booking.Overlaps(slot(9, 0), slot(9, 30)))
	assert.True(t, booking.Overlaps(slot(9, 15), slot(9, 45)))
	assert.True(t, booking.Overlaps(slot(8, 45), slot(9, 15)))

	// Касание границ не пересечение
	assert.False(t, booking.Overlaps(slot(9, 30), slot(10, 0)))
	assert.False(t, booking.Overlaps(slot(8, 30), slot(9, 0)))
	assert.False(t, booking.Overlaps(slot(10, 0), slot(10, 30)))
}
