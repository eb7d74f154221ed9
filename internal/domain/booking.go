package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusExpired   BookingStatus = "expired"
)

// Booking represents the current state of a booking, reconstructed from the
// ledger (latest entry per booking id). Bookings are never stored as a
// mutable row; every state change is a new ledger entry.
type Booking struct {
	ID         uuid.UUID
	ProviderID int64
	PatientID  int64
	SlotStart  time.Time
	SlotEnd    time.Time
	Status     BookingStatus

	// HoldDeadline задан только для Pending: срок, до которого бронирование
	// должно быть подтверждено
	HoldDeadline *time.Time

	// Sequence номер последней записи ledger по этому бронированию
	Sequence  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if no further transitions are allowed
func (b *Booking) IsTerminal() bool {
	return IsTerminalStatus(b.Status)
}

// IsActive returns true if the booking counts towards slot occupancy
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can transition to Cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// HoldExpired returns true for a Pending booking whose hold deadline has passed
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == StatusPending && b.HoldDeadline != nil && !now.Before(*b.HoldDeadline)
}

// CountsTowardsOccupancy returns true if the booking occupies its slot at
// the given moment: Confirmed always, Pending while the hold deadline has
// not passed
func (b *Booking) CountsTowardsOccupancy(now time.Time) bool {
	if b.Status == StatusConfirmed {
		return true
	}
	return b.Status == StatusPending && !b.HoldExpired(now)
}

// Overlaps returns true if the booking's slot intersects [start, end).
// Touching boundaries are not an overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.SlotStart.Before(end) && b.SlotEnd.After(start)
}

// IsTerminalStatus reports whether the status is terminal
func IsTerminalStatus(status BookingStatus) bool {
	for _, terminal := range TerminalStatuses {
		if status == terminal {
			return true
		}
	}
	return false
}

// ValidTransition проверяет допустимость перехода статусов.
// nil oldStatus означает создание бронирования.
func ValidTransition(oldStatus *BookingStatus, newStatus BookingStatus) bool {
	if oldStatus == nil {
		return newStatus == StatusPending
	}
	if IsTerminalStatus(*oldStatus) {
		return false
	}
	switch *oldStatus {
	case StatusPending:
		return newStatus == StatusConfirmed || newStatus == StatusCancelled || newStatus == StatusExpired
	case StatusConfirmed:
		return newStatus == StatusCancelled
	default:
		return false
	}
}
