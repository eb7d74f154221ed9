package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLedgerCorrupted возвращается, когда история бронирования в ledger
// нарушает инварианты (дубликат sequence, недопустимый переход, запись
// после терминального статуса). Сигнал о возможном двойном бронировании.
var ErrLedgerCorrupted = errors.New("domain: booking ledger is corrupted")

// LedgerEntry is an immutable record of a single booking state transition.
// Entries are append-only; corrections are made with new entries, never edits.
type LedgerEntry struct {
	ID         int64
	BookingID  uuid.UUID
	Sequence   int
	ProviderID int64
	PatientID  int64
	SlotStart  time.Time
	SlotEnd    time.Time

	// OldStatus nil только для первой записи бронирования
	OldStatus *BookingStatus
	NewStatus BookingStatus

	// Actor кто инициировал переход: patient, provider, reaper
	Actor string

	// HoldDeadline переносится в запись, пока бронирование Pending
	HoldDeadline *time.Time

	CreatedAt time.Time
}

// Actor values recorded in ledger entries
const (
	ActorPatient  = "patient"
	ActorProvider = "provider"
	ActorReaper   = "reaper"
)

// ReplayHistory воспроизводит историю бронирования из записей ledger,
// отсортированных по sequence, и возвращает текущее состояние.
// Любое нарушение инвариантов (пропуск или дубликат sequence, недопустимый
// переход) возвращает ErrLedgerCorrupted.
func ReplayHistory(entries []LedgerEntry) (*Booking, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty history", ErrLedgerCorrupted)
	}

	first := entries[0]
	if first.Sequence != 1 {
		return nil, fmt.Errorf("%w: booking %s history starts at sequence %d", ErrLedgerCorrupted, first.BookingID, first.Sequence)
	}

	booking := &Booking{
		ID:         first.BookingID,
		ProviderID: first.ProviderID,
		PatientID:  first.PatientID,
		SlotStart:  first.SlotStart,
		SlotEnd:    first.SlotEnd,
		CreatedAt:  first.CreatedAt,
	}

	var prev *BookingStatus
	for i, entry := range entries {
		if entry.BookingID != booking.ID {
			return nil, fmt.Errorf("%w: foreign entry %s in history of %s", ErrLedgerCorrupted, entry.BookingID, booking.ID)
		}
		if entry.Sequence != i+1 {
			return nil, fmt.Errorf("%w: booking %s expected sequence %d, got %d", ErrLedgerCorrupted, booking.ID, i+1, entry.Sequence)
		}
		if !statusPtrEqual(prev, entry.OldStatus) {
			return nil, fmt.Errorf("%w: booking %s entry %d old status does not chain", ErrLedgerCorrupted, booking.ID, entry.Sequence)
		}
		if !ValidTransition(entry.OldStatus, entry.NewStatus) {
			return nil, fmt.Errorf("%w: booking %s invalid transition at sequence %d", ErrLedgerCorrupted, booking.ID, entry.Sequence)
		}

		status := entry.NewStatus
		prev = &status
		booking.Status = entry.NewStatus
		booking.HoldDeadline = entry.HoldDeadline
		booking.Sequence = entry.Sequence
		booking.UpdatedAt = entry.CreatedAt
	}

	return booking, nil
}

func statusPtrEqual(a, b *BookingStatus) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
