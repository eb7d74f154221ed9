package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// BookingResponse представление текущего состояния бронирования
type BookingResponse struct {
	ID           uuid.UUID
	ProviderID   int64
	PatientID    int64
	SlotStart    time.Time
	SlotEnd      time.Time
	Status       string
	HoldDeadline *time.Time
	Sequence     int
	UpdatedAt    time.Time
}

// HistoryEntryResponse представление одной записи истории бронирования
type HistoryEntryResponse struct {
	Sequence  int
	OldStatus *string
	NewStatus string
	Actor     string
	At        time.Time
}

// CancelBookingRequest модель запроса отмены бронирования
type CancelBookingRequest struct {
	BookingID uuid.UUID
	Actor     string // patient или provider
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []*BookingResponse
}

// FromDomainBooking конвертирует domain.Booking в ответ сервиса
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:           b.ID,
		ProviderID:   b.ProviderID,
		PatientID:    b.PatientID,
		SlotStart:    b.SlotStart,
		SlotEnd:      b.SlotEnd,
		Status:       string(b.Status),
		HoldDeadline: b.HoldDeadline,
		Sequence:     b.Sequence,
		UpdatedAt:    b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список бронирований
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: result}
}

// FromDomainHistory конвертирует историю бронирования
func FromDomainHistory(entries []domain.LedgerEntry) []*HistoryEntryResponse {
	result := make([]*HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		var oldStatus *string
		if e.OldStatus != nil {
			s := string(*e.OldStatus)
			oldStatus = &s
		}
		result = append(result, &HistoryEntryResponse{
			Sequence:  e.Sequence,
			OldStatus: oldStatus,
			NewStatus: string(e.NewStatus),
			Actor:     e.Actor,
			At:        e.CreatedAt,
		})
	}
	return result
}
