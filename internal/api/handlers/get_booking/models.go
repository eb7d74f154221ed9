package get_booking

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID    string  `json:"bookingId"`
	ProviderID   int64   `json:"providerId"`
	PatientID    int64   `json:"patientId"`
	SlotStart    string  `json:"slotStart"`
	SlotEnd      string  `json:"slotEnd"`
	Status       string  `json:"status"`
	HoldDeadline *string `json:"holdDeadline,omitempty"`
	Sequence     int     `json:"sequence"`
	UpdatedAt    string  `json:"updatedAt"`
}

// HistoryEntryResponse одна запись истории переходов бронирования
type HistoryEntryResponse struct {
	Sequence  int     `json:"sequence"`
	OldStatus *string `json:"oldStatus,omitempty"`
	NewStatus string  `json:"newStatus"`
	Actor     string  `json:"actor"`
	At        string  `json:"at"`
}

// HistoryResponse история бронирования в порядке sequence
type HistoryResponse struct {
	BookingID string                  `json:"bookingId"`
	Entries   []*HistoryEntryResponse `json:"entries"`
}

// FromServiceBooking конвертирует ответ сервиса в HTTP response
func FromServiceBooking(b *models.BookingResponse) *BookingResponse {
	var holdDeadline *string
	if b.HoldDeadline != nil {
		s := b.HoldDeadline.Format(time.RFC3339)
		holdDeadline = &s
	}
	return &BookingResponse{
		BookingID:    b.ID.String(),
		ProviderID:   b.ProviderID,
		PatientID:    b.PatientID,
		SlotStart:    b.SlotStart.Format(time.RFC3339),
		SlotEnd:      b.SlotEnd.Format(time.RFC3339),
		Status:       b.Status,
		HoldDeadline: holdDeadline,
		Sequence:     b.Sequence,
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}

// FromServiceHistory конвертирует историю переходов в HTTP response
func FromServiceHistory(bookingID string, entries []*models.HistoryEntryResponse) *HistoryResponse {
	result := make([]*HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, &HistoryEntryResponse{
			Sequence:  e.Sequence,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			Actor:     e.Actor,
			At:        e.At.Format(time.RFC3339),
		})
	}
	return &HistoryResponse{BookingID: bookingID, Entries: result}
}
