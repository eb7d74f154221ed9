package get_patient_upcoming

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
)

// UpcomingBookingsResponse HTTP response model
type UpcomingBookingsResponse struct {
	PatientID int64             `json:"patientId"`
	Bookings  []BookingResponse `json:"bookings"`
}

// BookingResponse модель бронирования в списке
type BookingResponse struct {
	BookingID    string  `json:"bookingId"`
	ProviderID   int64   `json:"providerId"`
	SlotStart    string  `json:"slotStart"`
	SlotEnd      string  `json:"slotEnd"`
	Status       string  `json:"status"`
	HoldDeadline *string `json:"holdDeadline,omitempty"`
}

// FromServiceResponse конвертирует ответ сервиса в HTTP response
func FromServiceResponse(patientID int64, resp *models.BookingListResponse) *UpcomingBookingsResponse {
	bookings := make([]BookingResponse, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		var holdDeadline *string
		if b.HoldDeadline != nil {
			s := b.HoldDeadline.Format(time.RFC3339)
			holdDeadline = &s
		}
		bookings = append(bookings, BookingResponse{
			BookingID:    b.ID.String(),
			ProviderID:   b.ProviderID,
			SlotStart:    b.SlotStart.Format(time.RFC3339),
			SlotEnd:      b.SlotEnd.Format(time.RFC3339),
			Status:       b.Status,
			HoldDeadline: holdDeadline,
		})
	}
	return &UpcomingBookingsResponse{PatientID: patientID, Bookings: bookings}
}
