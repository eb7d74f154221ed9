package confirm_booking

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID  string `json:"bookingId"`
	ProviderID int64  `json:"providerId"`
	PatientID  int64  `json:"patientId"`
	SlotStart  string `json:"slotStart"`
	SlotEnd    string `json:"slotEnd"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updatedAt"`
}

// FromDomainBooking конвертирует подтвержденное бронирование в HTTP response
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		BookingID:  b.ID.String(),
		ProviderID: b.ProviderID,
		PatientID:  b.PatientID,
		SlotStart:  b.SlotStart.Format(time.RFC3339),
		SlotEnd:    b.SlotEnd.Format(time.RFC3339),
		Status:     string(b.Status),
		UpdatedAt:  b.UpdatedAt.Format(time.RFC3339),
	}
}
