package cancel_booking

import (
	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Actor string `json:"actor"` // patient или provider
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(bookingID uuid.UUID) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		BookingID: bookingID,
		Actor:     r.Actor,
	}
}
