package confirm_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

type ConfirmBookingUseCase interface {
	Execute(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
