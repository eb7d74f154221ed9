package get_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	GetByID(ctx context.Context, bookingID uuid.UUID) (*models.BookingResponse, error)
	GetHistory(ctx context.Context, bookingID uuid.UUID) ([]*models.HistoryEntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
