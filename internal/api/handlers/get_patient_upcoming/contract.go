package get_patient_upcoming

import (
	"context"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	PatientUpcoming(ctx context.Context, patientID int64) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
