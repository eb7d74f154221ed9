package get_provider_schedule

import (
	"context"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/schedule/models"
)

type ScheduleService interface {
	ProviderSchedule(ctx context.Context, providerID int64, rng domain.DateRange) (*models.ProviderScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
