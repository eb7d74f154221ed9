package schedule

import (
	"context"
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// AvailabilityRepository интерфейс репозитория расписаний
type AvailabilityRepository interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	GetWindows(ctx context.Context, providerID int64, rng domain.DateRange) ([]domain.AvailabilityWindow, error)
}

// LedgerRepository интерфейс репозитория журнала бронирований
type LedgerRepository interface {
	ReadActiveForSlot(ctx context.Context, providerID int64, start, end time.Time) ([]*domain.Booking, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
