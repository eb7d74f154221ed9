package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// LedgerRepository интерфейс репозитория журнала бронирований
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	ReadHistory(ctx context.Context, bookingID uuid.UUID) ([]domain.LedgerEntry, error)
	ReadUpcomingForPatient(ctx context.Context, patientID int64, after time.Time) ([]*domain.Booking, error)
}

// SlotLocker единица сериализации мутаций по (провайдер, корзина слота)
type SlotLocker interface {
	Acquire(ctx context.Context, key slotlock.Key) (func(), error)
	Halt(key slotlock.Key)
	ResetProvider(providerID int64) int
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс счетчиков решений по бронированиям
type Metrics interface {
	ObserveBookingDecision(outcome string)
	ObserveInvariantViolation(component string)
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
