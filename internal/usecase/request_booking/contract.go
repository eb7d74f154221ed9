package request_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// AvailabilityRepository интерфейс репозитория расписаний
type AvailabilityRepository interface {
	GetWindows(ctx context.Context, providerID int64, rng domain.DateRange) ([]domain.AvailabilityWindow, error)
}

// LedgerRepository интерфейс репозитория журнала бронирований
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
	ReadActiveForSlot(ctx context.Context, providerID int64, start, end time.Time) ([]*domain.Booking, error)
}

// SlotLocker единица сериализации: взаимоисключение мутаций по ключу
// (провайдер, временная корзина)
type SlotLocker interface {
	Acquire(ctx context.Context, key slotlock.Key) (func(), error)
	Halt(key slotlock.Key)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// IDGenerator интерфейс генерации идентификаторов бронирований (для тестирования)
type IDGenerator interface {
	NewID() uuid.UUID
}

// Metrics интерфейс счетчиков решений по бронированиям
type Metrics interface {
	ObserveBookingDecision(outcome string)
	ObserveSlotLockWait(operation string, seconds float64)
	ObserveInvariantViolation(component string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Settings параметры движка бронирования
type Settings struct {
	SlotDuration time.Duration
	HoldTimeout  time.Duration
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// UUIDGenerator генератор случайных UUID для production
type UUIDGenerator struct{}

// NewID генерирует новый идентификатор бронирования
func (g *UUIDGenerator) NewID() uuid.UUID {
	return uuid.New()
}
