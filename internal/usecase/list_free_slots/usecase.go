package list_free_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	availabilityRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/availability"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/slotindex"
)

// UseCase use case получения свободных слотов провайдера.
// Только чтение: пересчитывается заново при каждом вызове, курсоров нет.
// Может выполняться параллельно с записью - ledger читается консистентным
// снимком без блокировок.
type UseCase struct {
	availability AvailabilityRepository
	ledger       LedgerRepository
	slotDuration time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availability AvailabilityRepository,
	ledger LedgerRepository,
	slotDuration time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		availability: availability,
		ledger:       ledger,
		slotDuration: slotDuration,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает свободные слоты провайдера в диапазоне дат,
// упорядоченные по времени начала. Пустой или отрицательный диапазон
// дает пустой список, не ошибку.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ListFreeSlots: provider=%d, range=%s..%s",
		req.ProviderID, req.Range.From.Format(domain.DateFormat), req.Range.To.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ListFreeSlots: validation failed: %v", err)
		return nil, err
	}

	if req.Range.IsEmpty() {
		return &Response{ProviderID: req.ProviderID, Range: req.Range, Slots: []domain.Slot{}}, nil
	}

	duration := req.Duration
	if duration <= 0 {
		duration = uc.slotDuration
	}

	windows, err := uc.availability.GetWindows(ctx, req.ProviderID, req.Range)
	if err != nil {
		switch {
		case errors.Is(err, availabilityRepo.ErrProviderNotFound):
			uc.logger.Warn("ListFreeSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		case errors.Is(err, availabilityRepo.ErrWindowsOverlap):
			uc.logger.Error("ListFreeSlots: overlapping windows for provider id=%d: %v", req.ProviderID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
		default:
			uc.logger.Error("ListFreeSlots: failed to get windows: %v", err)
			return nil, fmt.Errorf("%w: failed to get windows: %v", ErrInternal, err)
		}
	}

	if len(windows) == 0 {
		return &Response{ProviderID: req.ProviderID, Range: req.Range, Slots: []domain.Slot{}}, nil
	}

	// Бронирования читаем одним запросом на весь диапазон окон
	bookings, err := uc.ledger.ReadActiveForSlot(ctx, req.ProviderID, windows[0].Start, windows[len(windows)-1].End)
	if err != nil {
		uc.logger.Error("ListFreeSlots: failed to read active bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to read active bookings: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	slots := slotindex.FreeSlots(windows, bookings, duration, now)

	uc.logger.Info("ListFreeSlots: %d free slots for provider=%d", len(slots), req.ProviderID)
	return &Response{
		ProviderID: req.ProviderID,
		Range:      req.Range,
		Slots:      slots,
	}, nil
}
