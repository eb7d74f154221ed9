package request_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	availabilityRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/availability"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/slotindex"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// UseCase use case запроса бронирования слота - ядро координатора.
// Все конкурирующие запросы на один (провайдер, слот) строго упорядочены
// ключевой блокировкой; решение о занятости принимается внутри serializable
// транзакции по пересчету занятости из ledger.
type UseCase struct {
	availability AvailabilityRepository
	ledger       LedgerRepository
	locks        SlotLocker
	txManager    TransactionManager
	settings     Settings
	timeProvider TimeProvider
	idGenerator  IDGenerator
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availability AvailabilityRepository,
	ledger LedgerRepository,
	locks SlotLocker,
	txManager TransactionManager,
	settings Settings,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		availability: availability,
		ledger:       ledger,
		locks:        locks,
		txManager:    txManager,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		idGenerator:  &UUIDGenerator{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute выполняет запрос бронирования.
// Успех создает Pending бронирование с дедлайном подтверждения; занятый слот
// возвращает ErrSlotUnavailable без записи в ledger.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RequestBooking: provider=%d, patient=%d, slot=%s..%s",
		req.ProviderID, req.PatientID, req.SlotStart.Format(domain.TimeFormat), req.SlotEnd.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.settings.SlotDuration); err != nil {
		uc.logger.Warn("RequestBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Захватываем единицу сериализации для (провайдер, корзина слота).
	// Ожидание ограничено: не получили - ErrBusy, пусть клиент повторит.
	key := slotlock.NewKey(req.ProviderID, req.SlotStart, domain.LockBucket)
	lockStart := time.Now()
	release, err := uc.locks.Acquire(ctx, key)
	if uc.metrics != nil {
		uc.metrics.ObserveSlotLockWait("request_booking", time.Since(lockStart).Seconds())
	}
	if err != nil {
		return nil, uc.mapLockError(err, key)
	}
	defer release()

	now := uc.timeProvider.Now()
	var result *Response

	// 3. Решение о занятости и запись в ledger в serializable транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Материализуем окна доступности на дату слота
		day := time.Date(req.SlotStart.Year(), req.SlotStart.Month(), req.SlotStart.Day(),
			0, 0, 0, 0, req.SlotStart.Location())
		windows, err := uc.availability.GetWindows(txCtx, req.ProviderID, domain.DateRange{
			From: day,
			To:   day.AddDate(0, 0, 1),
		})
		if err != nil {
			return uc.mapAvailabilityError(err, key)
		}

		// 3.2. Проверяем выравнивание запроса на границу известного слота
		slot, ok := slotindex.FindSlot(windows, uc.settings.SlotDuration, req.SlotStart, req.SlotEnd)
		if !ok {
			uc.observe(outcomeInvalidSlot)
			uc.logger.Warn("RequestBooking: slot %s..%s is not aligned for provider=%d",
				req.SlotStart.Format(domain.TimeFormat), req.SlotEnd.Format(domain.TimeFormat), req.ProviderID)
			return ErrInvalidSlot
		}

		// 3.3. Пересчитываем текущую занятость слота из ledger (FOR UPDATE)
		active, err := uc.ledger.ReadActiveForSlot(txCtx, req.ProviderID, req.SlotStart, req.SlotEnd)
		if err != nil {
			uc.logger.Error("RequestBooking: failed to read active bookings: %v", err)
			return fmt.Errorf("%w: failed to read active bookings: %v", ErrInternal, err)
		}

		occupancy := slotindex.Occupancy(req.SlotStart, req.SlotEnd, active, now)

		// Подтвержденных бронирований больше capacity быть не может.
		// Если ledger насчитал больше - порча данных, останавливаем ключ.
		if confirmed := confirmedCount(active); confirmed > slot.Capacity {
			return uc.haltKey(key, fmt.Errorf("%w: %d confirmed bookings for capacity %d at %s",
				ErrInvariantViolation, confirmed, slot.Capacity, key))
		}

		// 3.4. Занято - отказ без записи
		if occupancy >= slot.Capacity {
			uc.observe(outcomeUnavailable)
			uc.logger.Info("RequestBooking: slot unavailable, %d/%d taken (%s)", occupancy, slot.Capacity, key)
			return ErrSlotUnavailable
		}

		// 3.5. Свободно - создаем Pending запись с дедлайном подтверждения
		deadline := now.Add(uc.settings.HoldTimeout)
		entry := &domain.LedgerEntry{
			BookingID:    uc.idGenerator.NewID(),
			Sequence:     1,
			ProviderID:   req.ProviderID,
			PatientID:    req.PatientID,
			SlotStart:    req.SlotStart,
			SlotEnd:      req.SlotEnd,
			OldStatus:    nil,
			NewStatus:    domain.StatusPending,
			Actor:        domain.ActorPatient,
			HoldDeadline: &deadline,
		}

		created, err := uc.ledger.Append(txCtx, entry)
		if err != nil {
			if errors.Is(err, ledgerRepo.ErrDuplicateSequence) {
				return uc.haltKey(key, fmt.Errorf("%w: %v", ErrInvariantViolation, err))
			}
			uc.logger.Error("RequestBooking: failed to append ledger entry: %v", err)
			return fmt.Errorf("%w: failed to append ledger entry: %v", ErrInternal, err)
		}

		result = &Response{
			BookingID:    created.BookingID,
			ProviderID:   created.ProviderID,
			PatientID:    created.PatientID,
			SlotStart:    created.SlotStart,
			SlotEnd:      created.SlotEnd,
			Status:       string(domain.StatusPending),
			HoldDeadline: deadline,
			CreatedAt:    created.CreatedAt,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.observe(outcomePending)
	uc.logger.Info("RequestBooking: booking %s pending until %s (%s)",
		result.BookingID, result.HoldDeadline.Format(time.RFC3339), key)
	return result, nil
}

// mapLockError конвертирует ошибки захвата блокировки в сентинелы usecase
func (uc *UseCase) mapLockError(err error, key slotlock.Key) error {
	switch {
	case errors.Is(err, slotlock.ErrBusy):
		uc.observe(outcomeBusy)
		uc.logger.Warn("RequestBooking: lock busy (%s)", key)
		return ErrBusy
	case errors.Is(err, slotlock.ErrKeyHalted):
		uc.observe(outcomeHalted)
		uc.logger.Warn("RequestBooking: key halted (%s)", key)
		return ErrSlotHalted
	default:
		return fmt.Errorf("%w: failed to acquire slot lock: %v", ErrInternal, err)
	}
}

// mapAvailabilityError конвертирует ошибки репозитория расписаний
func (uc *UseCase) mapAvailabilityError(err error, key slotlock.Key) error {
	switch {
	case errors.Is(err, availabilityRepo.ErrProviderNotFound):
		uc.logger.Warn("RequestBooking: provider not found (%s)", key)
		return ErrProviderNotFound
	case errors.Is(err, availabilityRepo.ErrWindowsOverlap):
		return uc.haltKey(key, fmt.Errorf("%w: %v", ErrInvariantViolation, err))
	default:
		uc.logger.Error("RequestBooking: failed to get windows: %v", err)
		return fmt.Errorf("%w: failed to get windows: %v", ErrInternal, err)
	}
}

// haltKey останавливает мутации по ключу после нарушения инварианта.
// Дальше - только ручная сверка и сброс оператором.
func (uc *UseCase) haltKey(key slotlock.Key, err error) error {
	uc.locks.Halt(key)
	uc.observe(outcomeViolation)
	if uc.metrics != nil {
		uc.metrics.ObserveInvariantViolation("request_booking")
	}
	uc.logger.Error("RequestBooking: INVARIANT VIOLATION, halting key (%s): %v", key, err)
	return err
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveBookingDecision(outcome)
	}
}

// confirmedCount подсчитывает подтвержденные бронирования в выборке
func confirmedCount(bookings []*domain.Booking) int {
	count := 0
	for _, b := range bookings {
		if b.Status == domain.StatusConfirmed {
			count++
		}
	}
	return count
}
