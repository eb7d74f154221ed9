package confirm_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// UseCase use case подтверждения бронирования - точка коммита.
// После успешного подтверждения занятость слота становится долговременной.
type UseCase struct {
	ledger       LedgerRepository
	locks        SlotLocker
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledger LedgerRepository,
	locks SlotLocker,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledger:       ledger,
		locks:        locks,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute подтверждает Pending бронирование до истечения дедлайна hold.
// Просроченное - ErrBookingExpired; уже разрешенное - ErrBookingAlreadyResolved.
func (uc *UseCase) Execute(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	uc.logger.Info("ConfirmBooking: booking=%s", bookingID)

	// 1. Читаем текущее состояние, чтобы узнать ключ сериализации
	current, err := uc.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, uc.mapReadError(err, bookingID, nil)
	}

	// 2. Захватываем ту же единицу сериализации, что и запрос/отмена/reaper
	key := slotlock.NewKey(current.ProviderID, current.SlotStart, domain.LockBucket)
	release, err := uc.locks.Acquire(ctx, key)
	if err != nil {
		return nil, uc.mapLockError(err, key)
	}
	defer release()

	now := uc.timeProvider.Now()
	var confirmed *domain.Booking

	// 3. Перечитываем и подтверждаем в serializable транзакции: состояние
	// могло измениться, пока мы ждали блокировку
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.ledger.GetBooking(txCtx, bookingID)
		if err != nil {
			return uc.mapReadError(err, bookingID, &key)
		}

		if booking.Status != domain.StatusPending {
			uc.logger.Warn("ConfirmBooking: booking=%s already resolved (status=%s)", bookingID, booking.Status)
			return ErrBookingAlreadyResolved
		}

		if booking.HoldExpired(now) {
			uc.logger.Warn("ConfirmBooking: booking=%s hold expired at %s", bookingID, booking.HoldDeadline)
			return ErrBookingExpired
		}

		oldStatus := booking.Status
		entry := &domain.LedgerEntry{
			BookingID:  booking.ID,
			Sequence:   booking.Sequence + 1,
			ProviderID: booking.ProviderID,
			PatientID:  booking.PatientID,
			SlotStart:  booking.SlotStart,
			SlotEnd:    booking.SlotEnd,
			OldStatus:  &oldStatus,
			NewStatus:  domain.StatusConfirmed,
			Actor:      domain.ActorPatient,
		}

		appended, err := uc.ledger.Append(txCtx, entry)
		if err != nil {
			if errors.Is(err, ledgerRepo.ErrDuplicateSequence) {
				return uc.haltKey(key, fmt.Errorf("%w: %v", ErrInvariantViolation, err))
			}
			uc.logger.Error("ConfirmBooking: failed to append ledger entry: %v", err)
			return fmt.Errorf("%w: failed to append ledger entry: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusConfirmed
		booking.HoldDeadline = nil
		booking.Sequence = appended.Sequence
		booking.UpdatedAt = appended.CreatedAt
		confirmed = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ObserveBookingDecision("confirmed")
	}
	uc.logger.Info("ConfirmBooking: booking=%s confirmed (%s)", bookingID, key)
	return confirmed, nil
}

// mapReadError конвертирует ошибки чтения бронирования.
// Порча истории останавливает ключ, если он уже известен.
func (uc *UseCase) mapReadError(err error, bookingID uuid.UUID, key *slotlock.Key) error {
	switch {
	case errors.Is(err, ledgerRepo.ErrBookingNotFound):
		uc.logger.Warn("ConfirmBooking: booking=%s not found", bookingID)
		return ErrBookingNotFound
	case errors.Is(err, domain.ErrLedgerCorrupted):
		if key != nil {
			return uc.haltKey(*key, fmt.Errorf("%w: %v", ErrInvariantViolation, err))
		}
		uc.logger.Error("ConfirmBooking: corrupted history for booking=%s: %v", bookingID, err)
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	default:
		uc.logger.Error("ConfirmBooking: failed to read booking=%s: %v", bookingID, err)
		return fmt.Errorf("%w: failed to read booking: %v", ErrInternal, err)
	}
}

// mapLockError конвертирует ошибки захвата блокировки
func (uc *UseCase) mapLockError(err error, key slotlock.Key) error {
	switch {
	case errors.Is(err, slotlock.ErrBusy):
		uc.logger.Warn("ConfirmBooking: lock busy (%s)", key)
		return ErrBusy
	case errors.Is(err, slotlock.ErrKeyHalted):
		uc.logger.Warn("ConfirmBooking: key halted (%s)", key)
		return ErrSlotHalted
	default:
		return fmt.Errorf("%w: failed to acquire slot lock: %v", ErrInternal, err)
	}
}

// haltKey останавливает мутации по ключу после нарушения инварианта
func (uc *UseCase) haltKey(key slotlock.Key, err error) error {
	uc.locks.Halt(key)
	if uc.metrics != nil {
		uc.metrics.ObserveInvariantViolation("confirm_booking")
	}
	uc.logger.Error("ConfirmBooking: INVARIANT VIOLATION, halting key (%s): %v", key, err)
	return err
}
