package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings/models"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// Service сервис чтения бронирований и их отмены
type Service struct {
	ledger       LedgerRepository
	locks        SlotLocker
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	ledger LedgerRepository,
	locks SlotLocker,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		ledger:       ledger,
		locks:        locks,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// GetByID получает текущее состояние бронирования, восстановленное из ledger
func (s *Service) GetByID(ctx context.Context, bookingID uuid.UUID) (*models.BookingResponse, error) {
	booking, err := s.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, s.mapReadError("GetByID", err, bookingID)
	}
	return models.FromDomainBooking(booking), nil
}

// GetHistory получает полную историю переходов бронирования в порядке sequence
func (s *Service) GetHistory(ctx context.Context, bookingID uuid.UUID) ([]*models.HistoryEntryResponse, error) {
	entries, err := s.ledger.ReadHistory(ctx, bookingID)
	if err != nil {
		return nil, s.mapReadError("GetHistory", err, bookingID)
	}
	return models.FromDomainHistory(entries), nil
}

// PatientUpcoming получает активные бронирования пациента с началом в будущем
func (s *Service) PatientUpcoming(ctx context.Context, patientID int64) (*models.BookingListResponse, error) {
	if patientID <= 0 {
		return nil, fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	bookings, err := s.ledger.ReadUpcomingForPatient(ctx, patientID, now)
	if err != nil {
		s.logger.Error("PatientUpcoming: repository error for patient=%d: %v", patientID, err)
		return nil, fmt.Errorf("%w: PatientUpcoming - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("PatientUpcoming: %d upcoming bookings for patient=%d", len(bookings), patientID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет Pending или Confirmed бронирование.
// Идемпотентна: повторная отмена уже отмененного - успех без изменений.
// Отмена истекшего бронирования - ErrBookingAlreadyResolved.
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) error {
	if req.Actor != domain.ActorPatient && req.Actor != domain.ActorProvider {
		return fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, req.Actor)
	}

	s.logger.Info("Cancel: booking=%s by %s", req.BookingID, req.Actor)

	current, err := s.ledger.GetBooking(ctx, req.BookingID)
	if err != nil {
		return s.mapReadError("Cancel", err, req.BookingID)
	}

	// Уже отменено - идемпотентный успех до каких-либо блокировок
	if current.Status == domain.StatusCancelled {
		s.logger.Info("Cancel: booking=%s already cancelled, no-op", req.BookingID)
		return nil
	}

	key := slotlock.NewKey(current.ProviderID, current.SlotStart, domain.LockBucket)
	release, err := s.locks.Acquire(ctx, key)
	if err != nil {
		return s.mapLockError(err, key)
	}
	defer release()

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.ledger.GetBooking(txCtx, req.BookingID)
		if err != nil {
			return s.mapReadError("Cancel", err, req.BookingID)
		}

		switch booking.Status {
		case domain.StatusCancelled:
			// Гонка с другой отменой - все равно идемпотентный успех
			return nil
		case domain.StatusExpired:
			return ErrBookingAlreadyResolved
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
			NewStatus:  domain.StatusCancelled,
			Actor:      req.Actor,
		}

		if _, err := s.ledger.Append(txCtx, entry); err != nil {
			if errors.Is(err, ledgerRepo.ErrDuplicateSequence) {
				return s.haltKey(key, fmt.Errorf("%w: %v", ErrInvariantViolation, err))
			}
			s.logger.Error("Cancel: failed to append ledger entry: %v", err)
			return fmt.Errorf("%w: failed to append ledger entry: %v", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ObserveBookingDecision("cancelled")
	}
	s.logger.Info("Cancel: booking=%s cancelled by %s (%s)", req.BookingID, req.Actor, key)
	return nil
}

// ResetProviderLocks снимает остановку со всех ключей провайдера после
// ручной сверки ledger оператором. Возвращает число сброшенных ключей.
func (s *Service) ResetProviderLocks(providerID int64) (int, error) {
	if providerID <= 0 {
		return 0, fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	cleared := s.locks.ResetProvider(providerID)
	s.logger.Warn("ResetProviderLocks: cleared %d halted keys for provider=%d", cleared, providerID)
	return cleared, nil
}

// mapReadError конвертирует ошибки чтения бронирования в сентинелы сервиса
func (s *Service) mapReadError(method string, err error, bookingID uuid.UUID) error {
	switch {
	case errors.Is(err, ledgerRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking=%s not found", method, bookingID)
		return ErrBookingNotFound
	case errors.Is(err, domain.ErrLedgerCorrupted):
		if s.metrics != nil {
			s.metrics.ObserveInvariantViolation("bookings_service")
		}
		s.logger.Error("%s: corrupted history for booking=%s: %v", method, bookingID, err)
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	default:
		s.logger.Error("%s: repository error for booking=%s: %v", method, bookingID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
}

// mapLockError конвертирует ошибки захвата блокировки
func (s *Service) mapLockError(err error, key slotlock.Key) error {
	switch {
	case errors.Is(err, slotlock.ErrBusy):
		s.logger.Warn("Cancel: lock busy (%s)", key)
		return ErrBusy
	case errors.Is(err, slotlock.ErrKeyHalted):
		s.logger.Warn("Cancel: key halted (%s)", key)
		return ErrSlotHalted
	default:
		return fmt.Errorf("%w: failed to acquire slot lock: %v", ErrInternal, err)
	}
}

// haltKey останавливает мутации по ключу после нарушения инварианта
func (s *Service) haltKey(key slotlock.Key, err error) error {
	s.locks.Halt(key)
	if s.metrics != nil {
		s.metrics.ObserveInvariantViolation("bookings_service")
	}
	s.logger.Error("Cancel: INVARIANT VIOLATION, halting key (%s): %v", key, err)
	return err
}
