package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// batchLimit максимум просроченных бронирований за один проход
const batchLimit = 200

// Reaper фоновый процесс, переводящий просроченные Pending бронирования
// в Expired. Каждое бронирование обрабатывается под той же единицей
// сериализации, что и подтверждение/отмена: позднее подтверждение и
// истечение не могут примениться одновременно.
type Reaper struct {
	ledger       LedgerRepository
	locks        SlotLocker
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger

	cron *cron.Cron
}

// New создает новый экземпляр reaper
func New(
	ledger LedgerRepository,
	locks SlotLocker,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Reaper {
	return &Reaper{
		ledger:       ledger,
		locks:        locks,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Start запускает периодический запуск RunOnce с заданным интервалом
func (r *Reaper) Start(interval time.Duration) error {
	r.cron = cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := r.cron.AddFunc(spec, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("Reaper: run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("reaper: failed to schedule: %w", err)
	}
	r.cron.Start()
	r.logger.Info("Reaper: started with interval %s", interval)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прохода
func (r *Reaper) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.logger.Info("Reaper: stopped")
}

// RunOnce выполняет один проход: находит просроченные Pending и переводит
// их в Expired. Занятые и остановленные ключи пропускаются до следующего
// прохода - истечение не срочная операция.
func (r *Reaper) RunOnce(ctx context.Context) error {
	now := r.timeProvider.Now()

	expired, err := r.ledger.ReadExpiredPending(ctx, now, batchLimit)
	if err != nil {
		return fmt.Errorf("reaper: failed to read expired pendings: %w", err)
	}

	if len(expired) == 0 {
		return nil
	}

	r.logger.Info("Reaper: found %d expired pending bookings", len(expired))

	reaped := 0
	for _, booking := range expired {
		if err := r.expireOne(ctx, booking, now); err != nil {
			// Ошибки одного бронирования не прерывают проход
			r.logger.Warn("Reaper: skipping booking=%s: %v", booking.ID, err)
			continue
		}
		reaped++
	}

	r.logger.Info("Reaper: expired %d/%d bookings", reaped, len(expired))
	return nil
}

// expireOne переводит одно бронирование Pending -> Expired под блокировкой слота
func (r *Reaper) expireOne(ctx context.Context, stale *domain.Booking, now time.Time) error {
	key := slotlock.NewKey(stale.ProviderID, stale.SlotStart, domain.LockBucket)

	release, err := r.locks.Acquire(ctx, key)
	if err != nil {
		if errors.Is(err, slotlock.ErrBusy) || errors.Is(err, slotlock.ErrKeyHalted) {
			return err
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	defer release()

	return r.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем под блокировкой: бронирование могли успеть
		// подтвердить или отменить
		booking, err := r.ledger.GetBooking(txCtx, stale.ID)
		if err != nil {
			if errors.Is(err, domain.ErrLedgerCorrupted) {
				return r.haltKey(key, err)
			}
			return err
		}

		if !booking.HoldExpired(now) {
			// Уже разрешено или дедлайн сдвинут - истекать нечему
			return nil
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
			NewStatus:  domain.StatusExpired,
			Actor:      domain.ActorReaper,
		}

		if _, err := r.ledger.Append(txCtx, entry); err != nil {
			if errors.Is(err, ledgerRepo.ErrDuplicateSequence) {
				return r.haltKey(key, err)
			}
			return fmt.Errorf("failed to append expired entry: %w", err)
		}

		if r.metrics != nil {
			r.metrics.ObserveBookingDecision("expired")
		}
		return nil
	})
}

// haltKey останавливает мутации по ключу после нарушения инварианта
func (r *Reaper) haltKey(key slotlock.Key, err error) error {
	r.locks.Halt(key)
	if r.metrics != nil {
		r.metrics.ObserveInvariantViolation("reaper")
	}
	r.logger.Error("Reaper: INVARIANT VIOLATION, halting key (%s): %v", key, err)
	return err
}
