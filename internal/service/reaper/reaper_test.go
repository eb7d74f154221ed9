package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

var testNow = time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type passTxManager struct{}

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLedger struct {
	bookings  map[uuid.UUID]*domain.Booking
	appendErr error
	appended  []domain.LedgerEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bookings: make(map[uuid.UUID]*domain.Booking)}
}

func (f *fakeLedger) GetBooking(_ context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, ledgerRepo.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeLedger) ReadExpiredPending(_ context.Context, now time.Time, limit uint64) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.HoldExpired(now) && uint64(len(result)) < limit {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeLedger) Append(_ context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	stored := *entry
	stored.ID = int64(len(f.appended) + 1)
	stored.CreatedAt = testNow
	f.appended = append(f.appended, stored)

	booking := f.bookings[entry.BookingID]
	booking.Status = entry.NewStatus
	booking.Sequence = entry.Sequence
	booking.HoldDeadline = nil
	return &stored, nil
}

func seedPending(f *fakeLedger, deadline time.Time) *domain.Booking {
	booking := &domain.Booking{
		ID:           uuid.New(),
		ProviderID:   1,
		PatientID:    7,
		SlotStart:    time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC),
		SlotEnd:      time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC),
		Status:       domain.StatusPending,
		HoldDeadline: &deadline,
		Sequence:     1,
	}
	f.bookings[booking.ID] = booking
	return booking
}

func newTestReaper(ledger *fakeLedger, locks *slotlock.Guard) *Reaper {
	r := New(ledger, locks, passTxManager{}, nil, nopLogger{})
	r.timeProvider = fixedTime{now: testNow}
	return r
}

func TestRunOnceExpiresOverduePending(t *testing.T) {
	ledger := newFakeLedger()
	booking := seedPending(ledger, testNow.Add(-time.Minute))
	r := newTestReaper(ledger, slotlock.New(time.Second))

	require.NoError(t, r.RunOnce(context.Background()))

	require.Len(t, ledger.appended, 1)
	entry := ledger.appended[0]
	assert.Equal(t, booking.ID, entry.BookingID)
	assert.Equal(t, 2, entry.Sequence)
	assert.Equal(t, domain.StatusExpired, entry.NewStatus)
	assert.Equal(t, domain.ActorReaper, entry.Actor)
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, domain.StatusPending, *entry.OldStatus)

	// Повторный проход не находит работы
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, ledger.appended, 1)
}

func TestRunOnceExpiresAtDeadlineBoundary(t *testing.T) {
	ledger := newFakeLedger()
	seedPending(ledger, testNow)
	r := newTestReaper(ledger, slotlock.New(time.Second))

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, ledger.appended, 1)
}

func TestRunOnceLeavesLivePending(t *testing.T) {
	ledger := newFakeLedger()
	seedPending(ledger, testNow.Add(time.Minute))
	r := newTestReaper(ledger, slotlock.New(time.Second))

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Empty(t, ledger.appended)
}

func TestExpireOneSkipsResolvedOnReread(t *testing.T) {
	ledger := newFakeLedger()
	booking := seedPending(ledger, testNow.Add(-time.Minute))
	r := newTestReaper(ledger, slotlock.New(time.Second))

	// Снимок из выборки устарел: к моменту блокировки бронирование подтвердили
	stale := *booking
	ledger.bookings[booking.ID].Status = domain.StatusConfirmed
	ledger.bookings[booking.ID].HoldDeadline = nil
	ledger.bookings[booking.ID].Sequence = 2

	require.NoError(t, r.expireOne(context.Background(), &stale, testNow))
	assert.Empty(t, ledger.appended)
}

func TestRunOnceSkipsBusyKeyWithoutAborting(t *testing.T) {
	ledger := newFakeLedger()
	blocked := seedPending(ledger, testNow.Add(-time.Minute))

	other := seedPending(ledger, testNow.Add(-time.Minute))
	other.ProviderID = 2
	other.SlotStart = time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC)
	other.SlotEnd = time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC)

	locks := slotlock.New(50 * time.Millisecond)
	r := newTestReaper(ledger, locks)

	release, err := locks.Acquire(context.Background(), slotlock.NewKey(blocked.ProviderID, blocked.SlotStart, domain.LockBucket))
	require.NoError(t, err)
	defer release()

	require.NoError(t, r.RunOnce(context.Background()))

	// Занятый ключ пропущен, второй провайдер обработан
	require.Len(t, ledger.appended, 1)
	assert.Equal(t, other.ID, ledger.appended[0].BookingID)
	assert.Equal(t, domain.StatusPending, ledger.bookings[blocked.ID].Status)
}

func TestRunOnceSkipsHaltedKey(t *testing.T) {
	ledger := newFakeLedger()
	booking := seedPending(ledger, testNow.Add(-time.Minute))
	locks := slotlock.New(time.Second)
	r := newTestReaper(ledger, locks)

	locks.Halt(slotlock.NewKey(booking.ProviderID, booking.SlotStart, domain.LockBucket))

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Empty(t, ledger.appended)
}

func TestExpireOneHaltsKeyOnDuplicateSequence(t *testing.T) {
	ledger := newFakeLedger()
	booking := seedPending(ledger, testNow.Add(-time.Minute))
	ledger.appendErr = ledgerRepo.ErrDuplicateSequence
	locks := slotlock.New(time.Second)
	r := newTestReaper(ledger, locks)

	err := r.expireOne(context.Background(), booking, testNow)
	assert.ErrorIs(t, err, ledgerRepo.ErrDuplicateSequence)

	key := slotlock.NewKey(booking.ProviderID, booking.SlotStart, domain.LockBucket)
	assert.True(t, locks.IsHalted(key))
}

func TestExpireOneHaltsKeyOnCorruptedHistory(t *testing.T) {
	ledger := newFakeLedger()
	booking := seedPending(ledger, testNow.Add(-time.Minute))
	locks := slotlock.New(time.Second)
	r := newTestReaper(ledger, locks)

	stale := *booking
	delete(ledger.bookings, booking.ID)
	corrupted := &corruptedLedger{fakeLedger: ledger}
	r.ledger = corrupted

	err := r.expireOne(context.Background(), &stale, testNow)
	assert.ErrorIs(t, err, domain.ErrLedgerCorrupted)

	key := slotlock.NewKey(booking.ProviderID, booking.SlotStart, domain.LockBucket)
	assert.True(t, locks.IsHalted(key))
}

// corruptedLedger отдает порченую историю при чтении бронирования
type corruptedLedger struct {
	*fakeLedger
}

func (c *corruptedLedger) GetBooking(context.Context, uuid.UUID) (*domain.Booking, error) {
	return nil, domain.ErrLedgerCorrupted
}
