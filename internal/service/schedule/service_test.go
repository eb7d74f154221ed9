package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	availabilityRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/availability"
)

var testNow = time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeAvailability struct {
	provider *domain.Provider
	windows  []domain.AvailabilityWindow
	err      error
}

func (f *fakeAvailability) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	if f.provider == nil || f.provider.ID != id {
		return nil, availabilityRepo.ErrProviderNotFound
	}
	return f.provider, nil
}

func (f *fakeAvailability) GetWindows(context.Context, int64, domain.DateRange) ([]domain.AvailabilityWindow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.windows, nil
}

type fakeLedger struct {
	bookings []*domain.Booking
}

func (f *fakeLedger) ReadActiveForSlot(context.Context, int64, time.Time, time.Time) ([]*domain.Booking, error) {
	return f.bookings, nil
}

func newTestService(availability *fakeAvailability, ledger *fakeLedger) *Service {
	svc := NewService(availability, ledger, 30*time.Minute, nopLogger{})
	svc.timeProvider = fixedTime{now: testNow}
	return svc
}

func testAvailability() *fakeAvailability {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	return &fakeAvailability{
		provider: &domain.Provider{ID: 1, DisplayName: "Dr. Smith"},
		windows: []domain.AvailabilityWindow{{
			ProviderID: 1,
			Date:       date,
			Start:      date.Add(9 * time.Hour),
			End:        date.Add(10 * time.Hour),
			Capacity:   1,
		}},
	}
}

func dayRange() domain.DateRange {
	return domain.DateRange{
		From: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestProviderScheduleIncludesBookedSlots(t *testing.T) {
	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{bookings: []*domain.Booking{{
		ID:         uuid.New(),
		ProviderID: 1,
		PatientID:  7,
		SlotStart:  slotStart,
		SlotEnd:    slotStart.Add(30 * time.Minute),
		Status:     domain.StatusConfirmed,
		Sequence:   2,
	}}}
	svc := newTestService(testAvailability(), ledger)

	resp, err := svc.ProviderSchedule(context.Background(), 1, dayRange())
	require.NoError(t, err)

	assert.Equal(t, "Dr. Smith", resp.ProviderName)
	require.Len(t, resp.Windows, 1)
	window := resp.Windows[0]
	require.Len(t, window.Slots, 2)

	// Расписание показывает и занятые слоты, в отличие от списка свободных
	assert.Equal(t, 1, window.Slots[0].Occupancy)
	assert.Equal(t, 0, window.Slots[0].AvailableSpots)
	assert.Equal(t, 0, window.Slots[1].Occupancy)
	assert.Equal(t, 1, window.Slots[1].AvailableSpots)
}

func TestProviderScheduleEmptyRange(t *testing.T) {
	svc := newTestService(testAvailability(), &fakeLedger{})

	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	resp, err := svc.ProviderSchedule(context.Background(), 1, domain.DateRange{From: day, To: day})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ProviderID)
	assert.Empty(t, resp.Windows)
}

func TestProviderScheduleNoWindows(t *testing.T) {
	availability := testAvailability()
	availability.windows = nil
	svc := newTestService(availability, &fakeLedger{})

	resp, err := svc.ProviderSchedule(context.Background(), 1, dayRange())
	require.NoError(t, err)
	assert.Empty(t, resp.Windows)
}

func TestProviderScheduleValidation(t *testing.T) {
	svc := newTestService(testAvailability(), &fakeLedger{})
	from := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	_, err := svc.ProviderSchedule(context.Background(), 0, dayRange())
	assert.ErrorIs(t, err, ErrInvalidInput)

	wide := domain.DateRange{From: from, To: from.AddDate(0, 0, domain.MaxScheduleRangeDays+1)}
	_, err = svc.ProviderSchedule(context.Background(), 1, wide)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProviderScheduleProviderNotFound(t *testing.T) {
	svc := newTestService(testAvailability(), &fakeLedger{})

	_, err := svc.ProviderSchedule(context.Background(), 42, dayRange())
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestProviderScheduleOverlappingWindows(t *testing.T) {
	availability := testAvailability()
	availability.err = availabilityRepo.ErrWindowsOverlap
	svc := newTestService(availability, &fakeLedger{})

	_, err := svc.ProviderSchedule(context.Background(), 1, dayRange())
	assert.ErrorIs(t, err, ErrInvariantViolation)
}
