package request_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/confirm_booking"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/list_free_slots"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
)

// TestBookingFlowFillsWindow прогоняет полный цикл через реальные use case
// поверх одного in-memory ledger: два пациента разбирают окно на два слота,
// после подтверждений свободных слотов не остается.
//
// Даты строятся от реальных часов: подтверждение использует системное время,
// поэтому hold-дедлайны должны лежать в будущем.
func TestBookingFlowFillsWindow(t *testing.T) {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	windows := []domain.AvailabilityWindow{{
		ProviderID: 1,
		Date:       day,
		Start:      day.Add(9 * time.Hour),
		End:        day.Add(10 * time.Hour),
		Capacity:   1,
	}}

	ledger := newFakeLedger()
	availability := &fakeAvailability{windows: windows}
	locks := slotlock.New(time.Second)

	requestUC := NewUseCase(availability, ledger, locks, passTxManager{},
		Settings{SlotDuration: slotDuration, HoldTimeout: holdTimeout}, nil, nopLogger{})
	confirmUC := confirm_booking.NewUseCase(ledger, locks, passTxManager{}, nil, nopLogger{})
	listUC := list_free_slots.NewUseCase(availability, ledger, slotDuration, nopLogger{})

	ctx := context.Background()

	// Пациент A занимает и подтверждает 09:00
	respA, err := requestUC.Execute(ctx, &Request{
		ProviderID: 1,
		PatientID:  7,
		SlotStart:  day.Add(9 * time.Hour),
		SlotEnd:    day.Add(9*time.Hour + 30*time.Minute),
	})
	require.NoError(t, err)

	confirmedA, err := confirmUC.Execute(ctx, respA.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmedA.Status)

	// Пациенту B тот же слот уже недоступен
	_, err = requestUC.Execute(ctx, &Request{
		ProviderID: 1,
		PatientID:  8,
		SlotStart:  day.Add(9 * time.Hour),
		SlotEnd:    day.Add(9*time.Hour + 30*time.Minute),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// B берет соседний слот 09:30 и подтверждает
	respB, err := requestUC.Execute(ctx, &Request{
		ProviderID: 1,
		PatientID:  8,
		SlotStart:  day.Add(9*time.Hour + 30*time.Minute),
		SlotEnd:    day.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	confirmedB, err := confirmUC.Execute(ctx, respB.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmedB.Status)

	// Окно выбрано целиком: свободных слотов нет
	listResp, err := listUC.Execute(ctx, &list_free_slots.Request{
		ProviderID: 1,
		Range:      domain.DateRange{From: day, To: day.AddDate(0, 0, 1)},
	})
	require.NoError(t, err)
	assert.Empty(t, listResp.Slots)
}
