package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/types"
)

// 2026-09-14 понедельник
var monday = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func weekRange(days int) domain.DateRange {
	return domain.DateRange{From: monday, To: monday.AddDate(0, 0, days)}
}

func rule(weekday time.Weekday, start, end types.TimeString, capacity int) domain.ScheduleRule {
	return domain.ScheduleRule{
		ProviderID: 1,
		Weekday:    weekday,
		StartTime:  start,
		EndTime:    end,
		Capacity:   capacity,
	}
}

func TestMaterializeWindowsFromTemplate(t *testing.T) {
	rules := []domain.ScheduleRule{
		rule(time.Monday, "09:00", "12:00", 1),
		rule(time.Monday, "14:00", "17:00", 1),
		rule(time.Tuesday, "10:00", "13:00", 2),
	}

	windows, err := materializeWindows(1, weekRange(2), rules, nil, domain.DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	// Отсортированы по началу
	assert.Equal(t, time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC), windows[0].Start)
	assert.Equal(t, time.Date(2026, 9, 14, 14, 0, 0, 0, time.UTC), windows[1].Start)
	assert.Equal(t, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), windows[2].Start)
	assert.Equal(t, 2, windows[2].Capacity)
}

func TestMaterializeWindowsEmptyRange(t *testing.T) {
	rules := []domain.ScheduleRule{rule(time.Monday, "09:00", "12:00", 1)}

	windows, err := materializeWindows(1, domain.DateRange{From: monday, To: monday}, rules, nil, domain.DefaultCapacity)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestMaterializeWindowsDefaultCapacity(t *testing.T) {
	rules := []domain.ScheduleRule{rule(time.Monday, "09:00", "10:00", 0)}

	windows, err := materializeWindows(1, weekRange(1), rules, nil, domain.DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, domain.DefaultCapacity, windows[0].Capacity)
}

func TestMaterializeWindowsConfiguredDefaultCapacity(t *testing.T) {
	// Сконфигурированное значение по умолчанию применяется и к окнам
	// шаблона, и к open-исключениям без явной capacity
	rules := []domain.ScheduleRule{rule(time.Monday, "09:00", "10:00", 0)}
	overrides := []domain.ScheduleOverride{{
		ProviderID: 1,
		Date:       monday,
		Kind:       domain.OverrideOpen,
		StartTime:  "18:00",
		EndTime:    "20:00",
	}}

	windows, err := materializeWindows(1, weekRange(1), rules, overrides, 3)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, 3, windows[0].Capacity)
	assert.Equal(t, 3, windows[1].Capacity)
}

func TestMaterializeWindowsBlockedOverride(t *testing.T) {
	rules := []domain.ScheduleRule{
		rule(time.Monday, "09:00", "12:00", 1),
		rule(time.Monday, "14:00", "17:00", 1),
	}

	t.Run("whole day blocked", func(t *testing.T) {
		overrides := []domain.ScheduleOverride{{
			ProviderID: 1,
			Date:       monday,
			Kind:       domain.OverrideBlocked,
		}}

		windows, err := materializeWindows(1, weekRange(1), rules, overrides, domain.DefaultCapacity)
		require.NoError(t, err)
		assert.Empty(t, windows)
	})

	t.Run("partial overlap removes whole window", func(t *testing.T) {
		overrides := []domain.ScheduleOverride{{
			ProviderID: 1,
			Date:       monday,
			Kind:       domain.OverrideBlocked,
			StartTime:  "11:00",
			EndTime:    "15:00",
		}}

		windows, err := materializeWindows(1, weekRange(1), rules, overrides, domain.DefaultCapacity)
		require.NoError(t, err)
		assert.Empty(t, windows)
	})

	t.Run("touching boundary does not block", func(t *testing.T) {
		overrides := []domain.ScheduleOverride{{
			ProviderID: 1,
			Date:       monday,
			Kind:       domain.OverrideBlocked,
			StartTime:  "12:00",
			EndTime:    "14:00",
		}}

		windows, err := materializeWindows(1, weekRange(1), rules, overrides, domain.DefaultCapacity)
		require.NoError(t, err)
		assert.Len(t, windows, 2)
	})

	t.Run("blocked on another date has no effect", func(t *testing.T) {
		overrides := []domain.ScheduleOverride{{
			ProviderID: 1,
			Date:       monday.AddDate(0, 0, 7),
			Kind:       domain.OverrideBlocked,
		}}

		windows, err := materializeWindows(1, weekRange(1), rules, overrides, domain.DefaultCapacity)
		require.NoError(t, err)
		assert.Len(t, windows, 2)
	})
}

func TestMaterializeWindowsOpenOverride(t *testing.T) {
	rules := []domain.ScheduleRule{rule(time.Monday, "09:00", "12:00", 1)}
	overrides := []domain.ScheduleOverride{{
		ProviderID: 1,
		Date:       monday,
		Kind:       domain.OverrideOpen,
		StartTime:  "18:00",
		EndTime:    "20:00",
		Capacity:   2,
	}}

	windows, err := materializeWindows(1, weekRange(1), rules, overrides, domain.DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, time.Date(2026, 9, 14, 18, 0, 0, 0, time.UTC), windows[1].Start)
	assert.Equal(t, 2, windows[1].Capacity)
}

func TestMaterializeWindowsBadScheduleData(t *testing.T) {
	rules := []domain.ScheduleRule{rule(time.Monday, "12:00", "09:00", 1)}

	_, err := materializeWindows(1, weekRange(1), rules, nil, domain.DefaultCapacity)
	assert.ErrorIs(t, err, ErrBadScheduleData)
}

func TestCheckNoOverlap(t *testing.T) {
	win := func(startH, endH, capacity int) domain.AvailabilityWindow {
		return domain.AvailabilityWindow{
			ProviderID: 1,
			Date:       monday,
			Start:      time.Date(2026, 9, 14, startH, 0, 0, 0, time.UTC),
			End:        time.Date(2026, 9, 14, endH, 0, 0, 0, time.UTC),
			Capacity:   capacity,
		}
	}

	tests := []struct {
		name    string
		windows []domain.AvailabilityWindow
		wantErr bool
	}{
		{name: "disjoint", windows: []domain.AvailabilityWindow{win(9, 12, 1), win(14, 17, 1)}},
		{name: "touching", windows: []domain.AvailabilityWindow{win(9, 12, 1), win(12, 14, 1)}},
		{name: "overlap capacity one", windows: []domain.AvailabilityWindow{win(9, 12, 1), win(11, 14, 1)}, wantErr: true},
		{name: "overlap mixed capacity", windows: []domain.AvailabilityWindow{win(9, 12, 2), win(11, 14, 1)}, wantErr: true},
		{name: "overlap both multi capacity", windows: []domain.AvailabilityWindow{win(9, 12, 2), win(11, 14, 3)}},
		{name: "empty", windows: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkNoOverlap(tt.windows)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWindowsOverlap)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckNoOverlapNonAdjacentWindows(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 9, 14, h, m, 0, 0, time.UTC)
	}
	// Длинное раннее окно пересекает третье по сортировке окно с capacity 1,
	// хотя соседняя пара допустима (обе capacity > 1)
	windows := []domain.AvailabilityWindow{
		{ProviderID: 1, Date: monday, Start: at(9, 0), End: at(12, 0), Capacity: 2},
		{ProviderID: 1, Date: monday, Start: at(9, 30), End: at(10, 0), Capacity: 2},
		{ProviderID: 1, Date: monday, Start: at(10, 30), End: at(11, 0), Capacity: 1},
	}

	assert.ErrorIs(t, checkNoOverlap(windows), ErrWindowsOverlap)
}
