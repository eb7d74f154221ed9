package availability

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/types"
)

func TestApplyOverrideFields(t *testing.T) {
	t.Run("null columns stay zero", func(t *testing.T) {
		// Blocked на весь день хранится с NULL временами и NULL capacity
		override := domain.ScheduleOverride{Kind: domain.OverrideBlocked}

		applyOverrideFields(&override, sql.NullString{}, sql.NullString{}, sql.NullInt64{})

		assert.True(t, override.StartTime.IsZero())
		assert.True(t, override.EndTime.IsZero())
		assert.Equal(t, 0, override.Capacity)
	})

	t.Run("set columns are applied", func(t *testing.T) {
		override := domain.ScheduleOverride{Kind: domain.OverrideOpen}

		applyOverrideFields(&override,
			sql.NullString{String: "09:00", Valid: true},
			sql.NullString{String: "12:00", Valid: true},
			sql.NullInt64{Int64: 2, Valid: true},
		)

		assert.Equal(t, types.TimeString("09:00"), override.StartTime)
		assert.Equal(t, types.TimeString("12:00"), override.EndTime)
		assert.Equal(t, 2, override.Capacity)
	})
}

func TestNullOverrideBlocksWholeDay(t *testing.T) {
	// Строка с NULL временами после скана должна закрывать весь день,
	// а не ломать чтение расписания
	override := domain.ScheduleOverride{
		ProviderID: 1,
		Date:       monday,
		Kind:       domain.OverrideBlocked,
	}
	applyOverrideFields(&override, sql.NullString{}, sql.NullString{}, sql.NullInt64{})

	rules := []domain.ScheduleRule{rule(time.Monday, "09:00", "12:00", 1)}

	windows, err := materializeWindows(1, weekRange(1), rules,
		[]domain.ScheduleOverride{override}, domain.DefaultCapacity)
	require.NoError(t, err)
	assert.Empty(t, windows)
}
