package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "valid morning", input: "09:00", want: "09:00"},
		{name: "valid midnight", input: "00:00", want: "00:00"},
		{name: "valid end of day", input: "23:59", want: "23:59"},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "missing minutes", input: "10", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "morning", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeStringOrdering(t *testing.T) {
	early := TimeString("09:00")
	late := TimeString("17:30")

	assert.True(t, early.IsBefore(late))
	assert.False(t, late.IsBefore(early))
	assert.True(t, late.IsAfter(early))
	assert.False(t, early.IsBefore(early))
	assert.False(t, early.IsAfter(early))
}

func TestTimeStringAddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   TimeString
		minutes int
		want    TimeString
		wantErr bool
	}{
		{name: "add within hour", input: "09:00", minutes: 30, want: "09:30"},
		{name: "add across hour", input: "09:45", minutes: 30, want: "10:15"},
		{name: "up to end of day", input: "23:00", minutes: 59, want: "23:59"},
		{name: "crosses midnight", input: "23:45", minutes: 30, wantErr: true},
		{name: "exactly midnight", input: "23:30", minutes: 30, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.AddMinutes(tt.minutes)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeStringAt(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, loc)
	got, err := TimeString("09:30").At(date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 9, 15, 9, 30, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())

	_, err = TimeString("bad").At(date)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestNewTimeString(t *testing.T) {
	ts := NewTimeString(time.Date(2026, 9, 15, 14, 5, 59, 0, time.UTC))
	assert.Equal(t, TimeString("14:05"), ts)
	assert.False(t, ts.IsZero())
	assert.True(t, TimeString("").IsZero())
}
