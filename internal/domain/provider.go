package domain

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/pkg/types"
)

// Provider represents a care provider whose schedule the engine reads.
// Providers are managed by an external admin interface; the engine never
// mutates them.
type Provider struct {
	ID          int64
	DisplayName string
	Active      bool
	CreatedAt   time.Time
}

// ScheduleRule is one window of a provider's recurring weekly template
type ScheduleRule struct {
	ID         int64
	ProviderID int64
	Weekday    time.Weekday
	StartTime  types.TimeString
	EndTime    types.TimeString
	Capacity   int
}

// OverrideKind вид одноразового исключения из расписания
type OverrideKind string

const (
	// OverrideBlocked закрывает окно шаблона на конкретную дату
	OverrideBlocked OverrideKind = "blocked"
	// OverrideOpen дополнительно открывает окно на конкретную дату
	OverrideOpen OverrideKind = "open"
)

// ScheduleOverride is a date-specific exception to the recurring template
type ScheduleOverride struct {
	ID         int64
	ProviderID int64
	Date       time.Time
	Kind       OverrideKind
	StartTime  types.TimeString
	EndTime    types.TimeString
	Capacity   int
}

// AvailabilityWindow is a materialized bookable window for a concrete date.
// Invariant: Start < End; windows of one provider on one date do not overlap
// unless explicitly allowed by capacity > 1.
type AvailabilityWindow struct {
	ProviderID int64
	Date       time.Time
	Start      time.Time
	End        time.Time
	Capacity   int
}

// Overlaps returns true if two windows intersect in time.
// Touching boundaries are not an overlap.
func (w AvailabilityWindow) Overlaps(other AvailabilityWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// DateRange is a half-open calendar interval [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsEmpty returns true for a zero-length or negative range
func (r DateRange) IsEmpty() bool {
	return !r.From.Before(r.To)
}

// Days перечисляет даты диапазона (полночь каждой даты)
func (r DateRange) Days() []time.Time {
	if r.IsEmpty() {
		return nil
	}
	var days []time.Time
	day := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, r.From.Location())
	for day.Before(r.To) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}
