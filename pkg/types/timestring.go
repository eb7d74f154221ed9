package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeString is returned when a string is not a valid HH:MM time
var ErrInvalidTimeString = errors.New("types: invalid time string format")

// timeStringLayout формат времени HH:MM (24 часа)
const timeStringLayout = "15:04"

// TimeString represents a wall-clock time of day in "HH:MM" format.
// Used for recurring schedule templates where only the time of day matters.
type TimeString string

// NewTimeString creates a TimeString from a time.Time, keeping only HH:MM
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeStringLayout))
}

// NewTimeStringFromString parses and validates an "HH:MM" string
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate checks that the value is a well-formed "HH:MM" time
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero returns true if the value is empty
func (t TimeString) IsZero() bool {
	return t == ""
}

// String returns the "HH:MM" representation
func (t TimeString) String() string {
	return string(t)
}

// IsBefore returns true if t is strictly earlier in the day than other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter returns true if t is strictly later in the day than other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// AddMinutes returns a new TimeString shifted forward by the given number of minutes.
// Fails if the result crosses midnight: schedule windows never wrap a day.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}

	shifted := parsed.Add(time.Duration(minutes) * time.Minute)
	if shifted.Day() != parsed.Day() {
		return "", fmt.Errorf("%w: %q + %dm crosses midnight", ErrInvalidTimeString, string(t), minutes)
	}

	return TimeString(shifted.Format(timeStringLayout)), nil
}

// At anchors the wall-clock time to a concrete date, producing a timestamp
// in the date's location.
func (t TimeString) At(date time.Time) (time.Time, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
