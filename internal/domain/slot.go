package domain

import "time"

// Slot represents a fixed-duration bookable time interval derived from an
// availability window. Slots are computed, never stored.
type Slot struct {
	ProviderID int64
	Start      time.Time
	End        time.Time
	Occupancy  int
	Capacity   int
}

// IsFree returns true if the slot can accept one more booking
func (s *Slot) IsFree() bool {
	return s.Occupancy < s.Capacity
}

// AvailableSpots returns the number of remaining places in the slot
func (s *Slot) AvailableSpots() int {
	spots := s.Capacity - s.Occupancy
	if spots < 0 {
		return 0
	}
	return spots
}

// IsPartiallyOccupied returns true if the slot has some but not all places taken
func (s *Slot) IsPartiallyOccupied() bool {
	return s.Occupancy > 0 && s.Occupancy < s.Capacity
}

// Matches returns true if the slot covers exactly the given interval
func (s *Slot) Matches(start, end time.Time) bool {
	return s.Start.Equal(start) && s.End.Equal(end)
}
