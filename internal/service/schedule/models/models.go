package models

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// ProviderScheduleResponse расписание провайдера на диапазон дат:
// окна доступности вместе с занятостью каждого слота
type ProviderScheduleResponse struct {
	ProviderID   int64
	ProviderName string
	Range        domain.DateRange
	Windows      []WindowResponse
}

// WindowResponse окно доступности с нарезанными слотами
type WindowResponse struct {
	Start    time.Time
	End      time.Time
	Capacity int
	Slots    []SlotResponse
}

// SlotResponse слот с вычисленной занятостью
type SlotResponse struct {
	Start          time.Time
	End            time.Time
	Occupancy      int
	Capacity       int
	AvailableSpots int
}
