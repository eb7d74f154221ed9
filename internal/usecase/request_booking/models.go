package request_booking

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса бронирования слота
type Request struct {
	ProviderID int64     // ID провайдера
	PatientID  int64     // ID пациента
	SlotStart  time.Time // Начало слота
	SlotEnd    time.Time // Конец слота
}

// Response модель ответа с созданным бронированием.
// Бронирование создается в статусе Pending и должно быть подтверждено
// до HoldDeadline, иначе истечет.
type Response struct {
	BookingID    uuid.UUID
	ProviderID   int64
	PatientID    int64
	SlotStart    time.Time
	SlotEnd      time.Time
	Status       string
	HoldDeadline time.Time
	CreatedAt    time.Time
}

// Метки исходов для метрик решений
const (
	outcomePending     = "pending"
	outcomeUnavailable = "unavailable"
	outcomeInvalidSlot = "invalid_slot"
	outcomeBusy        = "busy"
	outcomeHalted      = "halted"
	outcomeViolation   = "invariant_violation"
)
