package request_booking

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса бронирования
func validateRequest(req *Request, slotDuration time.Duration) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.PatientID <= 0 {
		return fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}

	if req.SlotStart.IsZero() || req.SlotEnd.IsZero() {
		return fmt.Errorf("%w: slot start and end are required", ErrInvalidInput)
	}

	// Начало строго раньше конца
	if !req.SlotStart.Before(req.SlotEnd) {
		return fmt.Errorf("%w: slot start must be before slot end", ErrInvalidSlot)
	}

	// Длина интервала должна совпадать с длительностью слота; точное
	// выравнивание на границу проверяется дальше по Slot Index
	if req.SlotEnd.Sub(req.SlotStart) != slotDuration {
		return fmt.Errorf("%w: slot must be exactly %s long", ErrInvalidSlot, slotDuration)
	}

	return nil
}
