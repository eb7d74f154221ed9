package list_free_slots

import (
	"fmt"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	// Пустой диапазон валиден (пустой результат), но ограничиваем ширину
	if !req.Range.IsEmpty() {
		days := len(req.Range.Days())
		if days > domain.MaxScheduleRangeDays {
			return fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, domain.MaxScheduleRangeDays)
		}
	}

	return nil
}
