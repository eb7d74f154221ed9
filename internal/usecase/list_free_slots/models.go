package list_free_slots

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// Request модель запроса списка свободных слотов
type Request struct {
	ProviderID int64            // ID провайдера
	Range      domain.DateRange // Диапазон дат [From, To)
	Duration   time.Duration    // Длительность слота; 0 = из конфигурации
}

// Response модель ответа со свободными слотами
type Response struct {
	ProviderID int64
	Range      domain.DateRange
	Slots      []domain.Slot
}
