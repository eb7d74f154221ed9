package get_provider_schedule

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/schedule/models"
)

// ProviderScheduleResponse HTTP response model
type ProviderScheduleResponse struct {
	ProviderID   int64            `json:"providerId"`
	ProviderName string           `json:"providerName"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	Windows      []WindowResponse `json:"windows"`
}

// WindowResponse окно доступности с нарезанными слотами
type WindowResponse struct {
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Capacity int            `json:"capacity"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse слот с вычисленной занятостью
type SlotResponse struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	Occupancy      int    `json:"occupancy"`
	Capacity       int    `json:"capacity"`
	AvailableSpots int    `json:"availableSpots"`
}

// FromServiceResponse конвертирует ответ сервиса в HTTP response
func FromServiceResponse(resp *models.ProviderScheduleResponse) *ProviderScheduleResponse {
	windows := make([]WindowResponse, len(resp.Windows))
	for i, w := range resp.Windows {
		slots := make([]SlotResponse, len(w.Slots))
		for j, s := range w.Slots {
			slots[j] = SlotResponse{
				Start:          s.Start.Format(time.RFC3339),
				End:            s.End.Format(time.RFC3339),
				Occupancy:      s.Occupancy,
				Capacity:       s.Capacity,
				AvailableSpots: s.AvailableSpots,
			}
		}
		windows[i] = WindowResponse{
			Start:    w.Start.Format(time.RFC3339),
			End:      w.End.Format(time.RFC3339),
			Capacity: w.Capacity,
			Slots:    slots,
		}
	}

	return &ProviderScheduleResponse{
		ProviderID:   resp.ProviderID,
		ProviderName: resp.ProviderName,
		From:         resp.Range.From.Format(domain.DateFormat),
		To:           resp.Range.To.Format(domain.DateFormat),
		Windows:      windows,
	}
}
