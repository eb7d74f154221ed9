package get_free_slots

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	listFreeSlots "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/list_free_slots"
)

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	ProviderID int64      `json:"providerId"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Slots      []FreeSlot `json:"slots"`
}

// FreeSlot модель свободного слота
type FreeSlot struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	AvailableSpots int    `json:"availableSpots"`
	Capacity       int    `json:"capacity"`
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(providerID int64, fromStr, toStr string) (*listFreeSlots.Request, error) {
	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse(domain.DateFormat, toStr)
	if err != nil {
		return nil, err
	}

	return &listFreeSlots.Request{
		ProviderID: providerID,
		Range:      domain.DateRange{From: from, To: to},
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *listFreeSlots.Response) *FreeSlotsResponse {
	slots := make([]FreeSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = FreeSlot{
			Start:          slot.Start.Format(time.RFC3339),
			End:            slot.End.Format(time.RFC3339),
			AvailableSpots: slot.AvailableSpots(),
			Capacity:       slot.Capacity,
		}
	}

	return &FreeSlotsResponse{
		ProviderID: resp.ProviderID,
		From:       resp.Range.From.Format(domain.DateFormat),
		To:         resp.Range.To.Format(domain.DateFormat),
		Slots:      slots,
	}
}
