package slotindex

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// Пакет slotindex - чистое вычисление слотов из окон доступности и текущих
// бронирований. Никакого состояния и I/O: каждый вызов пересчитывает
// результат заново, что позволяет тестировать нарезку слотов отдельно от
// конкурентного пути записи.

// Tile нарезает окна доступности на последовательные слоты фиксированной
// длительности. Последний неполный слот отбрасывается. Слоты наследуют
// capacity своего окна и возвращаются в порядке возрастания времени начала
// (окна приходят упорядоченными; при равных стартах сохраняется порядок окон).
func Tile(windows []domain.AvailabilityWindow, duration time.Duration) []domain.Slot {
	if duration <= 0 {
		return []domain.Slot{}
	}

	slots := make([]domain.Slot, 0)
	for _, window := range windows {
		for start := window.Start; ; start = start.Add(duration) {
			end := start.Add(duration)
			if end.After(window.End) {
				break
			}
			slots = append(slots, domain.Slot{
				ProviderID: window.ProviderID,
				Start:      start,
				End:        end,
				Capacity:   window.Capacity,
			})
		}
	}
	return slots
}

// Occupancy подсчитывает занятость интервала [start, end): количество
// бронирований, пересекающих его и учитываемых на момент now
// (Confirmed + Pending с непросроченным hold).
// Граничные касания интервалов пересечением не считаются.
func Occupancy(start, end time.Time, bookings []*domain.Booking, now time.Time) int {
	count := 0
	for _, booking := range bookings {
		if !booking.CountsTowardsOccupancy(now) {
			continue
		}
		if booking.Overlaps(start, end) {
			count++
		}
	}
	return count
}

// Apply заполняет занятость каждого слота по списку бронирований
func Apply(slots []domain.Slot, bookings []*domain.Booking, now time.Time) []domain.Slot {
	result := make([]domain.Slot, len(slots))
	for i, slot := range slots {
		slot.Occupancy = Occupancy(slot.Start, slot.End, bookings, now)
		result[i] = slot
	}
	return result
}

// FreeSlots возвращает только свободные слоты (occupancy < capacity),
// нарезанные из окон и размеченные занятостью
func FreeSlots(windows []domain.AvailabilityWindow, bookings []*domain.Booking, duration time.Duration, now time.Time) []domain.Slot {
	tiled := Apply(Tile(windows, duration), bookings, now)

	free := make([]domain.Slot, 0, len(tiled))
	for _, slot := range tiled {
		if slot.IsFree() {
			free = append(free, slot)
		}
	}
	return free
}

// FindSlot ищет слот с границами ровно [start, end) среди слотов,
// нарезанных из окон. Используется для проверки выравнивания запроса
// бронирования на границу слота.
func FindSlot(windows []domain.AvailabilityWindow, duration time.Duration, start, end time.Time) (domain.Slot, bool) {
	for _, slot := range Tile(windows, duration) {
		if slot.Matches(start, end) {
			return slot, true
		}
	}
	return domain.Slot{}, false
}
