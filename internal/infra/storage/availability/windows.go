package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// materializeWindows строит датированные окна доступности из недельного
// шаблона и одноразовых исключений для каждой даты диапазона.
// Окна без явной capacity получают defaultCapacity.
//
// Правила применения исключений:
// - blocked убирает окна шаблона, которые оно покрывает (полностью или частично)
// - open добавляет окно на конкретную дату сверх шаблона
func materializeWindows(
	providerID int64,
	rng domain.DateRange,
	rules []domain.ScheduleRule,
	overrides []domain.ScheduleOverride,
	defaultCapacity int,
) ([]domain.AvailabilityWindow, error) {
	// Группируем исключения по дате (YYYY-MM-DD)
	overridesByDate := make(map[string][]domain.ScheduleOverride)
	for _, o := range overrides {
		key := o.Date.Format(domain.DateFormat)
		overridesByDate[key] = append(overridesByDate[key], o)
	}

	windows := make([]domain.AvailabilityWindow, 0)

	for _, day := range rng.Days() {
		dayKey := day.Format(domain.DateFormat)
		dayOverrides := overridesByDate[dayKey]

		// Окна шаблона на этот день недели
		for _, rule := range rules {
			if rule.Weekday != day.Weekday() {
				continue
			}

			window, err := ruleWindow(providerID, day, rule, defaultCapacity)
			if err != nil {
				return nil, err
			}

			if isBlocked(window, dayOverrides) {
				continue
			}

			windows = append(windows, window)
		}

		// Дополнительно открытые окна
		for _, o := range dayOverrides {
			if o.Kind != domain.OverrideOpen {
				continue
			}

			window, err := overrideWindow(providerID, day, o, defaultCapacity)
			if err != nil {
				return nil, err
			}

			windows = append(windows, window)
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	return windows, nil
}

// ruleWindow превращает окно шаблона в датированное окно
func ruleWindow(providerID int64, day time.Time, rule domain.ScheduleRule, defaultCapacity int) (domain.AvailabilityWindow, error) {
	start, err := rule.StartTime.At(day)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: rule id=%d: %v", ErrBadScheduleData, rule.ID, err)
	}
	end, err := rule.EndTime.At(day)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: rule id=%d: %v", ErrBadScheduleData, rule.ID, err)
	}
	if !start.Before(end) {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: rule id=%d: start >= end", ErrBadScheduleData, rule.ID)
	}

	capacity := rule.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return domain.AvailabilityWindow{
		ProviderID: providerID,
		Date:       day,
		Start:      start,
		End:        end,
		Capacity:   capacity,
	}, nil
}

// overrideWindow превращает open-исключение в датированное окно
func overrideWindow(providerID int64, day time.Time, o domain.ScheduleOverride, defaultCapacity int) (domain.AvailabilityWindow, error) {
	start, err := o.StartTime.At(day)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: override id=%d: %v", ErrBadScheduleData, o.ID, err)
	}
	end, err := o.EndTime.At(day)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: override id=%d: %v", ErrBadScheduleData, o.ID, err)
	}
	if !start.Before(end) {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: override id=%d: start >= end", ErrBadScheduleData, o.ID)
	}

	capacity := o.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return domain.AvailabilityWindow{
		ProviderID: providerID,
		Date:       day,
		Start:      start,
		End:        end,
		Capacity:   capacity,
	}, nil
}

// isBlocked проверяет, закрыто ли окно blocked-исключением.
// Блокирующее исключение действует на все окна, с которыми пересекается.
func isBlocked(window domain.AvailabilityWindow, overrides []domain.ScheduleOverride) bool {
	for _, o := range overrides {
		if o.Kind != domain.OverrideBlocked {
			continue
		}

		// Blocked без времени закрывает весь день
		if o.StartTime.IsZero() && o.EndTime.IsZero() {
			return true
		}

		start, err := o.StartTime.At(window.Date)
		if err != nil {
			continue
		}
		end, err := o.EndTime.At(window.Date)
		if err != nil {
			continue
		}

		if window.Start.Before(end) && window.End.After(start) {
			return true
		}
	}
	return false
}

// checkNoOverlap проверяет, что окна одной даты не пересекаются.
// Пересечение допустимо только когда оба окна явно объявили capacity > 1.
// Сравниваем каждое окно со всеми предыдущими: длинное раннее окно может
// пересекать не только соседа по сортировке.
func checkNoOverlap(windows []domain.AvailabilityWindow) error {
	for i := 1; i < len(windows); i++ {
		for j := 0; j < i; j++ {
			prev, cur := windows[j], windows[i]
			if !prev.Overlaps(cur) {
				continue
			}
			if prev.Capacity > 1 && cur.Capacity > 1 {
				continue
			}
			return fmt.Errorf("%w: provider=%d windows %s-%s and %s-%s",
				ErrWindowsOverlap,
				cur.ProviderID,
				prev.Start.Format(time.RFC3339), prev.End.Format(time.RFC3339),
				cur.Start.Format(time.RFC3339), cur.End.Format(time.RFC3339),
			)
		}
	}
	return nil
}
