package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/dbmetrics"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/psqlbuilder"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/types"
)

// Repository репозиторий расписаний провайдеров.
// Только чтение: провайдеры и их расписания управляются внешним админским
// интерфейсом, движок бронирования их не изменяет.
type Repository struct {
	db              DBExecutor
	defaultCapacity int
}

// NewRepository создает новый экземпляр репозитория расписаний.
// defaultCapacity применяется к окнам без явной capacity; значение <= 0
// заменяется на domain.DefaultCapacity.
func NewRepository(db DBExecutor, defaultCapacity int) *Repository {
	if defaultCapacity <= 0 {
		defaultCapacity = domain.DefaultCapacity
	}
	return &Repository{db: db, defaultCapacity: defaultCapacity}
}

// GetProvider получает провайдера по ID
func (r *Repository) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"display_name",
		"active",
		"created_at",
	).
		From("providers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - build select query: %v", ErrBuildQuery, err)
	}

	var provider domain.Provider
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.DisplayName,
		&provider.Active,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - scan provider: %v", ErrScanRow, err)
	}

	provider.CreatedAt = createdAt.Time
	return &provider, nil
}

// GetWindows материализует окна доступности провайдера на диапазон дат [From, To):
// берет окна недельного шаблона для каждой даты, убирает закрытые исключениями
// (blocked) и добавляет дополнительно открытые (open).
// Окна возвращаются упорядоченными по времени начала. Пересечение окон одной
// даты (кроме явного capacity > 1) означает порчу данных и возвращает
// ErrWindowsOverlap.
func (r *Repository) GetWindows(ctx context.Context, providerID int64, rng domain.DateRange) ([]domain.AvailabilityWindow, error) {
	// Пустой диапазон - пустой результат, не ошибка
	if rng.IsEmpty() {
		return []domain.AvailabilityWindow{}, nil
	}

	if _, err := r.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}

	rules, err := r.getRules(ctx, providerID)
	if err != nil {
		return nil, err
	}

	overrides, err := r.getOverrides(ctx, providerID, rng)
	if err != nil {
		return nil, err
	}

	windows, err := materializeWindows(providerID, rng, rules, overrides, r.defaultCapacity)
	if err != nil {
		return nil, err
	}

	if err := checkNoOverlap(windows); err != nil {
		return nil, err
	}

	return windows, nil
}

// getRules получает окна недельного шаблона провайдера
func (r *Repository) getRules(ctx context.Context, providerID int64) ([]domain.ScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"weekday",
		"start_time",
		"end_time",
		"capacity",
	).
		From("provider_schedule_rules").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]domain.ScheduleRule, 0)
	for rows.Next() {
		var rule domain.ScheduleRule
		var weekday int

		if err := rows.Scan(
			&rule.ID,
			&rule.ProviderID,
			&weekday,
			&rule.StartTime,
			&rule.EndTime,
			&rule.Capacity,
		); err != nil {
			return nil, fmt.Errorf("%w: getRules - scan rule: %v", ErrScanRow, err)
		}

		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// getOverrides получает одноразовые исключения из расписания на диапазон дат
func (r *Repository) getOverrides(ctx context.Context, providerID int64, rng domain.DateRange) ([]domain.ScheduleOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"date",
		"kind",
		"start_time",
		"end_time",
		"capacity",
	).
		From("provider_schedule_overrides").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"date": rng.From}).
		Where(squirrel.Lt{"date": rng.To}).
		OrderBy("date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOverrides - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getOverrides - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]domain.ScheduleOverride, 0)
	for rows.Next() {
		var override domain.ScheduleOverride
		// Времена и capacity у blocked-исключения на весь день хранятся NULL
		var startTime, endTime sql.NullString
		var capacity sql.NullInt64

		if err := rows.Scan(
			&override.ID,
			&override.ProviderID,
			&override.Date,
			&override.Kind,
			&startTime,
			&endTime,
			&capacity,
		); err != nil {
			return nil, fmt.Errorf("%w: getOverrides - scan override: %v", ErrScanRow, err)
		}

		applyOverrideFields(&override, startTime, endTime, capacity)
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getOverrides - rows error: %v", ErrScanRow, err)
	}

	return overrides, nil
}

// applyOverrideFields заполняет nullable-поля исключения.
// NULL остается нулевым значением: для blocked это "весь день закрыт",
// для capacity - "по умолчанию".
func applyOverrideFields(o *domain.ScheduleOverride, startTime, endTime sql.NullString, capacity sql.NullInt64) {
	if startTime.Valid {
		o.StartTime = types.TimeString(startTime.String)
	}
	if endTime.Valid {
		o.EndTime = types.TimeString(endTime.String)
	}
	if capacity.Valid {
		o.Capacity = int(capacity.Int64)
	}
}
