package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/dbmetrics"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/psqlbuilder"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/ptr"
)

// pgUniqueViolation код ошибки PostgreSQL при нарушении unique constraint
const pgUniqueViolation = "23505"

// ledgerColumns колонки записи ledger в порядке сканирования
var ledgerColumns = []string{
	"id",
	"booking_id",
	"sequence",
	"provider_id",
	"patient_id",
	"slot_start",
	"slot_end",
	"old_status",
	"new_status",
	"actor",
	"hold_deadline",
	"created_at",
}

// Repository репозиторий append-only журнала бронирований.
// Единственная операция записи - Append; UPDATE и DELETE по таблице
// booking_ledger в кодовой базе отсутствуют.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ledger
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись перехода статуса.
// Уникальность (booking_id, sequence) обеспечена constraint'ом БД: дубликат
// возвращает ErrDuplicateSequence, что означает гонку записи.
func (r *Repository) Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_ledger").
		Columns(
			"booking_id",
			"sequence",
			"provider_id",
			"patient_id",
			"slot_start",
			"slot_end",
			"old_status",
			"new_status",
			"actor",
			"hold_deadline",
		).
		Values(
			entry.BookingID,
			entry.Sequence,
			entry.ProviderID,
			entry.PatientID,
			entry.SlotStart,
			entry.SlotEnd,
			statusPtr(entry.OldStatus),
			entry.NewStatus,
			entry.Actor,
			entry.HoldDeadline,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: booking=%s sequence=%d", ErrDuplicateSequence, entry.BookingID, entry.Sequence)
		}
		return nil, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	return entry, nil
}

// ReadHistory получает полную историю бронирования в порядке sequence
func (r *Repository) ReadHistory(ctx context.Context, bookingID uuid.UUID) ([]domain.LedgerEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ledgerColumns...).
		From("booking_ledger").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("sequence ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ReadHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReadHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrBookingNotFound
	}

	return entries, nil
}

// GetBooking восстанавливает текущее состояние бронирования воспроизведением
// его истории. Порча истории возвращает domain.ErrLedgerCorrupted.
func (r *Repository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	entries, err := r.ReadHistory(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return domain.ReplayHistory(entries)
}

// ReadActiveForSlot получает текущие состояния всех бронирований провайдера,
// пересекающих интервал [start, end), чей последний статус Pending или
// Confirmed. Внутри транзакции строки блокируются FOR UPDATE - вместе с
// serializable изоляцией это защита от двойной записи.
//
// Истекшие Pending (hold_deadline в прошлом) отфильтровывает вызывающая
// сторона через CountsTowardsOccupancy: движок не ждет reaper, чтобы
// перестать учитывать просроченный hold.
func (r *Repository) ReadActiveForSlot(ctx context.Context, providerID int64, start, end time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ledgerColumns...).
		From("booking_ledger AS bl").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Lt{"slot_start": end}).
		Where(squirrel.Gt{"slot_end": start}).
		Where("sequence = (SELECT MAX(sequence) FROM booking_ledger WHERE booking_id = bl.booking_id)").
		Where(squirrel.Eq{"new_status": activeStatusStrings()}).
		OrderBy("slot_start ASC, booking_id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ReadActiveForSlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReadActiveForSlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}

	return bookingsFromLatestEntries(entries), nil
}

// ReadUpcomingForPatient получает активные бронирования пациента,
// начинающиеся после указанного момента
func (r *Repository) ReadUpcomingForPatient(ctx context.Context, patientID int64, after time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ledgerColumns...).
		From("booking_ledger AS bl").
		Where(squirrel.Eq{"patient_id": patientID}).
		Where(squirrel.Gt{"slot_start": after}).
		Where("sequence = (SELECT MAX(sequence) FROM booking_ledger WHERE booking_id = bl.booking_id)").
		Where(squirrel.Eq{"new_status": activeStatusStrings()}).
		OrderBy("slot_start ASC, booking_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ReadUpcomingForPatient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReadUpcomingForPatient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}

	return bookingsFromLatestEntries(entries), nil
}

// ReadExpiredPending получает бронирования, чей последний статус Pending,
// а hold_deadline уже прошел. Используется reaper'ом.
func (r *Repository) ReadExpiredPending(ctx context.Context, now time.Time, limit uint64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ledgerColumns...).
		From("booking_ledger AS bl").
		Where(squirrel.Eq{"new_status": string(domain.StatusPending)}).
		Where(squirrel.LtOrEq{"hold_deadline": now}).
		Where("sequence = (SELECT MAX(sequence) FROM booking_ledger WHERE booking_id = bl.booking_id)").
		OrderBy("hold_deadline ASC")

	if limit > 0 {
		selectBuilder = selectBuilder.Limit(limit)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ReadExpiredPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReadExpiredPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}

	return bookingsFromLatestEntries(entries), nil
}

// scanEntries сканирует результаты запроса в слайс записей ledger
func (r *Repository) scanEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	entries := make([]domain.LedgerEntry, 0)

	for rows.Next() {
		var entry domain.LedgerEntry
		var oldStatus sql.NullString
		var holdDeadline sql.NullTime
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&entry.Sequence,
			&entry.ProviderID,
			&entry.PatientID,
			&entry.SlotStart,
			&entry.SlotEnd,
			&oldStatus,
			&entry.NewStatus,
			&entry.Actor,
			&holdDeadline,
			&createdAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanEntries - scan row: %v", ErrScanRow, err)
		}

		if oldStatus.Valid {
			entry.OldStatus = ptr.Ptr(domain.BookingStatus(oldStatus.String))
		}
		if holdDeadline.Valid {
			entry.HoldDeadline = ptr.Ptr(holdDeadline.Time)
		}
		entry.CreatedAt = createdAt.Time

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEntries - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

// bookingsFromLatestEntries конвертирует последние записи бронирований
// в их текущие состояния
func bookingsFromLatestEntries(entries []domain.LedgerEntry) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, len(entries))
	for _, entry := range entries {
		bookings = append(bookings, &domain.Booking{
			ID:           entry.BookingID,
			ProviderID:   entry.ProviderID,
			PatientID:    entry.PatientID,
			SlotStart:    entry.SlotStart,
			SlotEnd:      entry.SlotEnd,
			Status:       entry.NewStatus,
			HoldDeadline: entry.HoldDeadline,
			Sequence:     entry.Sequence,
			UpdatedAt:    entry.CreatedAt,
		})
	}
	return bookings
}

func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func statusPtr(s *domain.BookingStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

// isUniqueViolation проверяет, что ошибка - нарушение unique constraint
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
