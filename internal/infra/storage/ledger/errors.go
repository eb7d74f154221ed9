package ledger

import "errors"

var (
	// ErrBookingNotFound возвращается, когда у бронирования нет записей в ledger
	ErrBookingNotFound = errors.New("ledger.repository: booking not found")

	// ErrDuplicateSequence возвращается при попытке записать дубликат
	// (booking_id, sequence). Сигнал гонки записи - две стороны пытались
	// применить переход к одному и тому же состоянию.
	ErrDuplicateSequence = errors.New("ledger.repository: duplicate sequence for booking")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("ledger.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("ledger.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("ledger.repository: failed to scan row")
)
