package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings.service: booking not found")

	// ErrBookingAlreadyResolved возвращается при отмене истекшего бронирования
	ErrBookingAlreadyResolved = errors.New("bookings.service: booking is already resolved")

	// ErrBusy возвращается, когда блокировка слота не получена за отведенное время
	ErrBusy = errors.New("bookings.service: slot is busy, retry later")

	// ErrSlotHalted возвращается для слота, остановленного после нарушения инварианта
	ErrSlotHalted = errors.New("bookings.service: slot is halted pending reconciliation")

	// ErrInvariantViolation возвращается при обнаружении порчи ledger
	ErrInvariantViolation = errors.New("bookings.service: ledger invariant violation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings.service: internal error")
)
