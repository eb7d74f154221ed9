package confirm_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_booking: booking not found")

	// ErrBookingExpired возвращается при подтверждении после дедлайна hold
	ErrBookingExpired = errors.New("confirm_booking: booking hold has expired")

	// ErrBookingAlreadyResolved возвращается, когда бронирование уже
	// подтверждено, отменено или истекло
	ErrBookingAlreadyResolved = errors.New("confirm_booking: booking is already resolved")

	// ErrBusy возвращается, когда блокировка слота не получена за отведенное время
	ErrBusy = errors.New("confirm_booking: slot is busy, retry later")

	// ErrSlotHalted возвращается для слота, остановленного после нарушения инварианта
	ErrSlotHalted = errors.New("confirm_booking: slot is halted pending reconciliation")

	// ErrInvariantViolation возвращается при обнаружении порчи ledger
	ErrInvariantViolation = errors.New("confirm_booking: ledger invariant violation")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
