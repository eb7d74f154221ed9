package request_booking

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("request_booking: provider not found")

	// ErrInvalidSlot возвращается, когда интервал не выровнен на границу слота
	// или некорректен
	ErrInvalidSlot = errors.New("request_booking: invalid slot")

	// ErrSlotUnavailable возвращается, когда все места слота заняты.
	// Ожидаемый частый исход, не ошибка системы.
	ErrSlotUnavailable = errors.New("request_booking: slot is not available")

	// ErrBusy возвращается, когда блокировка слота не получена за отведенное
	// время. Вызывающая сторона может повторить запрос.
	ErrBusy = errors.New("request_booking: slot is busy, retry later")

	// ErrSlotHalted возвращается для слота, остановленного после нарушения
	// инварианта, до ручного сброса оператором
	ErrSlotHalted = errors.New("request_booking: slot is halted pending reconciliation")

	// ErrInvariantViolation возвращается при обнаружении порчи ledger.
	// Мутации по затронутому ключу останавливаются.
	ErrInvariantViolation = errors.New("request_booking: ledger invariant violation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_booking: internal error")
)
