package schedule

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("schedule.service: provider not found")

	// ErrInvariantViolation возвращается при обнаружении порчи данных расписания
	ErrInvariantViolation = errors.New("schedule.service: schedule invariant violation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedule.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule.service: internal error")
)
