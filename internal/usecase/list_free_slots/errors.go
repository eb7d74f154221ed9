package list_free_slots

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("list_free_slots: provider not found")

	// ErrInvariantViolation возвращается при обнаружении порчи данных расписания
	ErrInvariantViolation = errors.New("list_free_slots: schedule invariant violation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("list_free_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("list_free_slots: internal error")
)
