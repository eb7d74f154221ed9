package domain

import "time"

// Default configuration values. The original deployment never pinned these,
// so they are configuration inputs with the defaults below.
const (
	DefaultSlotDurationMinutes = 30
	DefaultCapacity            = 1
	DefaultHoldTimeout         = 10 * time.Minute
	DefaultLockWait            = 500 * time.Millisecond
	DefaultReaperInterval      = 30 * time.Second
)

// LockBucket грубость временной корзины ключа сериализации:
// все слоты одного провайдера внутри одного часа делят блокировку
const LockBucket = time.Hour

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MinCapacity            = 1
	MaxCapacity            = 100
	MaxScheduleRangeDays   = 92 // ~3 months per schedule query
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, учитываемые при подсчете занятости слотов
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses статусы, после которых переходы запрещены
var TerminalStatuses = []BookingStatus{
	StatusCancelled,
	StatusExpired,
}
