package reset_provider_locks

type BookingService interface {
	ResetProviderLocks(providerID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
