package availability

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("availability.repository: provider not found")

	// ErrWindowsOverlap возвращается, когда окна доступности провайдера на одну
	// дату пересекаются. Админский путь обязан писать непересекающиеся окна,
	// поэтому пересечение при чтении означает порчу данных.
	ErrWindowsOverlap = errors.New("availability.repository: availability windows overlap")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")

	// ErrBadScheduleData возвращается при некорректных данных расписания
	ErrBadScheduleData = errors.New("availability.repository: malformed schedule data")
)
