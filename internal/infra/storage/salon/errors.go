package salon

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salon.repository: salon not found")

	// ErrServiceNotFound возвращается, когда услуга салона не найдена
	ErrServiceNotFound = errors.New("salon.repository: service not found")

	// ErrEmployeeNotFound возвращается, когда сотрудник салона не найден
	ErrEmployeeNotFound = errors.New("salon.repository: employee not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("salon.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("salon.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("salon.repository: failed to scan row")
)
