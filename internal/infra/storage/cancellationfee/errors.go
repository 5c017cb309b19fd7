package cancellationfee

import "errors"

var (
	// ErrFeeNotFound возвращается, когда штраф не найден
	ErrFeeNotFound = errors.New("cancellationfee.repository: fee not found")

	// ErrFeeExists возвращается при повторной попытке создать штраф для той же записи
	ErrFeeExists = errors.New("cancellationfee.repository: fee already exists for appointment")

	ErrBuildQuery = errors.New("cancellationfee.repository: failed to build query")
	ErrExecQuery  = errors.New("cancellationfee.repository: failed to execute query")
	ErrScanRow    = errors.New("cancellationfee.repository: failed to scan row")
)
