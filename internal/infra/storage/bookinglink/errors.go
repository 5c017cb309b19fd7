package bookinglink

import "errors"

var (
	// ErrLinkNotFound возвращается, когда ссылка не найдена
	ErrLinkNotFound = errors.New("bookinglink.repository: link not found")

	// ErrAlreadyBound возвращается, когда ссылка уже привязана к другому клиенту
	ErrAlreadyBound = errors.New("bookinglink.repository: link already bound to another client")

	ErrBuildQuery = errors.New("bookinglink.repository: failed to build query")
	ErrExecQuery  = errors.New("bookinglink.repository: failed to execute query")
	ErrScanRow    = errors.New("bookinglink.repository: failed to scan row")
)
