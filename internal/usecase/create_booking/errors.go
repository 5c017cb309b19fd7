package create_booking

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("create_booking: salon not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrEmployeeNotFound возвращается, когда выбранный сотрудник не найден в салоне
	ErrEmployeeNotFound = errors.New("create_booking: employee not found")

	// ErrLinkNotFound возвращается для неизвестного токена ссылки
	ErrLinkNotFound = errors.New("create_booking: booking link not found")

	// ErrLinkInactive возвращается, когда ссылка отключена владельцем
	ErrLinkInactive = errors.New("create_booking: booking link is inactive")

	// ErrLinkBound возвращается, когда ссылка уже привязана к другому клиенту
	ErrLinkBound = errors.New("create_booking: booking link belongs to another client")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")

	// errRejected откатывает транзакцию, когда запись отклонена после начала вставки
	errRejected = errors.New("create_booking: rejected")
)
