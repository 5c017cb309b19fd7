package identity

import "errors"

var (
	// ErrInvalidContact возвращается, когда сервис отклонил контактные данные
	ErrInvalidContact = errors.New("identity client: invalid contact data")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identity client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identity client: invalid response")
)
