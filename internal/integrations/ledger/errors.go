package ledger

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("ledger client: internal error")

	// ErrRejected возвращается, когда финансовый сервис отклонил событие
	ErrRejected = errors.New("ledger client: event rejected")
)
