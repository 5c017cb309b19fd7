package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSalonNotFound возвращается, когда салон записи не найден
	ErrSalonNotFound = errors.New("salon not found")

	// ErrFeeNotFound возвращается, когда штраф не найден
	ErrFeeNotFound = errors.New("cancellation fee not found")

	// ErrFeeAlreadyPaid возвращается при повторной оплате штрафа
	ErrFeeAlreadyPaid = errors.New("cancellation fee already paid")

	// ErrLinkNotFound возвращается для неизвестного токена ссылки
	ErrLinkNotFound = errors.New("booking link not found")

	// ErrLinkInactive возвращается, когда ссылка отключена
	ErrLinkInactive = errors.New("booking link is inactive")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на действие
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается, когда действие недопустимо в текущем статусе
	ErrInvalidTransition = errors.New("action is not allowed in the current status")

	// ErrNoProposal возвращается, когда у записи нет предложения переноса
	ErrNoProposal = errors.New("appointment has no reschedule proposal")

	// ErrAlreadyStarted возвращается при отмене уже начавшейся записи
	ErrAlreadyStarted = errors.New("appointment has already started")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")

	// errRejected откатывает транзакцию, когда слот занят при записи изменений
	errRejected = errors.New("appointments: rejected")
)
