package validator

import "errors"

// ErrInternal ошибка инфраструктуры во время проверки. Отказы валидации ошибками не являются.
var ErrInternal = errors.New("validator: internal error")
