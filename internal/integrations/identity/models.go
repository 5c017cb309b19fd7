package identity

// ContactInfo контактные данные клиента для поиска или создания учетной записи
type ContactInfo struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ResolveResponse ответ сервиса идентификации
type ResolveResponse struct {
	ClientID int64 `json:"client_id"`
	Created  bool  `json:"created"`
}
