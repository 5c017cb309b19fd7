package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

const msgInternalError = "internal server error"

// ErrorResponse тело ответа с ошибкой. Code заполняется для отказов бронирования.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RespondJSON пишет payload в JSON с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondRejection пишет отказ проверки слота: код и причину для показа пользователю
func RespondRejection(w http.ResponseWriter, code, message string) {
	RespondJSON(w, RejectionStatus(domain.RejectionCode(code)), ErrorResponse{Code: code, Message: message})
}

// RejectionStatus HTTP статус отказа: 409 для конфликтов расписания, 422 для остальных
func RejectionStatus(code domain.RejectionCode) int {
	switch code {
	case domain.RejectEmployeeBusy, domain.RejectNoEmployee, domain.RejectClientConflict, domain.RejectSlotTaken:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

// RespondInternalError текст ошибки хранилища клиенту не отдается
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// DecodeJSON декодирует тело запроса. Неизвестные поля запрещены.
func DecodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}
