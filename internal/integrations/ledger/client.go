package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Client клиент финансового сервиса. Ядро только отправляет события и никогда не читает состояние ledger.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// EmitCompletion отправляет событие о выполненной записи
func (c *Client) EmitCompletion(ctx context.Context, event domain.CompletionEvent) error {
	payload := CompletionEvent{
		AppointmentID:    event.AppointmentID,
		SalonID:          event.SalonID,
		ServicePrice:     event.ServicePrice,
		EmployeeID:       event.EmployeeID,
		CommissionAmount: event.CommissionAmount,
		ReferenceMonth:   event.ReferenceMonth,
		ReferenceYear:    event.ReferenceYear,
		PriceSource:      event.PriceSource,
	}

	if err := c.post(ctx, "/internal/ledger/completions", payload); err != nil {
		return err
	}

	c.log.Info("Ledger: completion emitted for appointment_id=%d", event.AppointmentID)
	return nil
}

// RecordCancellationFee отправляет запись о штрафе (создание или оплата)
func (c *Client) RecordCancellationFee(ctx context.Context, fee domain.CancellationFee) error {
	payload := CancellationFeeRecord{
		FeeID:                  fee.ID,
		AppointmentID:          fee.AppointmentID,
		SalonID:                fee.SalonID,
		ClientID:               fee.ClientID,
		Amount:                 fee.Amount,
		FeePercentage:          fee.FeePercentage,
		ServicePrice:           fee.ServicePrice,
		HoursBeforeAppointment: fee.HoursBeforeAppointment,
		CancelledAt:            fee.CancelledAt,
		IsPaid:                 fee.IsPaid,
		PaidAt:                 fee.PaidAt,
	}

	if err := c.post(ctx, "/internal/ledger/cancellation-fees", payload); err != nil {
		return err
	}

	c.log.Info("Ledger: cancellation fee recorded fee_id=%d paid=%t", fee.ID, fee.IsPaid)
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %w", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, string(respBody))
	}

	return nil
}
