package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client клиент сервиса идентификации (поиск или создание клиента по контактам)
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

// ResolveClient возвращает стабильный ID клиента по контактным данным, создавая клиента при необходимости
func (c *Client) ResolveClient(ctx context.Context, contact ContactInfo) (int64, error) {
	url := fmt.Sprintf("%s/internal/clients/resolve", c.baseURL)

	body, err := json.Marshal(contact)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode request: %w", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return 0, ErrInvalidContact
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var result ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: failed to decode response: %w", ErrInvalidResponse, err)
	}
	if result.ClientID <= 0 {
		return 0, fmt.Errorf("%w: empty client_id", ErrInvalidResponse)
	}

	if result.Created {
		c.log.Info("Identity: created client_id=%d", result.ClientID)
	}

	return result.ClientID, nil
}
