// Package gateway is the outbound client for the payment provider's token API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
)

const tokenPath = "/api/v2/cftoken/order"

var (
	ErrStatus    = errors.New("gateway returned non-success status")
	ErrMalformed = errors.New("gateway response malformed")
)

type TokenRequest struct {
	OrderID       int64       `json:"orderId"`
	OrderAmount   json.Number `json:"orderAmount"`
	OrderCurrency string      `json:"orderCurrency"`
}

type tokenResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"cftoken"`
}

type Client struct {
	cfg  config.GatewayConfig
	http *http.Client
}

// New returns a client for cfg. hc may be nil, in which case a client with cfg.Timeout is used.
func New(cfg config.GatewayConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}
}

// CreateToken asks the gateway for a payment token for an order. It makes exactly one attempt.
func (c *Client) CreateToken(ctx context.Context, orderID int64, amount decimal.Decimal) (string, error) {
	body, err := json.Marshal(TokenRequest{
		OrderID:       orderID,
		OrderAmount:   json.Number(amount.String()),
		OrderCurrency: c.cfg.Currency,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.cfg.ClientID)
	req.Header.Set("x-client-secret", c.cfg.ClientSecret)
	req.Header.Set("x-request-id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gateway read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var out tokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out.Status != "" && out.Status != "OK" {
		return "", fmt.Errorf("%w: status %s: %s", ErrStatus, out.Status, out.Message)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: missing cftoken", ErrMalformed)
	}
	return out.Token, nil
}
