// Package razorpay implements the payment gateway collaborator against the
// razorpay orders API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/oakrise/shopcart/internal/checkout"
)

var _ checkout.Gateway = (*Client)(nil)

// Config holds the gateway credentials and endpoint.
type Config struct {
	// BaseURL of the gateway API, e.g. https://api.razorpay.com.
	BaseURL string
	// KeyID and KeySecret authenticate via HTTP basic auth.
	KeyID     string
	KeySecret string
	// Timeout bounds each gateway call. Zero means 10s.
	Timeout time.Duration
}

// Client is an HTTP client for the gateway's order-creation API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a gateway client with a bounded-timeout HTTP client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder creates a remote payment order for the given amount in minor
// currency units. Payment capture is automatic: the gateway settles the
// charge as soon as the end user completes payment.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string) (*checkout.GatewayOrder, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build order request")
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call gateway")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read gateway response")
	}

	var parsed createOrderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrapf(err, "parse gateway response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, errors.Errorf("gateway rejected order (status %d): %s",
				resp.StatusCode, parsed.Error.Description)
		}
		return nil, errors.Errorf("gateway rejected order: status %d", resp.StatusCode)
	}
	if parsed.ID == "" {
		return nil, errors.New("gateway returned empty order id")
	}

	return &checkout.GatewayOrder{ID: parsed.ID, Raw: body}, nil
}
