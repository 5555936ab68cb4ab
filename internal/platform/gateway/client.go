// Package gateway is the HTTP client for the payment gateway's invoice API.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/invoice-reconciler/internal/domain/invoice"
)

// IdentityHeader carries the processor's API key
const IdentityHeader = "X-Identity"

// Client talks to one gateway host on behalf of one pairing token
type Client struct {
	http    *resty.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

var _ invoice.Gateway = (*Client)(nil)

// envelope is the gateway's success wrapper
type envelope struct {
	Data *invoice.Invoice `json:"data"`
}

// errorBody is the gateway's failure wrapper
type errorBody struct {
	Error string `json:"error"`
}

// createInvoiceRequest is the wire form of an invoice draft
type createInvoiceRequest struct {
	Token           string        `json:"token"`
	Price           json.Number   `json:"price"`
	Currency        string        `json:"currency"`
	OrderID         string        `json:"orderId"`
	ItemDesc        string        `json:"itemDesc,omitempty"`
	ItemCode        string        `json:"itemCode,omitempty"`
	NotificationURL string        `json:"notificationURL"`
	RedirectURL     string        `json:"redirectURL,omitempty"`
	Buyer           invoice.Buyer `json:"buyer"`
}

// New creates a client for baseURL authenticating with token
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetRetryCount(o.retryCount).
		SetRetryWaitTime(o.retryWaitTime).
		SetHeader("Accept", "application/json").
		SetHeader("X-Accept-Version", o.apiVersion).
		SetHeader("User-Agent", o.userAgent).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	if o.identity != "" {
		httpClient.SetHeader(IdentityHeader, o.identity)
	}

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		token:   token,
		logger:  o.logger,
	}, nil
}

// FetchInvoice retrieves the authoritative invoice state. When the gateway
// omits the id in its response the requested id is kept.
func (c *Client) FetchInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	var result envelope
	var failure errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("token", c.token).
		SetResult(&result).
		SetError(&failure).
		Get("/invoices/{id}")
	if err != nil {
		c.logger.Error("Gateway invoice fetch failed", "invoice_id", id, "error", err)
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}

	c.logger.Debug("Gateway invoice fetched",
		"invoice_id", id,
		"status_code", resp.StatusCode(),
		"duration", resp.Time().String(),
	)

	if resp.StatusCode() == http.StatusNotFound {
		return nil, invoice.ErrInvoiceNotFound{ID: id}
	}
	if resp.IsError() || !resp.IsSuccess() {
		return nil, ErrUnexpectedStatus{StatusCode: resp.StatusCode(), Message: failure.Error}
	}
	if result.Data == nil {
		return nil, ErrMalformedResponse{Reason: "missing data for invoice " + id}
	}

	inv := result.Data
	if inv.ID == "" {
		inv.ID = id
	}
	return inv, nil
}

// CreateInvoice registers a new invoice with the gateway
func (c *Client) CreateInvoice(ctx context.Context, draft *invoice.Draft) (*invoice.Invoice, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	body := createInvoiceRequest{
		Token:           c.token,
		Price:           json.Number(draft.Item.Price.String()),
		Currency:        strings.ToUpper(draft.Currency),
		OrderID:         draft.OrderID,
		ItemDesc:        draft.Item.Description,
		ItemCode:        draft.Item.Code,
		NotificationURL: draft.NotificationURL,
		RedirectURL:     draft.RedirectURL,
		Buyer:           draft.Buyer,
	}

	var result envelope
	var failure errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		SetError(&failure).
		Post("/invoices")
	if err != nil {
		c.logger.Error("Gateway invoice creation failed", "order_id", draft.OrderID, "error", err)
		return nil, fmt.Errorf("failed to create invoice for order %s: %w", draft.OrderID, err)
	}

	if resp.IsError() || !resp.IsSuccess() {
		c.logger.Warn("Gateway rejected invoice",
			"order_id", draft.OrderID,
			"status_code", resp.StatusCode(),
			"error", failure.Error,
		)
		return nil, ErrUnexpectedStatus{StatusCode: resp.StatusCode(), Message: failure.Error}
	}
	if result.Data == nil || result.Data.ID == "" {
		return nil, ErrMalformedResponse{Reason: "created invoice has no id"}
	}

	c.logger.Info("Gateway invoice created",
		"order_id", draft.OrderID,
		"invoice_id", result.Data.ID,
	)
	return result.Data, nil
}
