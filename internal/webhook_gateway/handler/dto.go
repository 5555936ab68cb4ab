package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/reconciler"
)

// WebhookPayload is the part of a gateway notification we read. Every other
// field, including the status, is ignored; the invoice is re-fetched.
type WebhookPayload struct {
	ID string `json:"id"`
}

// ProcessorQuery binds the processor id the notification URL carries
type ProcessorQuery struct {
	ProcessorID int64 `form:"processor_id" binding:"required,gt=0"`
}

// WebhookResponse acknowledges a notification
type WebhookResponse struct {
	InvoiceID       string `json:"invoice_id"`
	InvoiceStatus   string `json:"invoice_status"`
	ExceptionStatus string `json:"exception_status"`
	Action          string `json:"action"`
	Outcome         string `json:"outcome"`
	TransactionID   string `json:"transaction_id,omitempty"`
	PreviousStatus  string `json:"previous_status,omitempty"`
	Status          string `json:"status,omitempty"`
}

// CreateInvoiceRequest opens a payment for a merchant order
type CreateInvoiceRequest struct {
	OrderRef    string          `json:"order_ref" binding:"required,max=128"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	Description string          `json:"description" binding:"max=255"`
	ItemCode    string          `json:"item_code" binding:"max=64"`
	BuyerEmail  string          `json:"buyer_email" binding:"omitempty,email"`
	RedirectURL string          `json:"redirect_url" binding:"omitempty,url"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string `json:"id"`
	OrderRef    string `json:"order_ref"`
	TrxnID      string `json:"trxn_id,omitempty"`
	ProcessorID int64  `json:"processor_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	InvoiceURL  string `json:"invoice_url,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	FinalizedAt string `json:"finalized_at,omitempty"`
}

// StatusEventResponse is one status change recorded in the outbox
type StatusEventResponse struct {
	ID        int64           `json:"id"`
	EventType string          `json:"event_type"`
	Status    string          `json:"publish_status"`
	Attempts  int             `json:"attempts"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
}

// NotificationResponse is one received webhook
type NotificationResponse struct {
	EventID       string `json:"event_id"`
	InvoiceStatus string `json:"invoice_status,omitempty"`
	Outcome       string `json:"outcome"`
	Error         string `json:"error,omitempty"`
	ReceivedAt    string `json:"received_at"`
}

// ListQuery bounds list endpoints
type ListQuery struct {
	Limit int64 `form:"limit,default=50" binding:"min=1,max=500"`
}

func mapResultToResponse(r *reconciler.Result) WebhookResponse {
	resp := WebhookResponse{
		InvoiceID:       r.InvoiceID,
		InvoiceStatus:   string(r.InvoiceStatus),
		ExceptionStatus: r.ExceptionStatus.String(),
		Action:          string(r.Action),
		Outcome:         string(r.Outcome),
		PreviousStatus:  string(r.PreviousStatus),
		Status:          string(r.Status),
	}
	if r.TransactionID != uuid.Nil {
		resp.TransactionID = r.TransactionID.String()
	}
	return resp
}

func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          txn.ID.String(),
		OrderRef:    txn.OrderRef,
		TrxnID:      txn.TrxnID,
		ProcessorID: txn.ProcessorID,
		Amount:      txn.Amount.String(),
		Currency:    txn.Currency,
		Description: txn.Description,
		InvoiceURL:  txn.InvoiceURL,
		Status:      string(txn.Status),
		CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   txn.UpdatedAt.Format(time.RFC3339),
	}
	if txn.FinalizedAt != nil {
		resp.FinalizedAt = txn.FinalizedAt.Format(time.RFC3339)
	}
	return resp
}

func mapStatusEventToResponse(m *outbox.Message) StatusEventResponse {
	return StatusEventResponse{
		ID:        m.ID,
		EventType: string(m.EventType),
		Status:    string(m.Status),
		Attempts:  m.Attempts,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func mapNotificationToResponse(r *notification.Record) NotificationResponse {
	return NotificationResponse{
		EventID:       r.EventID.String(),
		InvoiceStatus: r.InvoiceStatus,
		Outcome:       r.Outcome,
		Error:         r.Error,
		ReceivedAt:    r.ReceivedAt.Format(time.RFC3339),
	}
}
