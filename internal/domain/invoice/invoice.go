// Package invoice models the payment gateway's view of a requested payment.
// Invoices are owned by the gateway; this service only reads them, or asks the
// gateway to create one.
package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the gateway-reported lifecycle status of an invoice
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPaid      Status = "PAID"
	StatusConfirmed Status = "CONFIRMED"
	StatusComplete  Status = "COMPLETE"
	StatusExpired   Status = "EXPIRED"
	StatusInvalid   Status = "INVALID"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusPaid:      {},
	StatusConfirmed: {},
	StatusComplete:  {},
	StatusExpired:   {},
	StatusInvalid:   {},
}

// ParseStatus normalizes a wire status. Unknown values are returned verbatim
// so they can be logged; IsKnown reports whether the status is recognized.
func ParseStatus(raw string) Status {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownStatuses[s]; ok {
		return s
	}
	return Status(raw)
}

// IsKnown reports whether s is one of the statuses the gateway documents
func (s Status) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// UnmarshalJSON accepts the gateway's lower-case statuses
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invoice status must be a string: %w", err)
	}
	*s = ParseStatus(raw)
	return nil
}

// ExceptionStatus carries the gateway's exception flag. On the wire it is
// either the boolean false or a string such as "paidPartial" or "paidOver".
type ExceptionStatus string

// ExceptionNone is the normalized form of a false exception status
const ExceptionNone ExceptionStatus = ""

// UnmarshalJSON accepts both the boolean and the string wire forms
func (e *ExceptionStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*e = ExceptionNone
		return nil
	case bytes.Equal(data, []byte("true")):
		*e = "true"
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid exception status %s: %w", string(data), err)
	}
	*e = ExceptionStatus(raw)
	return nil
}

// MarshalJSON writes false for ExceptionNone, mirroring the gateway
func (e ExceptionStatus) MarshalJSON() ([]byte, error) {
	if e == ExceptionNone {
		return []byte("false"), nil
	}
	return json.Marshal(string(e))
}

// String returns "false" for ExceptionNone so logs match the gateway payload
func (e ExceptionStatus) String() string {
	if e == ExceptionNone {
		return "false"
	}
	return string(e)
}

// Invoice is the gateway's authoritative invoice record
type Invoice struct {
	ID              string          `json:"id"`
	URL             string          `json:"url,omitempty"`
	Status          Status          `json:"status"`
	ExceptionStatus ExceptionStatus `json:"exceptionStatus"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency,omitempty"`
	OrderID         string          `json:"orderId,omitempty"`
	ItemDesc        string          `json:"itemDesc,omitempty"`
	InvoiceTime     Timestamp       `json:"invoiceTime,omitempty"`
	ExpirationTime  Timestamp       `json:"expirationTime,omitempty"`

	// DecodeProblems lists informational fields that arrived in an
	// unexpected shape and were left at their zero value.
	DecodeProblems []string `json:"-"`
}

// UnmarshalJSON decodes the gateway payload. Status and identifiers are
// strict. Exception status, price and timestamps only feed logs, so a bad
// value there is recorded in DecodeProblems instead of failing the decode.
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID              string          `json:"id"`
		URL             string          `json:"url"`
		Status          Status          `json:"status"`
		Currency        string          `json:"currency"`
		OrderID         string          `json:"orderId"`
		ItemDesc        string          `json:"itemDesc"`
		ExceptionStatus json.RawMessage `json:"exceptionStatus"`
		Price           json.RawMessage `json:"price"`
		InvoiceTime     json.RawMessage `json:"invoiceTime"`
		ExpirationTime  json.RawMessage `json:"expirationTime"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*inv = Invoice{
		ID:       wire.ID,
		URL:      wire.URL,
		Status:   wire.Status,
		Currency: wire.Currency,
		OrderID:  wire.OrderID,
		ItemDesc: wire.ItemDesc,
	}

	var exception ExceptionStatus
	if inv.decodeOptional("exceptionStatus", wire.ExceptionStatus, &exception) {
		inv.ExceptionStatus = exception
	}
	var price decimal.Decimal
	if inv.decodeOptional("price", wire.Price, &price) {
		inv.Price = price
	}
	var invoiceTime, expirationTime Timestamp
	if inv.decodeOptional("invoiceTime", wire.InvoiceTime, &invoiceTime) {
		inv.InvoiceTime = invoiceTime
	}
	if inv.decodeOptional("expirationTime", wire.ExpirationTime, &expirationTime) {
		inv.ExpirationTime = expirationTime
	}
	return nil
}

func (inv *Invoice) decodeOptional(field string, raw json.RawMessage, target json.Unmarshaler) bool {
	if len(raw) == 0 {
		return false
	}
	if err := target.UnmarshalJSON(raw); err != nil {
		inv.DecodeProblems = append(inv.DecodeProblems, field+": "+err.Error())
		return false
	}
	return true
}

// Buyer identifies the payer on invoice creation
type Buyer struct {
	Email string `json:"email,omitempty"`
}

// Item describes what is being paid for
type Item struct {
	Code        string
	Description string
	Price       decimal.Decimal
}

// Draft is a request to create a new invoice
type Draft struct {
	Buyer           Buyer
	Item            Item
	Currency        string
	OrderID         string
	NotificationURL string
	RedirectURL     string
}

// Validate checks the fields the gateway requires
func (d *Draft) Validate() error {
	if !d.Item.Price.IsPositive() {
		return ErrInvalidDraft{Reason: "price must be positive"}
	}
	if len(d.Currency) != 3 {
		return ErrInvalidDraft{Reason: "currency must be a 3-letter code"}
	}
	if d.OrderID == "" {
		return ErrInvalidDraft{Reason: "order id is required"}
	}
	if d.NotificationURL == "" {
		return ErrInvalidDraft{Reason: "notification url is required"}
	}
	return nil
}

// Timestamp is a millisecond Unix timestamp as used by the gateway
type Timestamp struct {
	time.Time
}

// UnmarshalJSON decodes a millisecond epoch number
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid millisecond timestamp %s: %w", string(data), err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

// MarshalJSON encodes as a millisecond epoch number
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UnixMilli())
}
