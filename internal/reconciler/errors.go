package reconciler

import "errors"

// ErrInvalidInvoiceID is returned when Reconcile is called without an invoice id
var ErrInvalidInvoiceID = errors.New("invoice id is required")

// ErrGatewayUnavailable indicates the invoice could not be fetched from the gateway
type ErrGatewayUnavailable struct {
	InvoiceID string
	Cause     error
}

func (e ErrGatewayUnavailable) Error() string {
	return "gateway unavailable for invoice " + e.InvoiceID + ": " + causeText(e.Cause)
}

func (e ErrGatewayUnavailable) Unwrap() error { return e.Cause }

// Is implements the errors.Is interface. An empty InvoiceID matches any.
func (e ErrGatewayUnavailable) Is(target error) bool {
	t, ok := target.(ErrGatewayUnavailable)
	return ok && (t.InvoiceID == "" || t.InvoiceID == e.InvoiceID)
}

// ErrLedgerUnavailable indicates the transaction lookup failed in storage
type ErrLedgerUnavailable struct {
	InvoiceID string
	Cause     error
}

func (e ErrLedgerUnavailable) Error() string {
	return "ledger unavailable for invoice " + e.InvoiceID + ": " + causeText(e.Cause)
}

func (e ErrLedgerUnavailable) Unwrap() error { return e.Cause }

// Is implements the errors.Is interface. An empty InvoiceID matches any.
func (e ErrLedgerUnavailable) Is(target error) bool {
	t, ok := target.(ErrLedgerUnavailable)
	return ok && (t.InvoiceID == "" || t.InvoiceID == e.InvoiceID)
}

// ErrLedgerWriteFailed indicates the ledger rejected or failed a mutation
type ErrLedgerWriteFailed struct {
	InvoiceID string
	Action    Action
	Cause     error
}

func (e ErrLedgerWriteFailed) Error() string {
	return "ledger write " + string(e.Action) + " failed for invoice " + e.InvoiceID + ": " + causeText(e.Cause)
}

func (e ErrLedgerWriteFailed) Unwrap() error { return e.Cause }

// Is implements the errors.Is interface. An empty InvoiceID matches any.
func (e ErrLedgerWriteFailed) Is(target error) bool {
	t, ok := target.(ErrLedgerWriteFailed)
	return ok && (t.InvoiceID == "" || t.InvoiceID == e.InvoiceID)
}

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
