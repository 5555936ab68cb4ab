package invoice

import "context"

// Gateway is the payment gateway client used by reconciliation and invoice creation
type Gateway interface {
	FetchInvoice(ctx context.Context, id string) (*Invoice, error)
	CreateInvoice(ctx context.Context, draft *Draft) (*Invoice, error)
}

// ErrInvoiceNotFound indicates the gateway does not know the invoice
type ErrInvoiceNotFound struct {
	ID string
}

func (e ErrInvoiceNotFound) Error() string {
	return "invoice not found at gateway: " + e.ID
}

// Is implements the errors.Is interface for ErrInvoiceNotFound
func (e ErrInvoiceNotFound) Is(target error) bool {
	t, ok := target.(ErrInvoiceNotFound)
	if !ok {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// ErrInvalidDraft indicates an invoice draft is missing required data
type ErrInvalidDraft struct {
	Reason string
}

func (e ErrInvalidDraft) Error() string {
	return "invalid invoice draft: " + e.Reason
}
