package service

// ErrInvoiceCreationFailed indicates the gateway did not create the invoice.
// The transaction stays in the created state.
type ErrInvoiceCreationFailed struct {
	OrderRef string
	Cause    error
}

func (e ErrInvoiceCreationFailed) Error() string {
	return "gateway failed to create invoice for order " + e.OrderRef + ": " + e.Cause.Error()
}

func (e ErrInvoiceCreationFailed) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface for ErrInvoiceCreationFailed
func (e ErrInvoiceCreationFailed) Is(target error) bool {
	t, ok := target.(ErrInvoiceCreationFailed)
	if !ok {
		return false
	}
	return t.OrderRef == "" || t.OrderRef == e.OrderRef
}

// ErrNotificationsUnavailable indicates no audit store is configured
type ErrNotificationsUnavailable struct{}

func (ErrNotificationsUnavailable) Error() string {
	return "notification history is not available"
}
