package gateway

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a client is built without a pairing token
var ErrMissingToken = errors.New("gateway token is required")

// ErrUnexpectedStatus reports a non-2xx gateway response
type ErrUnexpectedStatus struct {
	StatusCode int
	Message    string
}

func (e ErrUnexpectedStatus) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}

// ErrMalformedResponse reports a 2xx response without a usable invoice
type ErrMalformedResponse struct {
	Reason string
}

func (e ErrMalformedResponse) Error() string {
	return "malformed gateway response: " + e.Reason
}
