package invoice

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected Status
		known    bool
	}{
		{"new", StatusNew, true},
		{"paid", StatusPaid, true},
		{"Confirmed", StatusConfirmed, true},
		{"complete", StatusComplete, true},
		{" expired ", StatusExpired, true},
		{"INVALID", StatusInvalid, true},
		{"refunded", Status("refunded"), false},
		{"", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseStatus(tt.raw)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.known, got.IsKnown())
		})
	}
}

func TestInvoice_UnmarshalGatewayPayload(t *testing.T) {
	t.Run("ExceptionStatusFalse", func(t *testing.T) {
		payload := `{
			"id": "JxXzcMZ9Q6qTGkCnYvwqWo",
			"url": "https://test.bitpay.com/invoice?id=JxXzcMZ9Q6qTGkCnYvwqWo",
			"status": "confirmed",
			"exceptionStatus": false,
			"price": 10.5,
			"currency": "USD",
			"orderId": "42",
			"invoiceTime": 1700000000000,
			"expirationTime": 1700000900000
		}`

		var inv Invoice
		require.NoError(t, json.Unmarshal([]byte(payload), &inv))

		assert.Equal(t, "JxXzcMZ9Q6qTGkCnYvwqWo", inv.ID)
		assert.Equal(t, StatusConfirmed, inv.Status)
		assert.Equal(t, ExceptionNone, inv.ExceptionStatus)
		assert.Equal(t, "false", inv.ExceptionStatus.String())
		assert.True(t, decimal.RequireFromString("10.5").Equal(inv.Price))
		assert.Equal(t, "42", inv.OrderID)
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), inv.InvoiceTime.Time)
		assert.Equal(t, 15*time.Minute, inv.ExpirationTime.Sub(inv.InvoiceTime.Time))
	})

	t.Run("ExceptionStatusString", func(t *testing.T) {
		var inv Invoice
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"paid","exceptionStatus":"paidPartial","price":"1.00"}`), &inv))
		assert.Equal(t, ExceptionStatus("paidPartial"), inv.ExceptionStatus)
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("UnknownStatusPreserved", func(t *testing.T) {
		var inv Invoice
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"declined","price":1}`), &inv))
		assert.Equal(t, Status("declined"), inv.Status)
		assert.False(t, inv.Status.IsKnown())
	})

	t.Run("InformationalFieldsLenient", func(t *testing.T) {
		payload := `{
			"id": "a",
			"status": "confirmed",
			"exceptionStatus": {"code": 3},
			"price": "ten",
			"invoiceTime": "yesterday",
			"expirationTime": 1700000900000
		}`

		var inv Invoice
		require.NoError(t, json.Unmarshal([]byte(payload), &inv))
		assert.Equal(t, "a", inv.ID)
		assert.Equal(t, StatusConfirmed, inv.Status)
		assert.Equal(t, ExceptionNone, inv.ExceptionStatus)
		assert.True(t, inv.Price.IsZero())
		assert.True(t, inv.InvoiceTime.IsZero())
		assert.Equal(t, time.UnixMilli(1700000900000).UTC(), inv.ExpirationTime.Time)
		require.Len(t, inv.DecodeProblems, 3)
		assert.Contains(t, inv.DecodeProblems[0], "exceptionStatus")
		assert.Contains(t, inv.DecodeProblems[1], "price")
		assert.Contains(t, inv.DecodeProblems[2], "invoiceTime")
	})

	t.Run("WellFormedHasNoProblems", func(t *testing.T) {
		var inv Invoice
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"new","exceptionStatus":false,"price":1}`), &inv))
		assert.Empty(t, inv.DecodeProblems)
	})

	t.Run("NonStringStatusRejected", func(t *testing.T) {
		var inv Invoice
		err := json.Unmarshal([]byte(`{"id":"a","status":3}`), &inv)
		assert.Error(t, err)
	})
}

func TestExceptionStatus_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A ExceptionStatus `json:"a"`
		B ExceptionStatus `json:"b"`
	}{A: ExceptionNone, B: "paidOver"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":false,"b":"paidOver"}`, string(out))
}

func TestDraft_Validate(t *testing.T) {
	valid := func() *Draft {
		return &Draft{
			Buyer:           Buyer{Email: "donor@example.org"},
			Item:            Item{Code: "donation", Description: "Donation", Price: decimal.RequireFromString("25.00")},
			Currency:        "EUR",
			OrderID:         "contrib-1",
			NotificationURL: "https://crm.example.org/api/v1/webhooks/gateway?processor_id=1",
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(d *Draft)
		reason string
	}{
		{"ZeroPrice", func(d *Draft) { d.Item.Price = decimal.Zero }, "price must be positive"},
		{"BadCurrency", func(d *Draft) { d.Currency = "EURO" }, "currency must be a 3-letter code"},
		{"MissingOrder", func(d *Draft) { d.OrderID = "" }, "order id is required"},
		{"MissingNotificationURL", func(d *Draft) { d.NotificationURL = "" }, "notification url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			err := d.Validate()
			var draftErr ErrInvalidDraft
			require.True(t, errors.As(err, &draftErr))
			assert.Equal(t, tt.reason, draftErr.Reason)
		})
	}
}

func TestErrInvoiceNotFound_Is(t *testing.T) {
	err := ErrInvoiceNotFound{ID: "inv-1"}
	assert.True(t, errors.Is(err, ErrInvoiceNotFound{}))
	assert.True(t, errors.Is(err, ErrInvoiceNotFound{ID: "inv-1"}))
	assert.False(t, errors.Is(err, ErrInvoiceNotFound{ID: "inv-2"}))
}
