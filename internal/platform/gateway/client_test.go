package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoice-reconciler/internal/domain/invoice"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_RequiresToken(t *testing.T) {
	client, err := New("https://test.bitpay.com", " ")
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_FetchInvoice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/invoices/inv_1", r.URL.Path)
			assert.Equal(t, "tok", r.URL.Query().Get("token"))
			assert.Equal(t, "2.0.0", r.Header.Get("X-Accept-Version"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_1","status":"confirmed","exceptionStatus":false,"price":25.5,"currency":"USD","invoiceTime":1700000000000}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		inv, err := client.FetchInvoice(context.Background(), "inv_1")
		require.NoError(t, err)
		assert.Equal(t, "inv_1", inv.ID)
		assert.Equal(t, invoice.StatusConfirmed, inv.Status)
		assert.Equal(t, invoice.ExceptionNone, inv.ExceptionStatus)
		assert.True(t, decimal.RequireFromString("25.5").Equal(inv.Price))
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), inv.InvoiceTime.Time)
	})

	t.Run("MissingIDKeepsRequested", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":{"status":"paid","price":"1.00"}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		inv, err := client.FetchInvoice(context.Background(), "inv_2")
		require.NoError(t, err)
		assert.Equal(t, "inv_2", inv.ID)
		assert.Equal(t, invoice.StatusPaid, inv.Status)
	})

	t.Run("MalformedInformationalFields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_3","status":"complete","exceptionStatus":7,"price":"n/a","invoiceTime":"soon"}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		inv, err := client.FetchInvoice(context.Background(), "inv_3")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusComplete, inv.Status)
		assert.True(t, inv.Price.IsZero())
		assert.True(t, inv.InvoiceTime.IsZero())
		assert.Len(t, inv.DecodeProblems, 3)
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"error":"Object not found"}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.FetchInvoice(context.Background(), "inv_missing")
		assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound{ID: "inv_missing"})
	})

	t.Run("Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"Invalid token"}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.FetchInvoice(context.Background(), "inv_1")
		var unexpected ErrUnexpectedStatus
		require.True(t, errors.As(err, &unexpected))
		assert.Equal(t, http.StatusUnauthorized, unexpected.StatusCode)
		assert.Equal(t, "Invalid token", unexpected.Message)
	})

	t.Run("EmptyData", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.FetchInvoice(context.Background(), "inv_1")
		var malformed ErrMalformedResponse
		assert.True(t, errors.As(err, &malformed))
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client, err := New(url, "tok", WithLogger(newTestLogger()), WithTimeout(time.Second))
		require.NoError(t, err)

		_, err = client.FetchInvoice(context.Background(), "inv_1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch invoice inv_1")
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				writeJSON(w, http.StatusServiceUnavailable, `{"error":"busy"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_1","status":"complete","price":1}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok",
			WithLogger(newTestLogger()),
			WithRetryCount(1),
			WithRetryWaitTime(time.Millisecond),
		)
		require.NoError(t, err)

		inv, err := client.FetchInvoice(context.Background(), "inv_1")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusComplete, inv.Status)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}

func TestClient_CreateInvoice(t *testing.T) {
	draft := &invoice.Draft{
		Buyer:           invoice.Buyer{Email: "donor@example.org"},
		Item:            invoice.Item{Code: "contribution", Description: "Annual membership", Price: decimal.RequireFromString("25.00")},
		Currency:        "usd",
		OrderID:         "ORD-1",
		NotificationURL: "https://crm.example.org/api/v1/webhooks/gateway?processor_id=1",
		RedirectURL:     "https://crm.example.org/thanks",
	}

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/invoices", r.URL.Path)

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "tok", body["token"])
			assert.Equal(t, 25.0, body["price"])
			assert.Equal(t, "USD", body["currency"])
			assert.Equal(t, "ORD-1", body["orderId"])
			assert.Equal(t, "contribution", body["itemCode"])
			assert.Equal(t, "Annual membership", body["itemDesc"])
			assert.Equal(t, draft.NotificationURL, body["notificationURL"])
			assert.Equal(t, map[string]any{"email": "donor@example.org"}, body["buyer"])

			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_new","url":"https://test.bitpay.com/invoice?id=inv_new","status":"new","price":25}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		inv, err := client.CreateInvoice(context.Background(), draft)
		require.NoError(t, err)
		assert.Equal(t, "inv_new", inv.ID)
		assert.Equal(t, "https://test.bitpay.com/invoice?id=inv_new", inv.URL)
		assert.Equal(t, invoice.StatusNew, inv.Status)
	})

	t.Run("InvalidDraft", func(t *testing.T) {
		client, err := New("http://127.0.0.1:1", "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.CreateInvoice(context.Background(), &invoice.Draft{Currency: "USD"})
		var invalid invoice.ErrInvalidDraft
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":"Invalid currency"}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.CreateInvoice(context.Background(), draft)
		assert.Equal(t, ErrUnexpectedStatus{StatusCode: http.StatusBadRequest, Message: "Invalid currency"}, err)
	})

	t.Run("NoInvoiceID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":{"status":"new"}}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "tok", WithLogger(newTestLogger()))
		require.NoError(t, err)

		_, err = client.CreateInvoice(context.Background(), draft)
		var malformed ErrMalformedResponse
		assert.True(t, errors.As(err, &malformed))
	})
}
