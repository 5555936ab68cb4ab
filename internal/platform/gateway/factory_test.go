package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/domain/processor"
)

func TestFactory_ForProcessor(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"id":"inv_live","status":"paid","price":1}}`)
	}))
	defer live.Close()
	test := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"id":"inv_test","status":"new","price":1}}`)
	}))
	defer test.Close()

	factory := NewFactory(newTestLogger(), config.GatewayConfig{
		LiveBaseURL: live.URL,
		TestBaseURL: test.URL,
		Timeout:     time.Second,
	})

	t.Run("LiveMode", func(t *testing.T) {
		gw, err := factory.ForProcessor(&processor.Processor{ID: 1, Token: "tok"})
		require.NoError(t, err)

		inv, err := gw.FetchInvoice(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "inv_live", inv.ID)
	})

	t.Run("TestMode", func(t *testing.T) {
		gw, err := factory.ForProcessor(&processor.Processor{ID: 2, Token: "tok", IsTest: true})
		require.NoError(t, err)

		inv, err := gw.FetchInvoice(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "inv_test", inv.ID)
	})

	t.Run("SiteURLOverride", func(t *testing.T) {
		gw, err := factory.ForProcessor(&processor.Processor{ID: 3, Token: "tok", SiteURL: test.URL})
		require.NoError(t, err)

		inv, err := gw.FetchInvoice(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "inv_test", inv.ID)
	})

	t.Run("SendsAPIKey", func(t *testing.T) {
		var identity string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity = r.Header.Get(IdentityHeader)
			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_key","status":"new","price":1}}`)
		}))
		defer server.Close()

		gw, err := factory.ForProcessor(&processor.Processor{ID: 5, Token: "tok", APIKey: "key-123", SiteURL: server.URL})
		require.NoError(t, err)

		_, err = gw.FetchInvoice(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "key-123", identity)
	})

	t.Run("NoAPIKeyNoHeader", func(t *testing.T) {
		seen := true
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, seen = r.Header[IdentityHeader]
			writeJSON(w, http.StatusOK, `{"data":{"id":"inv_nokey","status":"new","price":1}}`)
		}))
		defer server.Close()

		gw, err := factory.ForProcessor(&processor.Processor{ID: 6, Token: "tok", SiteURL: server.URL})
		require.NoError(t, err)

		_, err = gw.FetchInvoice(context.Background(), "x")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("MissingToken", func(t *testing.T) {
		gw, err := factory.ForProcessor(&processor.Processor{ID: 4})
		assert.Nil(t, gw)
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}
