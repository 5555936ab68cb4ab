package processor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_CheckConfig(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := &Processor{ID: 1, KeyPassword: "secret", Token: "tok"}
		assert.NoError(t, p.CheckConfig())
	})

	t.Run("MissingPasswordAndToken", func(t *testing.T) {
		p := &Processor{ID: 9}
		err := p.CheckConfig()

		var misconfigured ErrMisconfigured
		require.True(t, errors.As(err, &misconfigured))
		assert.Equal(t, int64(9), misconfigured.ProcessorID)
		assert.Len(t, misconfigured.Problems, 2)
		assert.Contains(t, err.Error(), "decryption password has not been set")
		assert.Contains(t, err.Error(), "pairing token has not been set")
	})
}

func TestProcessor_BaseURL(t *testing.T) {
	live := "https://bitpay.com"
	test := "https://test.bitpay.com"

	tests := []struct {
		name     string
		p        Processor
		expected string
	}{
		{"LiveDefault", Processor{}, live},
		{"TestDefault", Processor{IsTest: true}, test},
		{"LiveOverride", Processor{SiteURL: "https://pay.example.com/"}, "https://pay.example.com"},
		{"TestOverride", Processor{IsTest: true, TestSiteURL: "https://sandbox.example.com"}, "https://sandbox.example.com"},
		{"TestIgnoresLiveOverride", Processor{IsTest: true, SiteURL: "https://pay.example.com"}, test},
		{"BlankOverrideFallsBack", Processor{SiteURL: "  "}, live},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.p.BaseURL(live, test))
		})
	}
}

func TestProcessor_Mode(t *testing.T) {
	assert.Equal(t, "test", (&Processor{IsTest: true}).Mode())
	assert.Equal(t, "live", (&Processor{}).Mode())
}

func TestProcessor_NotificationURL(t *testing.T) {
	p := &Processor{ID: 12}

	u, err := p.NotificationURL("https://crm.example.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.org/api/v1/webhooks/gateway?processor_id=12", u)

	u, err = p.NotificationURL("https://crm.example.org/civicrm")
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.org/civicrm/api/v1/webhooks/gateway?processor_id=12", u)

	_, err = p.NotificationURL("://bad")
	assert.Error(t, err)
}

func TestErrProcessorNotFound(t *testing.T) {
	assert.Equal(t, "payment processor not found: 4", ErrProcessorNotFound{ProcessorID: 4}.Error())
}
