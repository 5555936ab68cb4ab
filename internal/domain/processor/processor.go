// Package processor holds the configuration of a payment processor instance:
// the credentials and mode used to talk to the gateway on its behalf.
package processor

import (
	"net/url"
	"strconv"
	"strings"
)

// WebhookPath is the route the gateway posts invoice notifications to
const WebhookPath = "/api/v1/webhooks/gateway"

// Processor is a configured payment processor
type Processor struct {
	ID          int64
	Name        string
	APIKey      string // Client identity sent to the gateway when set
	KeyPassword string
	Token       string // Pairing token presented to the gateway
	SiteURL     string // Optional live base URL override
	TestSiteURL string // Optional test base URL override
	IsTest      bool
	IsActive    bool
}

// CheckConfig reports configuration problems that prevent the processor
// from talking to the gateway.
func (p *Processor) CheckConfig() error {
	var problems []string
	if p.KeyPassword == "" {
		problems = append(problems, "the decryption password has not been set")
	}
	if p.Token == "" {
		problems = append(problems, "the pairing token has not been set")
	}
	if len(problems) > 0 {
		return ErrMisconfigured{ProcessorID: p.ID, Problems: problems}
	}
	return nil
}

// Mode returns "test" or "live"
func (p *Processor) Mode() string {
	if p.IsTest {
		return "test"
	}
	return "live"
}

// BaseURL selects the gateway host for the processor's mode, preferring the
// processor's own site URL over the given defaults.
func (p *Processor) BaseURL(liveDefault, testDefault string) string {
	if p.IsTest {
		return firstNonEmpty(p.TestSiteURL, testDefault)
	}
	return firstNonEmpty(p.SiteURL, liveDefault)
}

// NotificationURL builds the webhook URL handed to the gateway for this processor
func (p *Processor) NotificationURL(publicURL string) (string, error) {
	base, err := url.Parse(strings.TrimRight(publicURL, "/"))
	if err != nil {
		return "", err
	}
	u := base.JoinPath(WebhookPath)
	q := u.Query()
	q.Set("processor_id", strconv.FormatInt(p.ID, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return ""
}
