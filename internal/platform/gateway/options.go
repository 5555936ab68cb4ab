package gateway

import (
	"log/slog"
	"strings"
	"time"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultAPIVersion = "2.0.0"
	defaultUserAgent  = "invoice-reconciler/1.0"
)

// Option configures a Client
type Option func(*options)

type options struct {
	timeout       time.Duration
	retryCount    int
	retryWaitTime time.Duration
	apiVersion    string
	userAgent     string
	identity      string
	logger        *slog.Logger
}

func defaultOptions() *options {
	return &options{
		timeout:       defaultTimeout,
		retryWaitTime: 500 * time.Millisecond,
		apiVersion:    defaultAPIVersion,
		userAgent:     defaultUserAgent,
		logger:        slog.Default(),
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetryCount sets how many times a failed request is retried.
// Only transport errors and 5xx responses are retried.
func WithRetryCount(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retryCount = n
		}
	}
}

// WithRetryWaitTime sets the initial backoff between retries
func WithRetryWaitTime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryWaitTime = d
		}
	}
}

// WithAPIVersion sets the X-Accept-Version header
func WithAPIVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.apiVersion = v
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithIdentity sends the processor's API key in the X-Identity header
func WithIdentity(apiKey string) Option {
	return func(o *options) {
		o.identity = strings.TrimSpace(apiKey)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
