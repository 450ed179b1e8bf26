// Package invest is a thin client for the Tinkoff-style brokerage REST API:
// it authenticates with a bearer token, lists accounts, fetches instrument
// prices, submits market, limit and stop orders and queries order status.
// Every method is one request/response exchange; the client keeps no state
// beyond the immutable credential and is safe for concurrent use.
package invest

import (
	"net/http"
	"strings"
	"time"
	"unicode"
)

// DefaultBaseURL is the public REST gateway of the brokerage service.
const DefaultBaseURL = "https://invest-public-api.tinkoff.ru/rest"

// DefaultTimeout bounds every request; there is no retry on top of it.
const DefaultTimeout = 30 * time.Second

// Client is the trading API client. Construct it with New; the zero value
// is not usable.
type Client struct {
	transport *transport
	accountID string
}

type options struct {
	baseURL    string
	accountID  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option customizes client construction.
type Option func(*options)

// WithBaseURL points the client at a different gateway, e.g. the sandbox.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithAccountID selects the account used by order placement, operations and
// portfolio calls. Placement fails with a validation error when unset.
func WithAccountID(id string) Option {
	return func(o *options) { o.accountID = id }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client, e.g. for a custom
// transport or proxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds a client around token. The token is checked for shape only —
// no network call happens here; a rejected token surfaces later as an
// authentication error from the service.
func New(token string, opts ...Option) (*Client, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}

	o := options{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(o.baseURL) == "" {
		return nil, newValidationError("base URL must not be empty")
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}

	return &Client{
		transport: newTransport(o.baseURL, token, o.timeout, o.httpClient),
		accountID: o.accountID,
	}, nil
}

// NewFromConfig builds a client from a loaded Config plus the token, which
// never lives in the config file.
func NewFromConfig(token string, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, newValidationError("config must not be nil")
	}
	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithAccountID(cfg.AccountID),
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}
	return New(token, append(base, opts...)...)
}

// AccountID returns the account the client operates on, "" when unset.
func (c *Client) AccountID() string {
	return c.accountID
}

func (c *Client) requireAccount() error {
	if c.accountID == "" {
		return newValidationError("no account configured: set account_id or use WithAccountID")
	}
	return nil
}

func validateToken(token string) error {
	if token == "" {
		return newAuthenticationError("token must not be empty")
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return newAuthenticationError("token contains whitespace or control characters")
		}
	}
	return nil
}
