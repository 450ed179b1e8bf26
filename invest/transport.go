package invest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// transport wraps resty with bearer auth and the error-kind mapping of the
// service's response conventions. It is goroutine-safe and deliberately
// carries no retry policy: the caller decides whether to retry.
type transport struct {
	client *resty.Client
}

func newTransport(baseURL, token string, timeout time.Duration, hc *http.Client) *transport {
	var c *resty.Client
	if hc != nil {
		c = resty.NewWithClient(hc)
	} else {
		c = resty.New()
	}

	c.SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tinvest-client/1.0")

	return &transport{client: c}
}

// call POSTs the JSON body to endpoint and decodes a 2xx response into out.
// Non-2xx responses and network failures come back as *Error values.
func (t *transport) call(ctx context.Context, endpoint string, body, out any) error {
	if body == nil {
		body = struct{}{}
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return newTransportError("request to "+endpoint+" failed", err)
	}

	if resp.IsError() {
		return errorFromResponse(resp)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return newServiceError("decode response from %s: %v", endpoint, err)
		}
	}
	return nil
}

// apiError is the error body shape of the gateway: a gRPC-style code plus
// message and description. The code field shows up both as a number and a
// string depending on the failing layer.
type apiError struct {
	Code        json.RawMessage `json:"code"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

func (e apiError) codeString() string {
	return string(bytes.Trim(e.Code, `"`))
}

// Business-rule error codes of the remote service.
const (
	codeInsufficientFunds  = "30042"
	codeInstrumentNotFound = "50002"
	codeOrderNotFound      = "50005"
	codeStopOrderNotFound  = "50006"
)

func errorFromResponse(resp *resty.Response) error {
	var body apiError
	_ = json.Unmarshal(resp.Body(), &body)

	msg := body.Message
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body()))
	}
	if msg == "" {
		msg = resp.Status()
	}

	e := &Error{
		Kind:       classify(resp.StatusCode(), body.codeString(), body.Description),
		StatusCode: resp.StatusCode(),
		Code:       body.codeString(),
		Message:    msg,
		TrackingID: resp.Header().Get("x-tracking-id"),
	}
	return e
}

// classify maps a response to an error kind. Business codes take precedence
// over the HTTP status; the gateway reports them either in the code field or
// in the description, depending on the failing layer.
func classify(status int, code, description string) ErrorKind {
	switch {
	case code == codeInsufficientFunds || description == codeInsufficientFunds:
		return KindInsufficientFunds
	case code == codeInstrumentNotFound || description == codeInstrumentNotFound,
		code == codeOrderNotFound || description == codeOrderNotFound,
		code == codeStopOrderNotFound || description == codeStopOrderNotFound:
		return KindNotFound
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusNotFound:
		return KindNotFound
	}

	return KindService
}
