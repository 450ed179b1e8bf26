package invest

import (
	"context"
	"strings"
)

type sharePayload struct {
	FIGI      string `json:"figi"`
	Ticker    string `json:"ticker"`
	ClassCode string `json:"classCode"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Lot       int32  `json:"lot"`
}

type sharesResponse struct {
	Instruments []sharePayload `json:"instruments"`
}

// FindInstrument resolves a ticker to its instrument description by listing
// the base share universe and matching the ticker, case-insensitively.
// Unknown tickers fail with a not-found error.
func (c *Client) FindInstrument(ctx context.Context, ticker string) (Instrument, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Instrument{}, newValidationError("ticker must not be empty")
	}

	body := map[string]string{"instrumentStatus": "INSTRUMENT_STATUS_BASE"}
	var out sharesResponse
	if err := c.transport.call(ctx, endpointShares, body, &out); err != nil {
		return Instrument{}, err
	}

	for _, s := range out.Instruments {
		if s.Ticker == ticker {
			return Instrument{
				FIGI:      s.FIGI,
				Ticker:    s.Ticker,
				ClassCode: s.ClassCode,
				Name:      s.Name,
				Currency:  s.Currency,
				Lot:       s.Lot,
			}, nil
		}
	}
	return Instrument{}, newNotFoundError("instrument %q not found", ticker)
}

// tickersByFIGI builds a reverse lookup over the base share universe, used
// to annotate operations and positions with tickers in one listing call.
func (c *Client) tickersByFIGI(ctx context.Context) (map[string]string, error) {
	body := map[string]string{"instrumentStatus": "INSTRUMENT_STATUS_BASE"}
	var out sharesResponse
	if err := c.transport.call(ctx, endpointShares, body, &out); err != nil {
		return nil, err
	}

	m := make(map[string]string, len(out.Instruments))
	for _, s := range out.Instruments {
		m[s.FIGI] = s.Ticker
	}
	return m, nil
}
