package invest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type orderBookEntry struct {
	Price    Quotation `json:"price"`
	Quantity flexInt64 `json:"quantity"`
}

type orderBookResponse struct {
	FIGI      string           `json:"figi"`
	LastPrice Quotation        `json:"lastPrice"`
	Bids      []orderBookEntry `json:"bids"`
	Asks      []orderBookEntry `json:"asks"`
}

// GetPrice returns the current price for ticker: the last traded price when
// the service reports one, otherwise the bid/ask midpoint, otherwise the one
// quoted side. An empty book is a service error.
func (c *Client) GetPrice(ctx context.Context, ticker string) (PriceQuote, error) {
	inst, err := c.FindInstrument(ctx, ticker)
	if err != nil {
		return PriceQuote{}, err
	}

	body := map[string]any{"figi": inst.FIGI, "depth": 1}
	var book orderBookResponse
	if err := c.transport.call(ctx, endpointGetOrderBook, body, &book); err != nil {
		return PriceQuote{}, err
	}

	price, ok := priceFromBook(book)
	if !ok {
		return PriceQuote{}, newServiceError("no price available for %q", inst.Ticker)
	}

	return PriceQuote{
		Ticker:    inst.Ticker,
		FIGI:      inst.FIGI,
		LastPrice: price,
		Currency:  inst.Currency,
		Time:      time.Now().UTC(),
	}, nil
}

func priceFromBook(book orderBookResponse) (decimal.Decimal, bool) {
	if !book.LastPrice.IsZero() {
		return book.LastPrice.Decimal(), true
	}

	var bid, ask decimal.Decimal
	hasBid := len(book.Bids) > 0 && !book.Bids[0].Price.IsZero()
	hasAsk := len(book.Asks) > 0 && !book.Asks[0].Price.IsZero()
	if hasBid {
		bid = book.Bids[0].Price.Decimal()
	}
	if hasAsk {
		ask = book.Asks[0].Price.Decimal()
	}

	switch {
	case hasBid && hasAsk:
		return bid.Add(ask).Div(decimal.New(2, 0)), true
	case hasBid:
		return bid, true
	case hasAsk:
		return ask, true
	default:
		return decimal.Decimal{}, false
	}
}

// candleRangeCaps bounds the span of a single GetCandles request per
// interval; longer ranges are fetched in chunks.
var candleRangeCaps = map[CandleInterval]time.Duration{
	Interval1Min:  24 * time.Hour,
	Interval5Min:  7 * 24 * time.Hour,
	Interval15Min: 30 * 24 * time.Hour,
	IntervalHour:  30 * 24 * time.Hour,
	IntervalDay:   365 * 24 * time.Hour,
	IntervalWeek:  5 * 365 * 24 * time.Hour,
	IntervalMonth: 10 * 365 * 24 * time.Hour,
}

var candleIntervalAPIValues = map[CandleInterval]string{
	Interval1Min:  "CANDLE_INTERVAL_1_MIN",
	Interval5Min:  "CANDLE_INTERVAL_5_MIN",
	Interval15Min: "CANDLE_INTERVAL_15_MIN",
	IntervalHour:  "CANDLE_INTERVAL_HOUR",
	IntervalDay:   "CANDLE_INTERVAL_DAY",
	IntervalWeek:  "CANDLE_INTERVAL_WEEK",
	IntervalMonth: "CANDLE_INTERVAL_MONTH",
}

type candlePayload struct {
	Time   time.Time `json:"time"`
	Open   Quotation `json:"open"`
	High   Quotation `json:"high"`
	Low    Quotation `json:"low"`
	Close  Quotation `json:"close"`
	Volume flexInt64 `json:"volume"`
}

type getCandlesResponse struct {
	Candles []candlePayload `json:"candles"`
}

// GetCandles retrieves OHLCV history for ticker between from and to at the
// given interval, chunking the range at the service's per-interval cap.
// Candles come back time-ordered with duplicates at chunk boundaries
// dropped. An empty range yields an empty slice.
func (c *Client) GetCandles(ctx context.Context, ticker string, from, to time.Time, interval CandleInterval) ([]Candle, error) {
	apiInterval, ok := candleIntervalAPIValues[interval]
	if !ok {
		return nil, newValidationError("unsupported candle interval %q", interval)
	}
	if !from.Before(to) {
		return nil, newValidationError("candle range start %s is not before end %s", from, to)
	}

	inst, err := c.FindInstrument(ctx, ticker)
	if err != nil {
		return nil, err
	}

	step := candleRangeCaps[interval]
	var candles []Candle
	var lastTime time.Time

	for cur := from; cur.Before(to); {
		chunkEnd := cur.Add(step)
		if chunkEnd.After(to) {
			chunkEnd = to
		}

		body := map[string]any{
			"figi":     inst.FIGI,
			"from":     cur.UTC().Format(time.RFC3339Nano),
			"to":       chunkEnd.UTC().Format(time.RFC3339Nano),
			"interval": apiInterval,
		}
		var out getCandlesResponse
		if err := c.transport.call(ctx, endpointGetCandles, body, &out); err != nil {
			return nil, err
		}

		for _, cp := range out.Candles {
			// Chunk boundaries can repeat the edge candle.
			if !lastTime.IsZero() && !cp.Time.After(lastTime) {
				continue
			}
			lastTime = cp.Time
			candles = append(candles, Candle{
				Time:   cp.Time,
				Open:   cp.Open.Decimal(),
				High:   cp.High.Decimal(),
				Low:    cp.Low.Decimal(),
				Close:  cp.Close.Decimal(),
				Volume: int64(cp.Volume),
			})
		}

		cur = chunkEnd
	}

	return candles, nil
}
