package investobs

import (
	"context"
	"time"

	"tinvest-client/internal/logger"
	"tinvest-client/internal/trace"
	"tinvest-client/invest"

	"github.com/shopspring/decimal"
)

// observableAPI wraps an invest.API with observability (logging & tracing).
// Credentials never pass through here, so nothing sensitive can leak into
// logs or spans.
type observableAPI struct {
	api invest.API
}

// Compile-time interface check
var _ invest.API = (*observableAPI)(nil)

// Wrap wraps a trading API with observability middleware
func Wrap(api invest.API) invest.API {
	return &observableAPI{api: api}
}

// ListAccounts lists accounts with observability
func (o *observableAPI) ListAccounts(ctx context.Context) ([]invest.Account, error) {
	ctx, span := trace.StartSpan(ctx, "invest.ListAccounts")
	defer span.End()

	accounts, err := o.api.ListAccounts(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list accounts", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Accounts listed", "count", len(accounts))
	return accounts, nil
}

// FindInstrument resolves a ticker with observability
func (o *observableAPI) FindInstrument(ctx context.Context, ticker string) (invest.Instrument, error) {
	ctx, span := trace.StartSpan(ctx, "invest.FindInstrument")
	defer span.End()
	trace.SetAttr(ctx, "ticker", ticker)

	inst, err := o.api.FindInstrument(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to resolve instrument", err, "ticker", ticker)
		return invest.Instrument{}, err
	}

	logger.DebugSkip(ctx, 1, "Instrument resolved", "ticker", ticker, "figi", inst.FIGI)
	return inst, nil
}

// GetPrice fetches the current price with observability
func (o *observableAPI) GetPrice(ctx context.Context, ticker string) (invest.PriceQuote, error) {
	ctx, span := trace.StartSpan(ctx, "invest.GetPrice")
	defer span.End()
	trace.SetAttr(ctx, "ticker", ticker)

	quote, err := o.api.GetPrice(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price", err, "ticker", ticker)
		return invest.PriceQuote{}, err
	}

	logger.DebugSkip(ctx, 1, "Price fetched", "ticker", ticker, "price", quote.LastPrice.String(), "currency", quote.Currency)
	return quote, nil
}

// GetCandles fetches candle history with observability
func (o *observableAPI) GetCandles(ctx context.Context, ticker string, from, to time.Time, interval invest.CandleInterval) ([]invest.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "invest.GetCandles")
	defer span.End()
	trace.SetAttr(ctx, "ticker", ticker)

	candles, err := o.api.GetCandles(ctx, ticker, from, to, interval)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "ticker", ticker, "interval", string(interval))
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched", "ticker", ticker, "count", len(candles))
	return candles, nil
}

// PlaceMarketOrder places a market order with observability
func (o *observableAPI) PlaceMarketOrder(ctx context.Context, req invest.OrderRequest) (invest.OrderHandle, error) {
	return o.placeOrder(ctx, "invest.PlaceMarketOrder", req, o.api.PlaceMarketOrder)
}

// PlaceLimitOrder places a limit order with observability
func (o *observableAPI) PlaceLimitOrder(ctx context.Context, req invest.OrderRequest) (invest.OrderHandle, error) {
	return o.placeOrder(ctx, "invest.PlaceLimitOrder", req, o.api.PlaceLimitOrder)
}

// PlaceStopOrder places a stop order with observability
func (o *observableAPI) PlaceStopOrder(ctx context.Context, req invest.OrderRequest) (invest.OrderHandle, error) {
	return o.placeOrder(ctx, "invest.PlaceStopOrder", req, o.api.PlaceStopOrder)
}

func (o *observableAPI) placeOrder(ctx context.Context, spanName string, req invest.OrderRequest, place func(context.Context, invest.OrderRequest) (invest.OrderHandle, error)) (invest.OrderHandle, error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer span.End()

	logger.InfoSkip(ctx, 2, "Placing order",
		"ticker", req.Ticker,
		"direction", string(req.Direction),
		"quantity", req.Quantity,
		"kind", string(req.Kind),
	)

	handle, err := place(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "Failed to place order", err,
			"ticker", req.Ticker,
			"direction", string(req.Direction),
			"quantity", req.Quantity,
			"kind", string(req.Kind),
		)
		return invest.OrderHandle{}, err
	}

	logger.InfoSkip(ctx, 2, "Order placed",
		"ticker", req.Ticker,
		"order_id", handle.ID,
		"stop", handle.Stop,
	)
	return handle, nil
}

// Buy places a buy order with observability
func (o *observableAPI) Buy(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (invest.OrderHandle, error) {
	ctx, span := trace.StartSpan(ctx, "invest.Buy")
	defer span.End()

	handle, err := o.api.Buy(ctx, ticker, quantity, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place buy order", err, "ticker", ticker, "quantity", quantity)
		return invest.OrderHandle{}, err
	}

	logger.InfoSkip(ctx, 1, "Buy order placed", "ticker", ticker, "order_id", handle.ID)
	return handle, nil
}

// Sell places a sell order with observability
func (o *observableAPI) Sell(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (invest.OrderHandle, error) {
	ctx, span := trace.StartSpan(ctx, "invest.Sell")
	defer span.End()

	handle, err := o.api.Sell(ctx, ticker, quantity, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place sell order", err, "ticker", ticker, "quantity", quantity)
		return invest.OrderHandle{}, err
	}

	logger.InfoSkip(ctx, 1, "Sell order placed", "ticker", ticker, "order_id", handle.ID)
	return handle, nil
}

// GetOrderStatus queries order status with observability
func (o *observableAPI) GetOrderStatus(ctx context.Context, handle invest.OrderHandle) (invest.OrderStatus, error) {
	ctx, span := trace.StartSpan(ctx, "invest.GetOrderStatus")
	defer span.End()
	trace.SetAttr(ctx, "order_id", handle.ID)

	status, err := o.api.GetOrderStatus(ctx, handle)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to query order status", err, "order_id", handle.ID)
		return invest.OrderStatus{}, err
	}

	logger.DebugSkip(ctx, 1, "Order status fetched",
		"order_id", handle.ID,
		"status", string(status.Kind),
		"filled", status.FilledQuantity,
	)
	return status, nil
}

// CancelOrder cancels an order with observability
func (o *observableAPI) CancelOrder(ctx context.Context, handle invest.OrderHandle) error {
	ctx, span := trace.StartSpan(ctx, "invest.CancelOrder")
	defer span.End()
	trace.SetAttr(ctx, "order_id", handle.ID)

	if err := o.api.CancelOrder(ctx, handle); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to cancel order", err, "order_id", handle.ID)
		return err
	}

	logger.InfoSkip(ctx, 1, "Order cancelled", "order_id", handle.ID, "stop", handle.Stop)
	return nil
}

// GetOperations fetches operations history with observability
func (o *observableAPI) GetOperations(ctx context.Context, from, to time.Time) ([]invest.Operation, error) {
	ctx, span := trace.StartSpan(ctx, "invest.GetOperations")
	defer span.End()

	ops, err := o.api.GetOperations(ctx, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch operations", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Operations fetched", "count", len(ops))
	return ops, nil
}

// GetPositions fetches portfolio positions with observability
func (o *observableAPI) GetPositions(ctx context.Context) ([]invest.Position, error) {
	ctx, span := trace.StartSpan(ctx, "invest.GetPositions")
	defer span.End()

	positions, err := o.api.GetPositions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched", "count", len(positions))
	return positions, nil
}
