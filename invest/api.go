package invest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// API is the full trading surface of the client. Wrap implementations with
// investobs.Wrap for logging and tracing.
type API interface {
	// ListAccounts returns the accounts visible to the token
	ListAccounts(ctx context.Context) ([]Account, error)

	// FindInstrument resolves a ticker to its instrument description
	FindInstrument(ctx context.Context, ticker string) (Instrument, error)

	// GetPrice returns the current price for a ticker
	GetPrice(ctx context.Context, ticker string) (PriceQuote, error)

	// GetCandles retrieves OHLCV history for a ticker
	GetCandles(ctx context.Context, ticker string, from, to time.Time, interval CandleInterval) ([]Candle, error)

	// PlaceMarketOrder submits a market order
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderHandle, error)

	// PlaceLimitOrder submits a limit order
	PlaceLimitOrder(ctx context.Context, req OrderRequest) (OrderHandle, error)

	// PlaceStopOrder submits a stop-loss or take-profit order
	PlaceStopOrder(ctx context.Context, req OrderRequest) (OrderHandle, error)

	// Buy places a market (price zero) or limit buy order
	Buy(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (OrderHandle, error)

	// Sell places a market (price zero) or limit sell order
	Sell(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (OrderHandle, error)

	// GetOrderStatus queries the lifecycle state of a placed order
	GetOrderStatus(ctx context.Context, handle OrderHandle) (OrderStatus, error)

	// CancelOrder cancels a working order
	CancelOrder(ctx context.Context, handle OrderHandle) error

	// GetOperations returns the operations history of the account
	GetOperations(ctx context.Context, from, to time.Time) ([]Operation, error)

	// GetPositions returns the open positions of the account
	GetPositions(ctx context.Context) ([]Position, error)
}

// Compile-time interface check
var _ API = (*Client)(nil)
