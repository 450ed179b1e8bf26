package invest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderRequest describes an order to submit, tagged by Kind. Build requests
// through the constructors so the kind-specific field invariants hold from
// the start; Validate runs again inside every placement method, before any
// network call, for requests assembled by hand.
type OrderRequest struct {
	Ticker    string
	Direction Direction
	Quantity  int64
	Kind      OrderKind

	// LimitPrice is required for limit orders and must be absent for
	// market orders.
	LimitPrice decimal.Decimal

	// StopKind and TriggerPrice are required for stop orders. ExecPrice is
	// the optional execution limit once the trigger fires; when zero the
	// trigger price is reused.
	StopKind     StopKind
	TriggerPrice decimal.Decimal
	ExecPrice    decimal.Decimal
}

// NewMarketOrder builds a market order request.
func NewMarketOrder(ticker string, direction Direction, quantity int64) (OrderRequest, error) {
	r := OrderRequest{
		Ticker:    ticker,
		Direction: direction,
		Quantity:  quantity,
		Kind:      OrderKindMarket,
	}
	if err := r.Validate(); err != nil {
		return OrderRequest{}, err
	}
	return r, nil
}

// NewLimitOrder builds a limit order request.
func NewLimitOrder(ticker string, direction Direction, quantity int64, limitPrice decimal.Decimal) (OrderRequest, error) {
	r := OrderRequest{
		Ticker:     ticker,
		Direction:  direction,
		Quantity:   quantity,
		Kind:       OrderKindLimit,
		LimitPrice: limitPrice,
	}
	if err := r.Validate(); err != nil {
		return OrderRequest{}, err
	}
	return r, nil
}

// NewStopOrder builds a stop order request of the given sub-kind. execPrice
// may be zero to execute at the trigger price.
func NewStopOrder(ticker string, direction Direction, quantity int64, kind StopKind, triggerPrice, execPrice decimal.Decimal) (OrderRequest, error) {
	r := OrderRequest{
		Ticker:       ticker,
		Direction:    direction,
		Quantity:     quantity,
		Kind:         OrderKindStop,
		StopKind:     kind,
		TriggerPrice: triggerPrice,
		ExecPrice:    execPrice,
	}
	if err := r.Validate(); err != nil {
		return OrderRequest{}, err
	}
	return r, nil
}

// Validate checks the field-presence and sign invariants for the request's
// kind. It performs no network I/O.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Ticker) == "" {
		return newValidationError("ticker must not be empty")
	}
	if r.Direction != DirectionBuy && r.Direction != DirectionSell {
		return newValidationError("direction must be buy or sell, got %q", r.Direction)
	}
	if r.Quantity <= 0 {
		return newValidationError("quantity must be a positive integer, got %d", r.Quantity)
	}

	switch r.Kind {
	case OrderKindMarket:
		if !r.LimitPrice.IsZero() {
			return newValidationError("market order must not carry a limit price")
		}
		if !r.TriggerPrice.IsZero() || !r.ExecPrice.IsZero() || r.StopKind != "" {
			return newValidationError("market order must not carry stop fields")
		}
	case OrderKindLimit:
		if r.LimitPrice.IsZero() {
			return newValidationError("limit order requires a limit price")
		}
		if r.LimitPrice.Sign() <= 0 {
			return newValidationError("limit price must be strictly positive, got %s", r.LimitPrice)
		}
		if !r.TriggerPrice.IsZero() || !r.ExecPrice.IsZero() || r.StopKind != "" {
			return newValidationError("limit order must not carry stop fields")
		}
	case OrderKindStop:
		if r.StopKind != StopLoss && r.StopKind != TakeProfit {
			return newValidationError("stop order requires sub-kind stop_loss or take_profit, got %q", r.StopKind)
		}
		if r.TriggerPrice.IsZero() {
			return newValidationError("stop order requires a trigger price")
		}
		if r.TriggerPrice.Sign() <= 0 {
			return newValidationError("stop trigger price must be strictly positive, got %s", r.TriggerPrice)
		}
		if !r.ExecPrice.IsZero() && r.ExecPrice.Sign() <= 0 {
			return newValidationError("stop execution price must be strictly positive, got %s", r.ExecPrice)
		}
		if !r.LimitPrice.IsZero() {
			return newValidationError("stop order carries its price in ExecPrice, not LimitPrice")
		}
	default:
		return newValidationError("unknown order kind %q", r.Kind)
	}

	return nil
}
