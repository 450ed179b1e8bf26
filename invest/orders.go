package invest

import (
	"context"

	"github.com/shopspring/decimal"
)

type postOrderRequest struct {
	FIGI      string     `json:"figi"`
	Quantity  int64      `json:"quantity"`
	Price     *Quotation `json:"price,omitempty"`
	Direction string     `json:"direction"`
	AccountID string     `json:"accountId"`
	OrderType string     `json:"orderType"`
}

type postOrderResponse struct {
	OrderID               string     `json:"orderId"`
	ExecutionReportStatus string     `json:"executionReportStatus"`
	LotsRequested         flexInt64  `json:"lotsRequested"`
	LotsExecuted          flexInt64  `json:"lotsExecuted"`
	ExecutedOrderPrice    MoneyValue `json:"executedOrderPrice"`
}

// PlaceMarketOrder submits a market order. The request kind must be market;
// a request carrying limit or stop fields is rejected with a validation
// error before any network call.
func (c *Client) PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderHandle, error) {
	if req.Kind != OrderKindMarket {
		return OrderHandle{}, newValidationError("PlaceMarketOrder requires kind market, got %q", req.Kind)
	}
	return c.placeExchangeOrder(ctx, req, "ORDER_TYPE_MARKET", nil)
}

// PlaceLimitOrder submits a limit order. The limit price is required and
// must be strictly positive.
func (c *Client) PlaceLimitOrder(ctx context.Context, req OrderRequest) (OrderHandle, error) {
	if req.Kind != OrderKindLimit {
		return OrderHandle{}, newValidationError("PlaceLimitOrder requires kind limit, got %q", req.Kind)
	}
	price := QuotationFromDecimal(req.LimitPrice)
	return c.placeExchangeOrder(ctx, req, "ORDER_TYPE_LIMIT", &price)
}

func (c *Client) placeExchangeOrder(ctx context.Context, req OrderRequest, orderType string, price *Quotation) (OrderHandle, error) {
	if err := req.Validate(); err != nil {
		return OrderHandle{}, err
	}
	if err := c.requireAccount(); err != nil {
		return OrderHandle{}, err
	}

	inst, err := c.FindInstrument(ctx, req.Ticker)
	if err != nil {
		return OrderHandle{}, err
	}

	body := postOrderRequest{
		FIGI:      inst.FIGI,
		Quantity:  req.Quantity,
		Price:     price,
		Direction: req.Direction.orderAPIValue(),
		AccountID: c.accountID,
		OrderType: orderType,
	}
	var out postOrderResponse
	if err := c.transport.call(ctx, endpointPostOrder, body, &out); err != nil {
		return OrderHandle{}, err
	}

	return OrderHandle{ID: out.OrderID, AccountID: c.accountID}, nil
}

// Buy places an order to buy quantity lots of ticker: market when price is
// zero, limit otherwise. Mirrors the service's buy/sell convenience surface.
func (c *Client) Buy(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (OrderHandle, error) {
	return c.placeSided(ctx, ticker, DirectionBuy, quantity, price)
}

// Sell is the sell-side counterpart of Buy.
func (c *Client) Sell(ctx context.Context, ticker string, quantity int64, price decimal.Decimal) (OrderHandle, error) {
	return c.placeSided(ctx, ticker, DirectionSell, quantity, price)
}

func (c *Client) placeSided(ctx context.Context, ticker string, direction Direction, quantity int64, price decimal.Decimal) (OrderHandle, error) {
	if price.IsZero() {
		req, err := NewMarketOrder(ticker, direction, quantity)
		if err != nil {
			return OrderHandle{}, err
		}
		return c.PlaceMarketOrder(ctx, req)
	}
	req, err := NewLimitOrder(ticker, direction, quantity, price)
	if err != nil {
		return OrderHandle{}, err
	}
	return c.PlaceLimitOrder(ctx, req)
}

type orderStateRequest struct {
	AccountID string `json:"accountId"`
	OrderID   string `json:"orderId"`
}

type orderStateResponse struct {
	OrderID               string     `json:"orderId"`
	ExecutionReportStatus string     `json:"executionReportStatus"`
	LotsExecuted          flexInt64  `json:"lotsExecuted"`
	ExecutedOrderPrice    MoneyValue `json:"executedOrderPrice"`
}

// GetOrderStatus queries the lifecycle state of a previously placed order.
// Handles from stop placements are looked up in the stop order listing;
// unknown handles fail with a not-found error.
func (c *Client) GetOrderStatus(ctx context.Context, handle OrderHandle) (OrderStatus, error) {
	if handle.ID == "" {
		return OrderStatus{}, newValidationError("order handle has no ID")
	}
	if handle.Stop {
		return c.stopOrderStatus(ctx, handle)
	}

	body := orderStateRequest{AccountID: handle.AccountID, OrderID: handle.ID}
	var out orderStateResponse
	if err := c.transport.call(ctx, endpointGetOrderState, body, &out); err != nil {
		return OrderStatus{}, err
	}

	return OrderStatus{
		Handle:         handle,
		Kind:           statusFromAPI(out.ExecutionReportStatus),
		FilledQuantity: int64(out.LotsExecuted),
		AvgFillPrice:   out.ExecutedOrderPrice.Decimal(),
		Currency:       out.ExecutedOrderPrice.Currency,
	}, nil
}

// CancelOrder cancels an order that is still working on the remote side.
func (c *Client) CancelOrder(ctx context.Context, handle OrderHandle) error {
	if handle.ID == "" {
		return newValidationError("order handle has no ID")
	}

	endpoint := endpointCancelOrder
	body := map[string]string{
		"accountId": handle.AccountID,
		"orderId":   handle.ID,
	}
	if handle.Stop {
		endpoint = endpointCancelStopOrder
		body = map[string]string{
			"accountId":   handle.AccountID,
			"stopOrderId": handle.ID,
		}
	}

	return c.transport.call(ctx, endpoint, body, nil)
}
