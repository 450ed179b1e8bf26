package invest

import (
	"context"
)

type postStopOrderRequest struct {
	FIGI           string     `json:"figi"`
	Quantity       int64      `json:"quantity"`
	Price          *Quotation `json:"price,omitempty"`
	StopPrice      Quotation  `json:"stopPrice"`
	Direction      string     `json:"direction"`
	AccountID      string     `json:"accountId"`
	ExpirationType string     `json:"expirationType"`
	StopOrderType  string     `json:"stopOrderType"`
}

type postStopOrderResponse struct {
	StopOrderID string `json:"stopOrderId"`
}

// PlaceStopOrder submits a stop-loss or take-profit order, good till
// cancelled. The trigger price is required; when the request carries no
// execution price the order executes at the trigger price.
func (c *Client) PlaceStopOrder(ctx context.Context, req OrderRequest) (OrderHandle, error) {
	if req.Kind != OrderKindStop {
		return OrderHandle{}, newValidationError("PlaceStopOrder requires kind stop, got %q", req.Kind)
	}
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

	body := postStopOrderRequest{
		FIGI:           inst.FIGI,
		Quantity:       req.Quantity,
		StopPrice:      QuotationFromDecimal(req.TriggerPrice),
		Direction:      req.Direction.stopAPIValue(),
		AccountID:      c.accountID,
		ExpirationType: "STOP_ORDER_EXPIRATION_TYPE_GOOD_TILL_CANCEL",
		StopOrderType:  req.StopKind.apiValue(),
	}
	if !req.ExecPrice.IsZero() {
		price := QuotationFromDecimal(req.ExecPrice)
		body.Price = &price
	}

	var out postStopOrderResponse
	if err := c.transport.call(ctx, endpointPostStopOrder, body, &out); err != nil {
		return OrderHandle{}, err
	}

	return OrderHandle{ID: out.StopOrderID, AccountID: c.accountID, Stop: true}, nil
}

type stopOrderPayload struct {
	StopOrderID   string     `json:"stopOrderId"`
	LotsRequested flexInt64  `json:"lotsRequested"`
	Price         MoneyValue `json:"price"`
	StopPrice     MoneyValue `json:"stopPrice"`
}

type getStopOrdersResponse struct {
	StopOrders []stopOrderPayload `json:"stopOrders"`
}

// stopOrderStatus resolves a stop order handle against the active stop
// order listing. Stop orders have no per-order state endpoint; an active
// entry reports as new, anything else is unknown to the service.
func (c *Client) stopOrderStatus(ctx context.Context, handle OrderHandle) (OrderStatus, error) {
	body := map[string]string{"accountId": handle.AccountID}
	var out getStopOrdersResponse
	if err := c.transport.call(ctx, endpointGetStopOrders, body, &out); err != nil {
		return OrderStatus{}, err
	}

	for _, so := range out.StopOrders {
		if so.StopOrderID == handle.ID {
			return OrderStatus{
				Handle:   handle,
				Kind:     StatusNew,
				Currency: so.StopPrice.Currency,
			}, nil
		}
	}
	return OrderStatus{}, newNotFoundError("stop order %q not found on account %q", handle.ID, handle.AccountID)
}
