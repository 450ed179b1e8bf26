package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of an order.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

func (d Direction) orderAPIValue() string {
	if d == DirectionSell {
		return "ORDER_DIRECTION_SELL"
	}
	return "ORDER_DIRECTION_BUY"
}

func (d Direction) stopAPIValue() string {
	if d == DirectionSell {
		return "STOP_ORDER_DIRECTION_SELL"
	}
	return "STOP_ORDER_DIRECTION_BUY"
}

// OrderKind tags an OrderRequest as market, limit or stop.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
	OrderKindStop   OrderKind = "stop"
)

// StopKind is the sub-kind of a stop order.
type StopKind string

const (
	StopLoss   StopKind = "stop_loss"
	TakeProfit StopKind = "take_profit"
)

func (k StopKind) apiValue() string {
	if k == TakeProfit {
		return "STOP_ORDER_TYPE_TAKE_PROFIT"
	}
	return "STOP_ORDER_TYPE_STOP_LOSS"
}

// StatusKind is the order lifecycle state as reported by the service.
type StatusKind string

const (
	StatusNew             StatusKind = "new"
	StatusPartiallyFilled StatusKind = "partially_filled"
	StatusFilled          StatusKind = "filled"
	StatusCancelled       StatusKind = "cancelled"
	StatusRejected        StatusKind = "rejected"
	StatusUnspecified     StatusKind = "unspecified"
)

func statusFromAPI(s string) StatusKind {
	switch s {
	case "EXECUTION_REPORT_STATUS_NEW":
		return StatusNew
	case "EXECUTION_REPORT_STATUS_PARTIALLYFILL":
		return StatusPartiallyFilled
	case "EXECUTION_REPORT_STATUS_FILL":
		return StatusFilled
	case "EXECUTION_REPORT_STATUS_CANCELLED":
		return StatusCancelled
	case "EXECUTION_REPORT_STATUS_REJECTED":
		return StatusRejected
	default:
		return StatusUnspecified
	}
}

// Account is a brokerage account as listed by the service. Balance is the
// total portfolio amount at listing time; nothing is cached.
type Account struct {
	ID       string
	Name     string
	Type     string
	Currency string
	OpenedAt time.Time
	Balance  decimal.Decimal
}

func accountTypeFromAPI(t string) string {
	switch t {
	case "ACCOUNT_TYPE_TINKOFF":
		return "brokerage"
	case "ACCOUNT_TYPE_TINKOFF_IIS":
		return "investment"
	case "ACCOUNT_TYPE_INVEST_BOX":
		return "investbox"
	default:
		return "unknown"
	}
}

// Instrument identifies a tradable share.
type Instrument struct {
	FIGI      string
	Ticker    string
	ClassCode string
	Name      string
	Currency  string
	Lot       int32
}

// PriceQuote is the current price of an instrument. Transient, never stored.
type PriceQuote struct {
	Ticker    string
	FIGI      string
	LastPrice decimal.Decimal
	Currency  string
	Time      time.Time
}

// OrderHandle is the only artifact retained after a successful placement.
// Stop distinguishes stop orders, which live in a separate service namespace
// on the remote side.
type OrderHandle struct {
	ID        string
	AccountID string
	Stop      bool
}

// OrderStatus is the lifecycle state reported by the service for a handle.
type OrderStatus struct {
	Handle         OrderHandle
	Kind           StatusKind
	FilledQuantity int64
	AvgFillPrice   decimal.Decimal
	Currency       string
}

// CandleInterval selects the candle granularity for history retrieval.
type CandleInterval string

const (
	Interval1Min  CandleInterval = "1m"
	Interval5Min  CandleInterval = "5m"
	Interval15Min CandleInterval = "15m"
	IntervalHour  CandleInterval = "1h"
	IntervalDay   CandleInterval = "1d"
	IntervalWeek  CandleInterval = "1w"
	IntervalMonth CandleInterval = "1mo"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Operation types in the short vocabulary GetOperations reports.
const (
	OpBuy      = "BUY"
	OpSell     = "SELL"
	OpFee      = "FEE"
	OpDeposit  = "DEPOSIT"
	OpWithdraw = "WITHDRAW"
	OpOther    = "OTHER"
)

// Operation is one row of the account operations history.
type Operation struct {
	Time     time.Time
	Type     string // one of the Op* constants
	Ticker   string
	Quantity int64
	Price    decimal.Decimal
	Payment  decimal.Decimal
	Currency string
}

var operationTypeMap = map[string]string{
	"OPERATION_TYPE_BUY":        OpBuy,
	"OPERATION_TYPE_SELL":       OpSell,
	"OPERATION_TYPE_BROKER_FEE": OpFee,
	"OPERATION_TYPE_INPUT":      OpDeposit,
	"OPERATION_TYPE_INP_MULTI":  OpDeposit,
	"OPERATION_TYPE_OUTPUT":     OpWithdraw,
	"OPERATION_TYPE_OUT_MULTI":  OpWithdraw,
}

func operationTypeFromAPI(t string) string {
	if mapped, ok := operationTypeMap[t]; ok {
		return mapped
	}
	return OpOther
}

// Position is one open portfolio position.
type Position struct {
	FIGI           string
	Ticker         string
	InstrumentType string
	Quantity       decimal.Decimal
	AveragePrice   decimal.Decimal
	CurrentPrice   decimal.Decimal
	ExpectedYield  decimal.Decimal
	ReturnPct      decimal.Decimal
}
