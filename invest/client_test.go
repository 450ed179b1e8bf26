package invest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateway is a fake REST gateway dispatching on the gRPC method path and
// counting requests, so tests can prove validation failures never hit the
// wire.
type gateway struct {
	t        *testing.T
	mu       sync.Mutex
	counts   map[string]int
	handlers map[string]http.HandlerFunc
}

func newGateway(t *testing.T) *gateway {
	return &gateway{
		t:        t,
		counts:   make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
}

func (g *gateway) handle(endpoint string, h http.HandlerFunc) {
	g.handlers[endpoint] = h
}

func (g *gateway) handleJSON(endpoint, body string) {
	g.handle(endpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (g *gateway) count(endpoint string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[endpoint]
}

func (g *gateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.counts {
		n += c
	}
	return n
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.counts[r.URL.Path]++
	g.mu.Unlock()

	assert.Equal(g.t, http.MethodPost, r.Method)
	assert.Equal(g.t, "Bearer test-token", r.Header.Get("Authorization"))

	h, ok := g.handlers[r.URL.Path]
	if !ok {
		g.t.Errorf("unexpected request to %s", r.URL.Path)
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

const sharesJSON = `{"instruments":[
	{"figi":"BBG000B9XRY4","ticker":"AAPL","classCode":"SPBXM","name":"Apple","currency":"usd","lot":1},
	{"figi":"BBG004730N88","ticker":"SBER","classCode":"TQBR","name":"Sberbank","currency":"rub","lot":10}
]}`

func newTestClient(t *testing.T, g *gateway, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(g)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithAccountID("acc-1")}, opts...)
	cli, err := New("test-token", opts...)
	require.NoError(t, err)
	return cli
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}

func TestNewTokenValidation(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
	})

	t.Run("token with whitespace", func(t *testing.T) {
		_, err := New("abc 123")
		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
	})

	t.Run("valid token", func(t *testing.T) {
		cli, err := New("abc123")
		require.NoError(t, err)
		assert.NotNil(t, cli)
		assert.Empty(t, cli.AccountID())
	})
}

func TestListAccounts(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointGetAccounts, `{"accounts":[
		{"id":"acc-1","type":"ACCOUNT_TYPE_TINKOFF","name":"Main","status":"ACCOUNT_STATUS_OPEN","openedDate":"2021-03-01T00:00:00Z"},
		{"id":"acc-2","type":"ACCOUNT_TYPE_TINKOFF_IIS","name":"Long term","status":"ACCOUNT_STATUS_OPEN","openedDate":"2022-06-15T00:00:00Z"}
	]}`)
	g.handle(endpointGetPortfolio, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		total := `{"currency":"rub","units":"1000","nano":0}`
		if body["accountId"] == "acc-2" {
			total = `{"currency":"rub","units":"250","nano":500000000}`
		}
		_, _ = w.Write([]byte(`{"totalAmountPortfolio":` + total + `,"positions":[]}`))
	})

	cli := newTestClient(t, g)
	accounts, err := cli.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "acc-1", accounts[0].ID)
	assert.Equal(t, "Main", accounts[0].Name)
	assert.Equal(t, "brokerage", accounts[0].Type)
	assert.Equal(t, "rub", accounts[0].Currency)
	assert.Equal(t, "1000", accounts[0].Balance.String())
	assert.Equal(t, 2021, accounts[0].OpenedAt.Year())

	assert.Equal(t, "investment", accounts[1].Type)
	assert.Equal(t, "250.5", accounts[1].Balance.String())
}

func TestListAccountsRejectedToken(t *testing.T) {
	g := newGateway(t)
	g.handle(endpointGetAccounts, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-tracking-id", "trk-123")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":16,"message":"authentication token is missing or invalid","description":"40003"}`))
	})

	cli := newTestClient(t, g)
	_, err := cli.ListAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "trk-123", apiErr.TrackingID)
}

func TestGetPrice(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handle(endpointGetOrderBook, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "BBG000B9XRY4", body["figi"])
		_, _ = w.Write([]byte(`{"figi":"BBG000B9XRY4","lastPrice":{"units":"150","nano":250000000},"bids":[],"asks":[]}`))
	})

	cli := newTestClient(t, g)
	quote, err := cli.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Ticker)
	assert.Equal(t, "usd", quote.Currency)
	assert.True(t, quote.LastPrice.IsPositive())
	assert.Equal(t, "150.25", quote.LastPrice.String())
}

func TestGetPriceLowercaseTicker(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handleJSON(endpointGetOrderBook, `{"lastPrice":{"units":"306","nano":0},"bids":[],"asks":[]}`)

	cli := newTestClient(t, g)
	quote, err := cli.GetPrice(context.Background(), "sber")
	require.NoError(t, err)
	assert.Equal(t, "SBER", quote.Ticker)
}

func TestGetPriceMidpointFallback(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handleJSON(endpointGetOrderBook, `{
		"lastPrice":{"units":"0","nano":0},
		"bids":[{"price":{"units":"99","nano":0},"quantity":"5"}],
		"asks":[{"price":{"units":"101","nano":0},"quantity":"3"}]
	}`)

	cli := newTestClient(t, g)
	quote, err := cli.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "100", quote.LastPrice.String())
}

func TestGetPriceUnknownTicker(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)

	cli := newTestClient(t, g)
	_, err := cli.GetPrice(context.Background(), "UNKNOWN")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Zero(t, g.count(endpointGetOrderBook))
}

func TestGetPriceEmptyBook(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handleJSON(endpointGetOrderBook, `{"lastPrice":{"units":"0","nano":0},"bids":[],"asks":[]}`)

	cli := newTestClient(t, g)
	_, err := cli.GetPrice(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, IsService(err))
}

func TestPlaceMarketOrder(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handle(endpointPostOrder, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "BBG000B9XRY4", body["figi"])
		assert.Equal(t, "ORDER_TYPE_MARKET", body["orderType"])
		assert.Equal(t, "ORDER_DIRECTION_BUY", body["direction"])
		assert.Equal(t, "acc-1", body["accountId"])
		assert.Equal(t, float64(10), body["quantity"])
		assert.NotContains(t, body, "price")
		_, _ = w.Write([]byte(`{"orderId":"order-1","executionReportStatus":"EXECUTION_REPORT_STATUS_FILL","lotsRequested":"10","lotsExecuted":"10","executedOrderPrice":{"currency":"usd","units":"150","nano":0}}`))
	})

	cli := newTestClient(t, g)
	req, err := NewMarketOrder("AAPL", DirectionBuy, 10)
	require.NoError(t, err)

	handle, err := cli.PlaceMarketOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "order-1", handle.ID)
	assert.Equal(t, "acc-1", handle.AccountID)
	assert.False(t, handle.Stop)
}

func TestPlaceMarketOrderNegativeQuantityNoNetworkCall(t *testing.T) {
	g := newGateway(t)
	cli := newTestClient(t, g)

	req := OrderRequest{Ticker: "AAPL", Direction: DirectionBuy, Quantity: -5, Kind: OrderKindMarket}
	_, err := cli.PlaceMarketOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, g.total(), "validation failures must not reach the wire")
}

func TestPlaceMarketOrderRejectsLimitPrice(t *testing.T) {
	g := newGateway(t)
	cli := newTestClient(t, g)

	req := OrderRequest{Ticker: "AAPL", Direction: DirectionBuy, Quantity: 10, Kind: OrderKindMarket, LimitPrice: price("150")}
	_, err := cli.PlaceMarketOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, g.total())
}

func TestPlaceMarketOrderWrongKind(t *testing.T) {
	g := newGateway(t)
	cli := newTestClient(t, g)

	req, err := NewLimitOrder("AAPL", DirectionBuy, 10, price("150"))
	require.NoError(t, err)
	_, err = cli.PlaceMarketOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, g.total())
}

func TestPlaceMarketOrderInsufficientFunds(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handle(endpointPostOrder, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"30042","message":"not enough balance","description":"30042"}`))
	})

	cli := newTestClient(t, g)
	req, err := NewMarketOrder("AAPL", DirectionBuy, 10000)
	require.NoError(t, err)

	_, err = cli.PlaceMarketOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsInsufficientFunds(err))
}

func TestPlaceOrderWithoutAccount(t *testing.T) {
	g := newGateway(t)
	server := httptest.NewServer(g)
	t.Cleanup(server.Close)

	cli, err := New("test-token", WithBaseURL(server.URL))
	require.NoError(t, err)

	req, err := NewMarketOrder("AAPL", DirectionBuy, 1)
	require.NoError(t, err)
	_, err = cli.PlaceMarketOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, g.total())
}

func TestLimitOrderRoundTrip(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handle(endpointPostOrder, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "ORDER_TYPE_LIMIT", body["orderType"])
		priceField, ok := body["price"].(map[string]any)
		require.True(t, ok, "limit order must carry a price")
		assert.Equal(t, "150", priceField["units"])
		_, _ = w.Write([]byte(`{"orderId":"order-7","executionReportStatus":"EXECUTION_REPORT_STATUS_NEW","lotsRequested":"10","lotsExecuted":"0","executedOrderPrice":{"currency":"usd","units":"0","nano":0}}`))
	})
	g.handle(endpointGetOrderState, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "acc-1", body["accountId"])
		assert.Equal(t, "order-7", body["orderId"])
		_, _ = w.Write([]byte(`{"orderId":"order-7","executionReportStatus":"EXECUTION_REPORT_STATUS_NEW","lotsExecuted":"0","executedOrderPrice":{"currency":"usd","units":"0","nano":0}}`))
	})

	cli := newTestClient(t, g)
	req, err := NewLimitOrder("AAPL", DirectionBuy, 10, price("150.00"))
	require.NoError(t, err)

	handle, err := cli.PlaceLimitOrder(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID)

	status, err := cli.GetOrderStatus(context.Background(), handle)
	require.NoError(t, err)
	assert.Contains(t, []StatusKind{StatusNew, StatusFilled}, status.Kind)
	assert.NotEqual(t, StatusUnspecified, status.Kind)

	// Same handle, no remote change: identical status.
	again, err := cli.GetOrderStatus(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, status, again)
}

func TestGetOrderStatusFilled(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointGetOrderState, `{"orderId":"order-9","executionReportStatus":"EXECUTION_REPORT_STATUS_FILL","lotsExecuted":"10","executedOrderPrice":{"currency":"usd","units":"151","nano":500000000}}`)

	cli := newTestClient(t, g)
	status, err := cli.GetOrderStatus(context.Background(), OrderHandle{ID: "order-9", AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, status.Kind)
	assert.Equal(t, int64(10), status.FilledQuantity)
	assert.Equal(t, "151.5", status.AvgFillPrice.String())
	assert.Equal(t, "usd", status.Currency)
}

func TestGetOrderStatusUnknownHandle(t *testing.T) {
	g := newGateway(t)
	g.handle(endpointGetOrderState, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"50005","message":"order not found","description":"50005"}`))
	})

	cli := newTestClient(t, g)
	_, err := cli.GetOrderStatus(context.Background(), OrderHandle{ID: "no-such-order", AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestPlaceStopOrderAndStatus(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	g.handle(endpointPostStopOrder, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "BBG004730N88", body["figi"])
		assert.Equal(t, "STOP_ORDER_TYPE_STOP_LOSS", body["stopOrderType"])
		assert.Equal(t, "STOP_ORDER_DIRECTION_SELL", body["direction"])
		assert.Equal(t, "STOP_ORDER_EXPIRATION_TYPE_GOOD_TILL_CANCEL", body["expirationType"])
		stopPrice, ok := body["stopPrice"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "300", stopPrice["units"])
		_, _ = w.Write([]byte(`{"stopOrderId":"stop-1"}`))
	})
	g.handleJSON(endpointGetStopOrders, `{"stopOrders":[
		{"stopOrderId":"stop-1","lotsRequested":"1","price":{"currency":"rub","units":"300","nano":0},"stopPrice":{"currency":"rub","units":"300","nano":0}}
	]}`)

	cli := newTestClient(t, g)
	req, err := NewStopOrder("SBER", DirectionSell, 1, StopLoss, price("300"), price("300"))
	require.NoError(t, err)

	handle, err := cli.PlaceStopOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "stop-1", handle.ID)
	assert.True(t, handle.Stop)

	status, err := cli.GetOrderStatus(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, status.Kind)

	_, err = cli.GetOrderStatus(context.Background(), OrderHandle{ID: "stop-999", AccountID: "acc-1", Stop: true})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestPlaceStopOrderMissingTriggerNoNetworkCall(t *testing.T) {
	g := newGateway(t)
	cli := newTestClient(t, g)

	req := OrderRequest{Ticker: "SBER", Direction: DirectionSell, Quantity: 1, Kind: OrderKindStop, StopKind: StopLoss}
	_, err := cli.PlaceStopOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, g.total())
}

func TestCancelOrder(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointCancelOrder, `{"time":"2026-01-05T10:00:00Z"}`)
	g.handle(endpointCancelStopOrder, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "stop-1", body["stopOrderId"])
		_, _ = w.Write([]byte(`{"time":"2026-01-05T10:00:00Z"}`))
	})

	cli := newTestClient(t, g)
	require.NoError(t, cli.CancelOrder(context.Background(), OrderHandle{ID: "order-1", AccountID: "acc-1"}))
	require.NoError(t, cli.CancelOrder(context.Background(), OrderHandle{ID: "stop-1", AccountID: "acc-1", Stop: true}))

	assert.Equal(t, 1, g.count(endpointCancelOrder))
	assert.Equal(t, 1, g.count(endpointCancelStopOrder))
}

func TestBuySellConvenience(t *testing.T) {
	g := newGateway(t)
	g.handleJSON(endpointShares, sharesJSON)
	var gotTypes []string
	g.handle(endpointPostOrder, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		gotTypes = append(gotTypes, body["orderType"].(string))
		_, _ = w.Write([]byte(`{"orderId":"order-2","executionReportStatus":"EXECUTION_REPORT_STATUS_NEW","lotsRequested":"1","lotsExecuted":"0","executedOrderPrice":{"currency":"rub","units":"0","nano":0}}`))
	})

	cli := newTestClient(t, g)

	// Price given: limit order (original buy/sell semantics).
	_, err := cli.Buy(context.Background(), "SBER", 1, price("306"))
	require.NoError(t, err)

	// No price: market order.
	_, err = cli.Sell(context.Background(), "SBER", 1, price("0"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ORDER_TYPE_LIMIT", "ORDER_TYPE_MARKET"}, gotTypes)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close() // connection refused from here on

	cli, err := New("test-token", WithBaseURL(url), WithAccountID("acc-1"), WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = cli.ListAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestServiceError(t *testing.T) {
	g := newGateway(t)
	g.handle(endpointGetAccounts, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":13,"message":"internal error","description":""}`))
	})

	cli := newTestClient(t, g)
	_, err := cli.ListAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsService(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "13", apiErr.Code)
	assert.Equal(t, "internal error", apiErr.Message)
}
