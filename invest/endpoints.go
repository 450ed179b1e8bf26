package invest

// The REST gateway exposes every call as a POST of a JSON body to the
// fully-qualified gRPC method path.
const (
	endpointGetAccounts = "/tinkoff.public.invest.api.contract.v1.UsersService/GetAccounts"

	endpointGetPortfolio  = "/tinkoff.public.invest.api.contract.v1.OperationsService/GetPortfolio"
	endpointGetOperations = "/tinkoff.public.invest.api.contract.v1.OperationsService/GetOperations"

	endpointShares = "/tinkoff.public.invest.api.contract.v1.InstrumentsService/Shares"

	endpointGetOrderBook = "/tinkoff.public.invest.api.contract.v1.MarketDataService/GetOrderBook"
	endpointGetCandles   = "/tinkoff.public.invest.api.contract.v1.MarketDataService/GetCandles"

	endpointPostOrder     = "/tinkoff.public.invest.api.contract.v1.OrdersService/PostOrder"
	endpointGetOrderState = "/tinkoff.public.invest.api.contract.v1.OrdersService/GetOrderState"
	endpointCancelOrder   = "/tinkoff.public.invest.api.contract.v1.OrdersService/CancelOrder"

	endpointPostStopOrder   = "/tinkoff.public.invest.api.contract.v1.StopOrdersService/PostStopOrder"
	endpointGetStopOrders   = "/tinkoff.public.invest.api.contract.v1.StopOrdersService/GetStopOrders"
	endpointCancelStopOrder = "/tinkoff.public.invest.api.contract.v1.StopOrdersService/CancelStopOrder"
)
