package invest

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type portfolioPosition struct {
	FIGI                 string     `json:"figi"`
	InstrumentType       string     `json:"instrumentType"`
	Quantity             Quotation  `json:"quantity"`
	AveragePositionPrice MoneyValue `json:"averagePositionPrice"`
	CurrentPrice         MoneyValue `json:"currentPrice"`
	ExpectedYield        Quotation  `json:"expectedYield"`
}

type portfolioResponse struct {
	TotalAmountPortfolio MoneyValue          `json:"totalAmountPortfolio"`
	Positions            []portfolioPosition `json:"positions"`
}

func (c *Client) portfolio(ctx context.Context, accountID string) (*portfolioResponse, error) {
	body := map[string]string{"accountId": accountID}
	var out portfolioResponse
	if err := c.transport.call(ctx, endpointGetPortfolio, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPositions returns the open positions of the configured account,
// annotated with tickers and sorted by expected yield, best first.
func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	if err := c.requireAccount(); err != nil {
		return nil, err
	}

	pf, err := c.portfolio(ctx, c.accountID)
	if err != nil {
		return nil, err
	}

	tickers, err := c.tickersByFIGI(ctx)
	if err != nil {
		return nil, err
	}

	hundred := decimal.New(100, 0)
	positions := make([]Position, 0, len(pf.Positions))
	for _, p := range pf.Positions {
		avg := p.AveragePositionPrice.Decimal()
		cur := p.CurrentPrice.Decimal()

		var returnPct decimal.Decimal
		if avg.Sign() > 0 {
			returnPct = cur.Sub(avg).Div(avg).Mul(hundred)
		}

		positions = append(positions, Position{
			FIGI:           p.FIGI,
			Ticker:         tickers[p.FIGI],
			InstrumentType: p.InstrumentType,
			Quantity:       p.Quantity.Decimal(),
			AveragePrice:   avg,
			CurrentPrice:   cur,
			ExpectedYield:  p.ExpectedYield.Decimal(),
			ReturnPct:      returnPct,
		})
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].ExpectedYield.GreaterThan(positions[j].ExpectedYield)
	})
	return positions, nil
}

type operationPayload struct {
	Date          time.Time  `json:"date"`
	OperationType string     `json:"operationType"`
	FIGI          string     `json:"figi"`
	Quantity      flexInt64  `json:"quantity"`
	Price         MoneyValue `json:"price"`
	Payment       MoneyValue `json:"payment"`
	Currency      string     `json:"currency"`
}

type getOperationsResponse struct {
	Operations []operationPayload `json:"operations"`
}

// GetOperations returns the operations history of the configured account
// between from and to, oldest first. Operation types are mapped to the
// short BUY/SELL/FEE/DEPOSIT/WITHDRAW vocabulary; everything else is OTHER.
func (c *Client) GetOperations(ctx context.Context, from, to time.Time) ([]Operation, error) {
	if err := c.requireAccount(); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, newValidationError("operations range start %s is not before end %s", from, to)
	}

	body := map[string]string{
		"accountId": c.accountID,
		"from":      from.UTC().Format(time.RFC3339Nano),
		"to":        to.UTC().Format(time.RFC3339Nano),
	}
	var out getOperationsResponse
	if err := c.transport.call(ctx, endpointGetOperations, body, &out); err != nil {
		return nil, err
	}

	tickers, err := c.tickersByFIGI(ctx)
	if err != nil {
		return nil, err
	}

	ops := make([]Operation, 0, len(out.Operations))
	for _, op := range out.Operations {
		currency := op.Currency
		if currency == "" {
			currency = op.Payment.Currency
		}
		ops = append(ops, Operation{
			Time:     op.Date,
			Type:     operationTypeFromAPI(op.OperationType),
			Ticker:   tickers[op.FIGI],
			Quantity: int64(op.Quantity),
			Price:    op.Price.Decimal(),
			Payment:  op.Payment.Decimal(),
			Currency: currency,
		})
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Time.Before(ops[j].Time)
	})
	return ops, nil
}
