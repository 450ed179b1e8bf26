package invest

import (
	"context"
	"time"
)

type accountPayload struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	OpenedDate time.Time `json:"openedDate"`
}

type getAccountsResponse struct {
	Accounts []accountPayload `json:"accounts"`
}

// ListAccounts returns the accounts visible to the token, in service order,
// each enriched with its current portfolio total. Results are fetched fresh
// on every call.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var out getAccountsResponse
	if err := c.transport.call(ctx, endpointGetAccounts, nil, &out); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(out.Accounts))
	for _, a := range out.Accounts {
		pf, err := c.portfolio(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{
			ID:       a.ID,
			Name:     a.Name,
			Type:     accountTypeFromAPI(a.Type),
			Currency: pf.TotalAmountPortfolio.Currency,
			OpenedAt: a.OpenedDate,
			Balance:  pf.TotalAmountPortfolio.Decimal(),
		})
	}
	return accounts, nil
}
