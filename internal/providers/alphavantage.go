// Package providers adapts the provider clients to the contracts the market
// service consumes.
package providers

import (
	"context"

	"github.com/homedash/homedash/alphavantage"
	"github.com/homedash/homedash/internal/market"
)

// AlphaVantage satisfies both market.QuoteFetcher and market.SeriesFetcher
// on top of one Alpha Vantage client.
type AlphaVantage struct {
	Client *alphavantage.Client
}

func (p AlphaVantage) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	q, err := p.Client.Quote(ctx, symbol)
	if err != nil {
		return market.Quote{}, err
	}
	return market.Quote{
		Price:         q.Price,
		Change:        q.Change,
		PercentChange: q.PercentChange,
	}, nil
}

func (p AlphaVantage) DailySeries(ctx context.Context, symbol string, count int) ([]market.ClosePoint, error) {
	raw, err := p.Client.DailySeries(ctx, symbol, count)
	if err != nil {
		return nil, err
	}
	points := make([]market.ClosePoint, len(raw))
	for i, r := range raw {
		points[i] = market.ClosePoint{Date: r.Date, Close: r.Close}
	}
	return points, nil
}
