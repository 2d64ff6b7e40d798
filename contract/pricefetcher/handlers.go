package pricefetcher

import (
	"github.com/govm-net/pricefetcher/contract"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

func init() {
	contract.MustRegister(Kind, func() core.Contract { return Contract{} })
}

// Contract exposes the entry points of the price fetcher
type Contract struct{}

func (Contract) Methods() []core.Method {
	return []core.Method{
		{Name: "new", Init: true, Private: true, Handler: handleNew},
		{Name: "query_price", Handler: handleQueryPrice},
		{Name: "query_price_callback", Private: true, Handler: handleQueryPriceCallback},
	}
}

func handleNew(ctx core.Context, params []byte) (any, error) {
	New(ctx)
	return nil, nil
}

func handleQueryPrice(ctx core.Context, params []byte) (any, error) {
	return QueryPrice(ctx), nil
}

func handleQueryPriceCallback(ctx core.Context, params []byte) (any, error) {
	result := core.DecodeCallbackResult[types.PriceData](ctx, 0)
	return QueryPriceCallback(ctx, result), nil
}
