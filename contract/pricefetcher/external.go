package pricefetcher

import (
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

// priceOracle binds the get_price_data interface of a price oracle contract
type priceOracle struct {
	call core.CallBuilder
}

func extPriceOracle(account core.AccountID) priceOracle {
	return priceOracle{call: core.Ext(account)}
}

func (o priceOracle) WithStaticGas(gas core.Gas) priceOracle {
	o.call = o.call.WithStaticGas(gas)
	return o
}

// GetPriceData requests quotes for assetIDs; nil asks for every asset
func (o priceOracle) GetPriceData(assetIDs []core.AccountID) core.Promise {
	return o.call.Call("get_price_data", types.GetPriceDataArgs{AssetIDs: assetIDs})
}

// self binds the callbacks of this contract
type self struct {
	call core.CallBuilder
}

func extSelf(account core.AccountID) self {
	return self{call: core.Ext(account)}
}

func (s self) WithStaticGas(gas core.Gas) self {
	s.call = s.call.WithStaticGas(gas)
	return s
}

func (s self) QueryPriceCallback() core.Promise {
	return s.call.Call("query_price_callback", nil)
}
