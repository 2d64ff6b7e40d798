// Package pricefetcher implements a contract that stores a small counter and
// fetches asset prices from a price oracle contract through a promise and callback.
package pricefetcher

import (
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

// Kind is the name the contract is registered under
const Kind = "pricefetcher"

const (
	DefaultValue  int8           = 8
	DefaultOracle core.AccountID = "priceoracle.testnet"

	// QueriedAsset is the only asset query_price asks the oracle about
	QueriedAsset core.AccountID = "usdn.testnet"

	OracleCallGas = 5 * core.TGas
	CallbackGas   = 5 * core.TGas

	oracleErrorLog = "There was an error contacting priceoracle"
)

// State is the persisted record of the contract
type State struct {
	Val            int8           `json:"val" codec:"val"`
	OracleContract core.AccountID `json:"oracle_contract" codec:"oracle_contract"`
}

// Default returns the state used before the contract is initialized
func Default() State {
	return State{
		Val:            DefaultValue,
		OracleContract: DefaultOracle,
	}
}

func loadState(ctx core.Context) State {
	if !ctx.StateExists() {
		return Default()
	}
	var s State
	core.Assert(ctx.ReadState(&s))
	return s
}

// New initializes the contract state. It fails if the state already exists.
func New(ctx core.Context) State {
	core.Assert(!ctx.StateExists(), core.ErrAlreadyInitialized)

	s := Default()
	core.Assert(ctx.WriteState(&s))
	return s
}

// QueryPrice asks the oracle for the price of QueriedAsset and schedules
// QueryPriceCallback on this contract to receive the answer.
func QueryPrice(ctx core.Context) core.Promise {
	s := loadState(ctx)
	assets := []core.AccountID{QueriedAsset}

	promise := extPriceOracle(s.OracleContract).
		WithStaticGas(OracleCallGas).
		GetPriceData(assets)

	return promise.Then(
		extSelf(ctx.CurrentAccountID()).
			WithStaticGas(CallbackGas).
			QueryPriceCallback(),
	)
}

// QueryPriceCallback returns the snapshot fetched by QueryPrice.
// A failed oracle call is logged and then aborts the call.
func QueryPriceCallback(ctx core.Context, result core.CallbackResult[types.PriceData]) types.PriceData {
	if result.IsErr() {
		ctx.Log(oracleErrorLog)
	}

	data := result.Unwrap()
	return data
}
