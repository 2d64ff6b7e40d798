package pricefetcher

import (
	"encoding/json"
	"testing"

	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fetcherAccount core.AccountID = "fetcher.testnet"

// testContext is a minimal core.Context for calling contract functions directly
type testContext struct {
	state   []byte
	results []core.PromiseResult
	logs    []string
}

func (c *testContext) BlockHeight() uint64                    { return 1 }
func (c *testContext) BlockTime() int64                       { return 1700000000000000000 }
func (c *testContext) CurrentAccountID() core.AccountID       { return fetcherAccount }
func (c *testContext) PredecessorAccountID() core.AccountID   { return fetcherAccount }
func (c *testContext) SignerAccountID() core.AccountID        { return "alice.testnet" }
func (c *testContext) PrepaidGas() core.Gas                   { return 30 * core.TGas }
func (c *testContext) UsedGas() core.Gas                      { return 0 }
func (c *testContext) StateExists() bool                      { return c.state != nil }
func (c *testContext) PromiseResultsCount() int               { return len(c.results) }
func (c *testContext) PromiseResult(i int) core.PromiseResult { return c.results[i] }

func (c *testContext) ReadState(v any) error {
	if c.state == nil {
		return core.ErrStateNotFound
	}
	return json.Unmarshal(c.state, v)
}

func (c *testContext) WriteState(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.state = data
	return nil
}

func (c *testContext) Log(eventName string, keyValues ...any) {
	c.logs = append(c.logs, eventName)
}

func samplePriceData() types.PriceData {
	return types.PriceData{
		Timestamp:          1700000000000000000,
		RecencyDurationSec: 90,
		Prices: []types.AssetOptionalPrice{
			{
				AssetID: QueriedAsset,
				Price:   &types.Price{Multiplier: types.MustU128("150000000000000000000000"), Decimals: 24},
			},
		},
	}
}

func TestNew(t *testing.T) {
	ctx := &testContext{}

	s := New(ctx)
	assert.Equal(t, Default(), s)

	var stored State
	require.NoError(t, ctx.ReadState(&stored))
	assert.Equal(t, int8(8), stored.Val)
	assert.Equal(t, core.AccountID("priceoracle.testnet"), stored.OracleContract)

	// a second construction always fails
	assert.PanicsWithValue(t, core.ErrAlreadyInitialized, func() { New(ctx) })
}

func TestQueryPrice(t *testing.T) {
	ctx := &testContext{}

	calls := QueryPrice(ctx).Calls()
	require.Len(t, calls, 2)

	assert.Equal(t, DefaultOracle, calls[0].Receiver)
	assert.Equal(t, "get_price_data", calls[0].Method)
	assert.JSONEq(t, `{"asset_ids":["usdn.testnet"]}`, string(calls[0].Args))
	assert.Equal(t, 5*core.TGas, calls[0].Gas)

	assert.Equal(t, fetcherAccount, calls[1].Receiver)
	assert.Equal(t, "query_price_callback", calls[1].Method)
	assert.Equal(t, 5*core.TGas, calls[1].Gas)
}

func TestQueryPriceUsesStoredOracle(t *testing.T) {
	ctx := &testContext{}
	require.NoError(t, ctx.WriteState(&State{Val: 8, OracleContract: "other-oracle.testnet"}))

	calls := QueryPrice(ctx).Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, core.AccountID("other-oracle.testnet"), calls[0].Receiver)
}

func TestQueryPriceCallbackSuccess(t *testing.T) {
	ctx := &testContext{}
	data := samplePriceData()

	got := QueryPriceCallback(ctx, core.Ok(data))
	assert.Equal(t, data, got)
	assert.Empty(t, ctx.logs)
}

func TestQueryPriceCallbackFailure(t *testing.T) {
	ctx := &testContext{}

	assert.Panics(t, func() {
		QueryPriceCallback(ctx, core.Failed[types.PriceData](nil))
	})
	assert.Equal(t, []string{"There was an error contacting priceoracle"}, ctx.logs)
}

func TestHandleQueryPriceCallback(t *testing.T) {
	data := samplePriceData()
	raw, err := json.Marshal(data)
	require.NoError(t, err)

	ctx := &testContext{results: []core.PromiseResult{{Status: core.PromiseSuccessful, Data: raw}}}
	got, err := handleQueryPriceCallback(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	ctx = &testContext{results: []core.PromiseResult{{Status: core.PromiseFailed}}}
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, core.ErrPromiseFailed)
		}()
		handleQueryPriceCallback(ctx, nil)
	}()
	assert.Len(t, ctx.logs, 1)
}
