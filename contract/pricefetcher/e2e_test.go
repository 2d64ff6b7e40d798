package pricefetcher_test

import (
	"context"
	"encoding/json"
	"testing"

	_ "github.com/govm-net/pricefetcher/context/memory"
	"github.com/govm-net/pricefetcher/contract/pricefetcher"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/mock"
	"github.com/govm-net/pricefetcher/types"
	"github.com/govm-net/pricefetcher/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fetcherAccount core.AccountID = "fetcher.testnet"
	blockTime      int64          = 1_700_000_000_000_000_000
)

var usdnPrice = types.Price{
	Multiplier: types.MustU128("150000000000000000000000"),
	Decimals:   24,
}

func setup(t *testing.T) *vm.Engine {
	t.Helper()
	ctx := context.Background()

	engine, err := vm.NewEngine(vm.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	require.NoError(t, engine.GetContext().SetBlockInfo(1, blockTime, core.GetHash([]byte("block-1"))))

	_, err = engine.DeployContract(ctx, fetcherAccount, pricefetcher.Kind)
	require.NoError(t, err)
	_, err = engine.DeployContract(ctx, pricefetcher.DefaultOracle, mock.OracleKind)
	require.NoError(t, err)

	out, err := engine.Initialize(ctx, pricefetcher.DefaultOracle, nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	out = execute(t, engine, pricefetcher.DefaultOracle, pricefetcher.DefaultOracle, "set_price",
		mock.SetPriceArgs{AssetID: pricefetcher.QueriedAsset, Price: usdnPrice})
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)
	return engine
}

func execute(t *testing.T, engine *vm.Engine, signer, receiver core.AccountID, method string, args any) *vm.Outcome {
	t.Helper()
	var raw json.RawMessage
	if args != nil {
		var err error
		raw, err = json.Marshal(args)
		require.NoError(t, err)
	}
	out, err := engine.Execute(context.Background(), vm.Transaction{
		Signer:   signer,
		Receiver: receiver,
		Method:   method,
		Args:     raw,
	})
	require.NoError(t, err)
	return out
}

func TestQueryPriceEndToEnd(t *testing.T) {
	engine := setup(t)

	out := execute(t, engine, "alice.testnet", fetcherAccount, "query_price", nil)
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	var got types.PriceData
	require.NoError(t, out.Decode(&got))

	price := usdnPrice
	want := types.PriceData{
		Timestamp:          types.U64(blockTime),
		RecencyDurationSec: mock.DefaultRecencyDurationSec,
		Prices: []types.AssetOptionalPrice{
			{AssetID: pricefetcher.QueriedAsset, Price: &price},
		},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "0.15", got.Prices[0].Price.String())

	// query_price, get_price_data, query_price_callback
	require.Len(t, out.Receipts, 3)
	assert.Equal(t, pricefetcher.DefaultOracle, out.Receipts[1].Receiver)
	assert.Equal(t, "get_price_data", out.Receipts[1].Method)
	assert.Equal(t, fetcherAccount, out.Receipts[2].Receiver)
	assert.Equal(t, "query_price_callback", out.Receipts[2].Method)
	assert.Empty(t, out.LogsOf(fetcherAccount))

	// state is untouched by queries
	assert.False(t, engine.GetContext().StateExists(fetcherAccount))
}

func TestQueryPriceAfterNew(t *testing.T) {
	engine := setup(t)
	ctx := context.Background()

	out, err := engine.Initialize(ctx, fetcherAccount, nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	var s pricefetcher.State
	require.NoError(t, engine.State(fetcherAccount, &s))
	assert.Equal(t, pricefetcher.Default(), s)

	out, err = engine.Initialize(ctx, fetcherAccount, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailure, out.Status)
	assert.ErrorIs(t, out.Err, core.ErrAlreadyInitialized)

	out = execute(t, engine, "alice.testnet", fetcherAccount, "query_price", nil)
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)
}

func TestQueryPriceOracleFailure(t *testing.T) {
	engine := setup(t)

	out := execute(t, engine, pricefetcher.DefaultOracle, pricefetcher.DefaultOracle, "set_failing",
		mock.SetFailingArgs{Failing: true})
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	out = execute(t, engine, "alice.testnet", fetcherAccount, "query_price", nil)
	assert.Equal(t, types.StatusFailure, out.Status)
	assert.ErrorIs(t, out.Err, core.ErrPromiseFailed)
	assert.Empty(t, out.Value)
	assert.Equal(t, []string{"There was an error contacting priceoracle"}, out.LogsOf(fetcherAccount))

	require.Len(t, out.Receipts, 3)
	assert.Equal(t, types.StatusSuccess, out.Receipts[0].Status)
	assert.Equal(t, types.StatusFailure, out.Receipts[1].Status)
	assert.Contains(t, out.Receipts[1].Error, mock.ErrOracleUnavailable.Error())
	assert.Equal(t, types.StatusFailure, out.Receipts[2].Status)
}

func TestQueryPriceMissingOracle(t *testing.T) {
	engine, err := vm.NewEngine(vm.DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.DeployContract(context.Background(), fetcherAccount, pricefetcher.Kind)
	require.NoError(t, err)

	out := execute(t, engine, "alice.testnet", fetcherAccount, "query_price", nil)
	assert.Equal(t, types.StatusFailure, out.Status)
	assert.ErrorIs(t, out.Err, core.ErrPromiseFailed)
	assert.Equal(t, []string{"There was an error contacting priceoracle"}, out.LogsOf(fetcherAccount))
}

func TestCallbackCalledByOtherAccount(t *testing.T) {
	engine := setup(t)

	for _, signer := range []core.AccountID{"alice.testnet", pricefetcher.DefaultOracle} {
		out := execute(t, engine, signer, fetcherAccount, "query_price_callback", nil)
		assert.Equal(t, types.StatusFailure, out.Status)
		assert.ErrorIs(t, out.Err, core.ErrPrivateMethod)
		assert.Empty(t, out.LogsOf(fetcherAccount))
	}
}

func TestNewCalledByOtherAccount(t *testing.T) {
	engine := setup(t)

	out := execute(t, engine, "alice.testnet", fetcherAccount, "new", nil)
	assert.Equal(t, types.StatusFailure, out.Status)
	assert.ErrorIs(t, out.Err, core.ErrPrivateMethod)
	assert.False(t, engine.GetContext().StateExists(fetcherAccount))
}
