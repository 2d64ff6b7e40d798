package mock_test

import (
	"context"
	"encoding/json"
	"testing"

	_ "github.com/govm-net/pricefetcher/context/memory"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/mock"
	"github.com/govm-net/pricefetcher/types"
	"github.com/govm-net/pricefetcher/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oracle core.AccountID = "priceoracle.testnet"

func newOracle(t *testing.T, args any) *vm.Engine {
	t.Helper()
	engine, err := vm.NewEngine(vm.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	require.NoError(t, engine.GetContext().SetBlockInfo(7, 42_000_000_000, core.ZeroHash))

	_, err = engine.DeployContract(context.Background(), oracle, mock.OracleKind)
	require.NoError(t, err)

	var raw json.RawMessage
	if args != nil {
		raw, err = json.Marshal(args)
		require.NoError(t, err)
	}
	out, err := engine.Initialize(context.Background(), oracle, raw)
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)
	return engine
}

func call(t *testing.T, engine *vm.Engine, signer core.AccountID, method string, args any) *vm.Outcome {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	out, err := engine.Execute(context.Background(), vm.Transaction{
		Signer:   signer,
		Receiver: oracle,
		Method:   method,
		Args:     raw,
	})
	require.NoError(t, err)
	return out
}

func TestGetPriceData(t *testing.T) {
	engine := newOracle(t, mock.NewArgs{RecencyDurationSec: 60})

	for _, args := range []mock.SetPriceArgs{
		{AssetID: "wbtc.testnet", Price: types.Price{Multiplier: types.U128FromUint64(3000000), Decimals: 2}},
		{AssetID: "usdn.testnet", Price: types.Price{Multiplier: types.MustU128("150000000000000000000000"), Decimals: 24}},
	} {
		out := call(t, engine, oracle, "set_price", args)
		require.Equal(t, types.StatusSuccess, out.Status, out.Error)
		assert.Equal(t, []string{"price_set"}, out.LogsOf(oracle))
	}

	t.Run("requested ids", func(t *testing.T) {
		out := call(t, engine, "alice.testnet", "get_price_data",
			types.GetPriceDataArgs{AssetIDs: []core.AccountID{"usdn.testnet", "near.testnet"}})
		require.Equal(t, types.StatusSuccess, out.Status, out.Error)

		var data types.PriceData
		require.NoError(t, out.Decode(&data))
		assert.Equal(t, types.U64(42_000_000_000), data.Timestamp)
		assert.Equal(t, types.DurationSec(60), data.RecencyDurationSec)
		require.Len(t, data.Prices, 2)
		require.NotNil(t, data.Prices[0].Price)
		assert.Equal(t, "0.15", data.Prices[0].Price.String())
		assert.Equal(t, core.AccountID("near.testnet"), data.Prices[1].AssetID)
		assert.Nil(t, data.Prices[1].Price)
	})

	t.Run("all ids", func(t *testing.T) {
		out := call(t, engine, "alice.testnet", "get_price_data", types.GetPriceDataArgs{})
		require.Equal(t, types.StatusSuccess, out.Status, out.Error)

		var data types.PriceData
		require.NoError(t, out.Decode(&data))
		require.Len(t, data.Prices, 2)
		assert.Equal(t, core.AccountID("usdn.testnet"), data.Prices[0].AssetID)
		assert.Equal(t, core.AccountID("wbtc.testnet"), data.Prices[1].AssetID)
		assert.Equal(t, "30000", data.Prices[1].Price.String())
	})
}

func TestDefaultRecency(t *testing.T) {
	engine := newOracle(t, nil)

	out := call(t, engine, "alice.testnet", "get_price_data", types.GetPriceDataArgs{})
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	var data types.PriceData
	require.NoError(t, out.Decode(&data))
	assert.Equal(t, mock.DefaultRecencyDurationSec, data.RecencyDurationSec)
	assert.Empty(t, data.Prices)
}

func TestFailing(t *testing.T) {
	engine := newOracle(t, nil)

	out := call(t, engine, oracle, "set_failing", mock.SetFailingArgs{Failing: true})
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	out = call(t, engine, "alice.testnet", "get_price_data", types.GetPriceDataArgs{})
	assert.Equal(t, types.StatusFailure, out.Status)
	assert.ErrorIs(t, out.Err, mock.ErrOracleUnavailable)

	out = call(t, engine, oracle, "set_failing", mock.SetFailingArgs{Failing: false})
	require.Equal(t, types.StatusSuccess, out.Status, out.Error)

	out = call(t, engine, "alice.testnet", "get_price_data", types.GetPriceDataArgs{})
	assert.Equal(t, types.StatusSuccess, out.Status, out.Error)
}

func TestAccessControl(t *testing.T) {
	engine := newOracle(t, nil)

	out := call(t, engine, "alice.testnet", "set_price", mock.SetPriceArgs{AssetID: "usdn.testnet"})
	assert.ErrorIs(t, out.Err, core.ErrPrivateMethod)

	out = call(t, engine, "alice.testnet", "set_failing", mock.SetFailingArgs{Failing: true})
	assert.ErrorIs(t, out.Err, core.ErrPrivateMethod)

	out = call(t, engine, oracle, "set_price", mock.SetPriceArgs{AssetID: "NOT VALID"})
	assert.ErrorIs(t, out.Err, core.ErrInvalidAccountID)

	out = call(t, engine, oracle, "new", mock.NewArgs{})
	assert.ErrorIs(t, out.Err, core.ErrAlreadyInitialized)
}

func TestNotInitialized(t *testing.T) {
	engine, err := vm.NewEngine(vm.DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()
	_, err = engine.DeployContract(context.Background(), oracle, mock.OracleKind)
	require.NoError(t, err)

	out := call(t, engine, "alice.testnet", "get_price_data", types.GetPriceDataArgs{})
	assert.ErrorIs(t, out.Err, core.ErrNotInitialized)
}
