package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseThen(t *testing.T) {
	first := Ext("oracle.testnet").WithStaticGas(5*TGas).Call("get_price_data", map[string]any{"asset_ids": []string{"usdn.testnet"}})
	second := Ext("fetcher.testnet").WithStaticGas(3*TGas).Call("on_price", nil)

	p := first.Then(second)
	calls := p.Calls()
	require.Len(t, calls, 2)

	assert.Equal(t, AccountID("oracle.testnet"), calls[0].Receiver)
	assert.Equal(t, "get_price_data", calls[0].Method)
	assert.JSONEq(t, `{"asset_ids":["usdn.testnet"]}`, string(calls[0].Args))
	assert.Equal(t, 5*TGas, calls[0].Gas)

	assert.Equal(t, AccountID("fetcher.testnet"), calls[1].Receiver)
	assert.Nil(t, calls[1].Args)
	assert.Equal(t, 8*TGas, p.AttachedGas())

	// the original promises are left untouched
	assert.Len(t, first.Calls(), 1)
	assert.Len(t, second.Calls(), 1)
}

func TestCallbackResult(t *testing.T) {
	ok := Ok(42)
	assert.False(t, ok.IsErr())
	assert.Equal(t, 42, ok.Unwrap())

	failed := Failed[int](nil)
	assert.True(t, failed.IsErr())
	assert.ErrorIs(t, failed.Err(), ErrPromiseFailed)
	assert.Panics(t, func() { failed.Unwrap() })

	cause := errors.New("boom")
	wrapped := Failed[int](&PromiseError{Status: PromiseFailed, Cause: cause})
	assert.ErrorIs(t, wrapped.Err(), ErrPromiseFailed)
	assert.ErrorIs(t, wrapped.Err(), cause)
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true) })
	assert.NotPanics(t, func() { Assert(error(nil)) })

	assert.PanicsWithValue(t, ErrAlreadyInitialized, func() { Assert(false, ErrAlreadyInitialized) })
	assert.PanicsWithValue(t, "boom", func() { Assert(false, "boom") })
	assert.PanicsWithValue(t, ErrExecutionReverted, func() { Assert(false) })
}
