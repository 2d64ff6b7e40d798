package vm

import (
	"errors"
	"fmt"

	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/gas"
	"github.com/govm-net/pricefetcher/types"
)

// Gas charged for host functions
const (
	StateReadGas  core.Gas = 50_000_000_000
	StateWriteGas core.Gas = 100_000_000_000
	LogGas        core.Gas = 10_000_000_000
)

// runtimeContext implements core.Context for one receipt.
// State writes stay in the receipt until it succeeds.
type runtimeContext struct {
	bc      types.BlockchainContext
	receipt *receipt
	signer  core.AccountID
	meter   *gas.Meter
	results []core.PromiseResult

	loaded bool
	exists bool
	state  []byte
	dirty  bool

	logs []LogEntry
}

var _ core.Context = (*runtimeContext)(nil)

func newRuntimeContext(bc types.BlockchainContext, r *receipt, signer core.AccountID, meter *gas.Meter) *runtimeContext {
	results := make([]core.PromiseResult, len(r.deps))
	for i, dep := range r.deps {
		if dep.resolved {
			results[i] = dep.result
		}
	}
	return &runtimeContext{
		bc:      bc,
		receipt: r,
		signer:  signer,
		meter:   meter,
		results: results,
	}
}

func (c *runtimeContext) BlockHeight() uint64 {
	return c.bc.BlockHeight()
}

func (c *runtimeContext) BlockTime() int64 {
	return c.bc.BlockTime()
}

func (c *runtimeContext) CurrentAccountID() core.AccountID {
	return c.receipt.receiver
}

func (c *runtimeContext) PredecessorAccountID() core.AccountID {
	return c.receipt.predecessor
}

func (c *runtimeContext) SignerAccountID() core.AccountID {
	return c.signer
}

func (c *runtimeContext) PrepaidGas() core.Gas {
	return c.meter.Limit()
}

func (c *runtimeContext) UsedGas() core.Gas {
	return c.meter.Used()
}

func (c *runtimeContext) load() {
	if c.loaded {
		return
	}
	c.meter.MustConsume(StateReadGas)

	data, err := c.bc.GetState(c.receipt.receiver)
	switch {
	case err == nil:
		c.exists = true
		c.state = data
	case errors.Is(err, core.ErrStateNotFound):
		c.exists = false
	default:
		panic(fmt.Errorf("failed to read state of %s: %w", c.receipt.receiver, err))
	}
	c.loaded = true
}

func (c *runtimeContext) StateExists() bool {
	c.load()
	return c.exists
}

func (c *runtimeContext) ReadState(v any) error {
	c.load()
	if !c.exists {
		return fmt.Errorf("%w: %s", core.ErrStateNotFound, c.receipt.receiver)
	}
	return decodeState(c.state, v)
}

func (c *runtimeContext) WriteState(v any) error {
	c.meter.MustConsume(StateWriteGas)
	data, err := encodeState(v)
	if err != nil {
		return err
	}
	c.loaded = true
	c.exists = true
	c.state = data
	c.dirty = true
	return nil
}

func (c *runtimeContext) PromiseResultsCount() int {
	return len(c.results)
}

func (c *runtimeContext) PromiseResult(index int) core.PromiseResult {
	core.Assert(index >= 0 && index < len(c.results),
		fmt.Errorf("%w: promise result %d of %d", core.ErrInvalidArgument, index, len(c.results)))
	return c.results[index]
}

func (c *runtimeContext) Log(eventName string, keyValues ...any) {
	c.meter.MustConsume(LogGas)
	c.logs = append(c.logs, LogEntry{
		ReceiptID: c.receipt.id,
		Account:   c.receipt.receiver,
		Event:     eventName,
		KeyValues: keyValues,
	})
}

// commit writes the buffered state to the backend
func (c *runtimeContext) commit() error {
	if !c.dirty {
		return nil
	}
	if err := c.bc.SetState(c.receipt.receiver, c.state); err != nil {
		return fmt.Errorf("failed to save state of %s: %w", c.receipt.receiver, err)
	}
	return nil
}
