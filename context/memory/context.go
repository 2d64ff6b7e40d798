// Package memory provides a BlockchainContext that keeps everything in process memory
package memory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/govm-net/pricefetcher/context"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

// Event is a contract log recorded by the memory context
type Event struct {
	TxHash    core.Hash
	Contract  core.AccountID
	EventName string
	KeyValues []any
}

// defaultBlockchainContext implements the in-memory blockchain context
type defaultBlockchainContext struct {
	mu sync.Mutex

	// Block information
	blockHeight uint64
	blockTime   int64
	blockHash   core.Hash

	// Contract state, one record per account
	states map[core.AccountID][]byte

	receipts []types.ReceiptRecord
	events   []Event
}

func init() {
	context.Register(context.MemoryContextType, NewBlockchainContext)
}

// NewBlockchainContext creates a new in-memory blockchain context
func NewBlockchainContext(params map[string]any) (types.BlockchainContext, error) {
	return &defaultBlockchainContext{
		states: make(map[core.AccountID][]byte),
	}, nil
}

func (ctx *defaultBlockchainContext) SetBlockInfo(height uint64, time int64, hash core.Hash) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.blockHeight = height
	ctx.blockTime = time
	ctx.blockHash = hash
	return nil
}

// BlockHeight gets the current block height
func (ctx *defaultBlockchainContext) BlockHeight() uint64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.blockHeight
}

// BlockTime gets the current block timestamp
func (ctx *defaultBlockchainContext) BlockTime() int64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.blockTime
}

func (ctx *defaultBlockchainContext) BlockHash() core.Hash {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.blockHash
}

func (ctx *defaultBlockchainContext) StateExists(account core.AccountID) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	_, exists := ctx.states[account]
	return exists
}

func (ctx *defaultBlockchainContext) GetState(account core.AccountID) ([]byte, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	data, exists := ctx.states[account]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrStateNotFound, account)
	}
	return append([]byte(nil), data...), nil
}

func (ctx *defaultBlockchainContext) SetState(account core.AccountID, data []byte) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.states[account] = append([]byte(nil), data...)
	return nil
}

func (ctx *defaultBlockchainContext) DeleteState(account core.AccountID) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	delete(ctx.states, account)
	return nil
}

func (ctx *defaultBlockchainContext) SaveReceipt(record types.ReceiptRecord) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.receipts = append(ctx.receipts, record)
	return nil
}

// Log records events
func (ctx *defaultBlockchainContext) Log(txHash core.Hash, account core.AccountID, eventName string, keyValues ...any) {
	ctx.mu.Lock()
	ctx.events = append(ctx.events, Event{
		TxHash:    txHash,
		Contract:  account,
		EventName: eventName,
		KeyValues: keyValues,
	})
	ctx.mu.Unlock()

	params := []any{
		"contract", account,
		"event", eventName,
	}
	params = append(params, keyValues...)
	slog.Info("Contract log", params...)
}

// Receipts returns the receipts saved so far
func (ctx *defaultBlockchainContext) Receipts() []types.ReceiptRecord {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return append([]types.ReceiptRecord(nil), ctx.receipts...)
}

// Events returns the events logged so far
func (ctx *defaultBlockchainContext) Events() []Event {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return append([]Event(nil), ctx.events...)
}

func (ctx *defaultBlockchainContext) Close() error {
	return nil
}
