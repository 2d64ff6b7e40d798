package types

import (
	"github.com/govm-net/pricefetcher/core"
)

// ReceiptStatus is the final state of a receipt or transaction
type ReceiptStatus string

const (
	StatusSuccess ReceiptStatus = "success"
	StatusFailure ReceiptStatus = "failure"
	StatusPending ReceiptStatus = "pending"
)

// ReceiptRecord is what the VM persists about one executed receipt
type ReceiptRecord struct {
	TxHash      core.Hash      `json:"tx_hash"`
	ID          uint64         `json:"id"`
	Predecessor core.AccountID `json:"predecessor"`
	Receiver    core.AccountID `json:"receiver"`
	Method      string         `json:"method"`
	Status      ReceiptStatus  `json:"status"`
	Result      []byte         `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	GasBurnt    core.Gas       `json:"gas_burnt"`
}

// BlockchainContext is the storage backend the VM runs contracts against
type BlockchainContext interface {
	// Block information
	SetBlockInfo(height uint64, time int64, hash core.Hash) error
	BlockHeight() uint64 // Get current block height
	BlockTime() int64    // Get current block timestamp
	BlockHash() core.Hash

	// Contract state, one record per account
	StateExists(account core.AccountID) bool
	GetState(account core.AccountID) ([]byte, error) // core.ErrStateNotFound if absent
	SetState(account core.AccountID, data []byte) error
	DeleteState(account core.AccountID) error

	// Receipts and events
	SaveReceipt(record ReceiptRecord) error
	Log(txHash core.Hash, account core.AccountID, eventName string, keyValues ...any)

	Close() error
}
