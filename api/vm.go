// Package api provides the interface of the virtual machine that executes smart contracts.
// This package defines the API between a client and the VM, but is not used by smart contracts.
package api

import (
	"context"
	"encoding/json"

	"github.com/govm-net/pricefetcher/abi"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
	"github.com/govm-net/pricefetcher/vm"
)

// VM represents the virtual machine that executes smart contracts
type VM interface {
	// DeployContract deploys a registered contract kind to account
	DeployContract(ctx context.Context, account core.AccountID, kind string) (*abi.ABI, error)

	// Initialize calls the init method of the contract at account
	Initialize(ctx context.Context, account core.AccountID, args json.RawMessage) (*vm.Outcome, error)

	// Execute runs a transaction and all receipts it schedules
	Execute(ctx context.Context, tx vm.Transaction) (*vm.Outcome, error)

	// ABI returns the ABI of the contract deployed at account
	ABI(account core.AccountID) (*abi.ABI, error)

	// StateJSON returns the persisted state of account as JSON
	StateJSON(account core.AccountID) ([]byte, error)

	GetContext() types.BlockchainContext
	Close() error
}

var _ VM = (*vm.Engine)(nil)
