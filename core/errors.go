package core

import (
	"errors"
)

// Common errors returned by contracts and the VM
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrUnauthorized       = errors.New("unauthorized operation")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("contract is not initialized")
	ErrPrivateMethod      = errors.New("method is private")
	ErrContractNotFound   = errors.New("contract not found")
	ErrMethodNotFound     = errors.New("method not found")
	ErrStateNotFound      = errors.New("state not found")
	ErrOutOfGas           = errors.New("exceeded the prepaid gas")
	ErrPromiseFailed      = errors.New("promise failed")
	ErrExecutionReverted  = errors.New("execution reverted")
)
