// Package core defines the interfaces a smart contract needs to interact with the VM.
// Contract developers only need the types in this package to write a contract.
package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash identifies transactions and blocks
type Hash [32]byte

var ZeroHash = Hash{}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func HashFromString(str string) Hash {
	str = strings.TrimPrefix(str, "0x")
	h, err := hex.DecodeString(str)
	if err != nil {
		return ZeroHash
	}
	var out Hash
	copy(out[:], h)
	return out
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	*h = HashFromString(string(text))
	return nil
}

// GetHash returns the SHA-256 hash of data
func GetHash(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// Context is the main interface between a contract and the blockchain environment.
// A Context is only valid for the duration of one receipt execution.
type Context interface {
	// Blockchain information
	BlockHeight() uint64 // Current block height
	BlockTime() int64    // Current block timestamp in nanoseconds

	// Accounts
	CurrentAccountID() AccountID     // Account the contract is deployed on
	PredecessorAccountID() AccountID // Account that scheduled this call
	SignerAccountID() AccountID      // Account that signed the original transaction

	// Gas
	PrepaidGas() Gas // Gas attached to this call
	UsedGas() Gas    // Gas burnt so far by this call

	// Contract state. The record is encoded by the host; writes become visible
	// to other receipts only when the current receipt succeeds.
	StateExists() bool
	ReadState(v any) error
	WriteState(v any) error

	// Results of the promises this call was scheduled after
	PromiseResultsCount() int
	PromiseResult(index int) PromiseResult

	// Logs and events
	Log(eventName string, keyValues ...any)
}

// Handler executes one contract method with JSON encoded params.
// A handler may return a Promise to hand its result over to scheduled calls.
type Handler func(ctx Context, params []byte) (any, error)

// Method describes an entry point of a contract
type Method struct {
	Name    string // external (snake_case) method name
	Init    bool   // initializes contract state
	Private bool   // only callable by the contract's own account
	Handler Handler
}

// Contract is implemented by every deployable contract
type Contract interface {
	Methods() []Method
}

// Assert panics when condition does not hold.
// condition may be a bool or an error; msgs are used as the panic value when condition is false.
func Assert(condition any, msgs ...any) {
	switch v := condition.(type) {
	case bool:
		if v {
			return
		}
		if len(msgs) == 0 {
			panic(ErrExecutionReverted)
		}
		if err, ok := msgs[0].(error); ok {
			panic(err)
		}
		panic(msgs[0])
	case error:
		if v != nil {
			panic(v)
		}
	}
}
