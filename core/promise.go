package core

import (
	"encoding/json"
	"fmt"
)

// FunctionCall is a call to be scheduled by the VM as a separate receipt
type FunctionCall struct {
	Receiver AccountID `json:"receiver"`
	Method   string    `json:"method"`
	Args     []byte    `json:"args,omitempty"`
	Gas      Gas       `json:"gas"`
}

// Promise is a handle to the eventual result of scheduled calls.
// The calls run in order, each one after the previous has resolved and
// receiving its result as promise result 0. The value of the promise is the
// result of the last call.
type Promise struct {
	calls []FunctionCall
}

// NewPromise creates a promise for a single call
func NewPromise(call FunctionCall) Promise {
	return Promise{calls: []FunctionCall{call}}
}

// Then schedules next to run after p resolves
func (p Promise) Then(next Promise) Promise {
	calls := make([]FunctionCall, 0, len(p.calls)+len(next.calls))
	calls = append(calls, p.calls...)
	calls = append(calls, next.calls...)
	return Promise{calls: calls}
}

// Calls returns the scheduled calls in execution order
func (p Promise) Calls() []FunctionCall {
	return append([]FunctionCall(nil), p.calls...)
}

// AttachedGas returns the total static gas of all calls
func (p Promise) AttachedGas() Gas {
	var total Gas
	for _, c := range p.calls {
		total += c.Gas
	}
	return total
}

// CallBuilder builds function calls on a remote account
type CallBuilder struct {
	receiver AccountID
	gas      Gas
}

// Ext starts a call to receiver
func Ext(receiver AccountID) CallBuilder {
	return CallBuilder{receiver: receiver}
}

// WithStaticGas sets the gas attached to the call
func (b CallBuilder) WithStaticGas(gas Gas) CallBuilder {
	b.gas = gas
	return b
}

// Call creates a promise invoking method with args encoded as JSON.
// A nil args sends no arguments.
func (b CallBuilder) Call(method string, args any) Promise {
	var data []byte
	if args != nil {
		var err error
		data, err = json.Marshal(args)
		if err != nil {
			panic(fmt.Errorf("failed to marshal args of %s: %w", method, err))
		}
	}
	return NewPromise(FunctionCall{
		Receiver: b.receiver,
		Method:   method,
		Args:     data,
		Gas:      b.gas,
	})
}
