package core

import (
	"encoding/json"
	"fmt"
)

// PromiseStatus is the resolution state of a promise
type PromiseStatus uint8

const (
	PromiseNotReady PromiseStatus = iota
	PromiseSuccessful
	PromiseFailed
)

func (s PromiseStatus) String() string {
	switch s {
	case PromiseSuccessful:
		return "successful"
	case PromiseFailed:
		return "failed"
	default:
		return "not_ready"
	}
}

// PromiseResult is the raw result of a scheduled call, as handed to its continuation
type PromiseResult struct {
	Status PromiseStatus
	Data   []byte // JSON value, only set when successful
}

// PromiseError reports why a promise result can not be used
type PromiseError struct {
	Status PromiseStatus
	Cause  error
}

func (e *PromiseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrPromiseFailed, e.Status, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrPromiseFailed, e.Status)
}

func (e *PromiseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrPromiseFailed, e.Cause}
	}
	return []error{ErrPromiseFailed}
}

// CallbackResult is the decoded result of a promise: either a value or an error
type CallbackResult[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value
func Ok[T any](v T) CallbackResult[T] {
	return CallbackResult[T]{value: v}
}

// Failed wraps a failed promise
func Failed[T any](err error) CallbackResult[T] {
	if err == nil {
		err = &PromiseError{Status: PromiseFailed}
	}
	return CallbackResult[T]{err: err}
}

// DecodeCallbackResult decodes promise result index of ctx into T.
// A result that is not successful becomes a failed CallbackResult.
func DecodeCallbackResult[T any](ctx Context, index int) CallbackResult[T] {
	Assert(index >= 0 && index < ctx.PromiseResultsCount(),
		fmt.Errorf("%w: promise result %d of %d", ErrInvalidArgument, index, ctx.PromiseResultsCount()))

	res := ctx.PromiseResult(index)
	if res.Status != PromiseSuccessful {
		return Failed[T](&PromiseError{Status: res.Status})
	}
	var v T
	if err := json.Unmarshal(res.Data, &v); err != nil {
		panic(fmt.Errorf("failed to deserialize callback using JSON: %w", err))
	}
	return Ok(v)
}

func (r CallbackResult[T]) IsErr() bool {
	return r.err != nil
}

func (r CallbackResult[T]) Err() error {
	return r.err
}

// Unwrap returns the value, panicking with the error if the promise failed
func (r CallbackResult[T]) Unwrap() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}
