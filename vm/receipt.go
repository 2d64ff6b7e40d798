package vm

import (
	"github.com/govm-net/pricefetcher/core"
)

// receipt is one scheduled function call of a transaction
type receipt struct {
	id          uint64
	predecessor core.AccountID
	receiver    core.AccountID
	method      string
	args        []byte
	gas         core.Gas

	// receipts whose results are handed to this one as promise results
	deps []*receipt

	resolved bool
	result   core.PromiseResult
	err      error

	// receipts that handed their result over to this one
	forwards []*receipt
}

func (r *receipt) ready() bool {
	for _, dep := range r.deps {
		if !dep.resolved {
			return false
		}
	}
	return true
}

// txRun schedules the receipts of one transaction.
// Ready receipts run in FIFO order; a receipt waits in blocked until all of
// its dependencies are resolved.
type txRun struct {
	hash   core.Hash
	signer core.AccountID
	nextID uint64

	root    *receipt
	queue   []*receipt
	blocked []*receipt
}

func newTxRun(hash core.Hash, tx Transaction, gas core.Gas) *txRun {
	run := &txRun{hash: hash, signer: tx.Signer}
	run.root = run.newReceipt(tx.Signer, core.FunctionCall{
		Receiver: tx.Receiver,
		Method:   tx.Method,
		Args:     tx.Args,
		Gas:      gas,
	}, nil)
	run.push(run.root)
	return run
}

func (t *txRun) newReceipt(predecessor core.AccountID, call core.FunctionCall, deps []*receipt) *receipt {
	t.nextID++
	return &receipt{
		id:          t.nextID,
		predecessor: predecessor,
		receiver:    call.Receiver,
		method:      call.Method,
		args:        call.Args,
		gas:         call.Gas,
		deps:        deps,
	}
}

func (t *txRun) push(r *receipt) {
	if r.ready() {
		t.queue = append(t.queue, r)
	} else {
		t.blocked = append(t.blocked, r)
	}
}

// next pops the next ready receipt
func (t *txRun) next() *receipt {
	if len(t.queue) == 0 {
		return nil
	}
	r := t.queue[0]
	t.queue = t.queue[1:]
	return r
}

// schedule turns the calls of promise p, created by caller, into receipts.
// Each call depends on the previous one and the caller's result is
// forwarded to the last call.
func (t *txRun) schedule(caller *receipt, p core.Promise) {
	var prev *receipt
	for _, call := range p.Calls() {
		var deps []*receipt
		if prev != nil {
			deps = []*receipt{prev}
		}
		r := t.newReceipt(caller.receiver, call, deps)
		t.push(r)
		prev = r
	}
	if prev != nil {
		prev.forwards = append(prev.forwards, caller)
	}
}

// resolve sets the final result of r and of every receipt forwarded to it,
// then releases the receipts that were waiting on them.
func (t *txRun) resolve(r *receipt, result core.PromiseResult, err error) {
	r.resolved = true
	r.result = result
	r.err = err
	for _, f := range r.forwards {
		t.resolve(f, result, err)
	}
	t.promote()
}

func (t *txRun) promote() {
	blocked := t.blocked[:0]
	for _, r := range t.blocked {
		if r.ready() {
			t.queue = append(t.queue, r)
		} else {
			blocked = append(blocked, r)
		}
	}
	t.blocked = blocked
}

func (t *txRun) done() bool {
	return len(t.queue) == 0
}
