package vm

import (
	"encoding/json"
	"fmt"

	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

// Transaction is a call signed by an account
type Transaction struct {
	Signer   core.AccountID  `json:"signer"`
	Receiver core.AccountID  `json:"receiver"`
	Method   string          `json:"method"`
	Args     json.RawMessage `json:"args,omitempty"`
	Gas      core.Gas        `json:"gas"` // zero uses Config.DefaultGas
}

// LogEntry is a log emitted by a receipt
type LogEntry struct {
	ReceiptID uint64         `json:"receipt_id"`
	Account   core.AccountID `json:"account"`
	Event     string         `json:"event"`
	KeyValues []any          `json:"key_values,omitempty"`
}

// ReceiptOutcome is the result of one executed receipt
type ReceiptOutcome struct {
	ID          uint64              `json:"id"`
	Predecessor core.AccountID      `json:"predecessor"`
	Receiver    core.AccountID      `json:"receiver"`
	Method      string              `json:"method"`
	Status      types.ReceiptStatus `json:"status"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
	GasBurnt    core.Gas            `json:"gas_burnt"`
}

// Outcome is the result of a transaction after all of its receipts ran.
// Value is the result of the transaction's call, or of the promise chain it
// handed its result over to.
type Outcome struct {
	TxHash   core.Hash           `json:"tx_hash"`
	Status   types.ReceiptStatus `json:"status"`
	Value    json.RawMessage     `json:"value,omitempty"`
	Err      error               `json:"-"`
	Error    string              `json:"error,omitempty"`
	Logs     []LogEntry          `json:"logs,omitempty"`
	Receipts []ReceiptOutcome    `json:"receipts"`
	GasBurnt core.Gas            `json:"gas_burnt"`
}

// Failed reports whether the transaction failed
func (o *Outcome) Failed() bool {
	return o.Status == types.StatusFailure
}

// Decode unmarshals the value of a successful transaction into v
func (o *Outcome) Decode(v any) error {
	if o.Status != types.StatusSuccess {
		return fmt.Errorf("transaction %s is %s", o.TxHash, o.Status)
	}
	if len(o.Value) == 0 {
		return fmt.Errorf("transaction %s returned no value", o.TxHash)
	}
	return json.Unmarshal(o.Value, v)
}

// LogsOf returns the names of the events emitted by account, in order
func (o *Outcome) LogsOf(account core.AccountID) []string {
	var events []string
	for _, l := range o.Logs {
		if l.Account == account {
			events = append(events, l.Event)
		}
	}
	return events
}

// ExecutionError is the failure of one receipt
type ExecutionError struct {
	ReceiptID uint64
	Receiver  core.AccountID
	Method    string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("receipt %d %s.%s failed: %v", e.ReceiptID, e.Receiver, e.Method, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
