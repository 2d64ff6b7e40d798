// Package vm runs contracts against a BlockchainContext.
// A transaction becomes a tree of receipts: a method that returns a
// core.Promise schedules the promise's calls as new receipts and hands its
// own result over to the last of them.
package vm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/govm-net/pricefetcher/abi"
	vmctx "github.com/govm-net/pricefetcher/context"
	"github.com/govm-net/pricefetcher/contract"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/gas"
	"github.com/govm-net/pricefetcher/metrics"
	"github.com/govm-net/pricefetcher/repository"
	"github.com/govm-net/pricefetcher/types"
)

// ErrAlreadyDeployed is returned when deploying to an account that has a contract
var ErrAlreadyDeployed = repository.ErrAlreadyDeployed

// Config represents engine configuration
type Config struct {
	ContextType   string         // Blockchain context type
	ContextParams map[string]any // Blockchain context parameters
	RepositoryDir string         // Deployment manifest directory, empty keeps deployments in memory

	DefaultGas  core.Gas // Gas of transactions that attach none
	MaxGas      core.Gas // Upper bound of the gas a transaction may attach
	BaseCallGas core.Gas // Charged before every receipt runs
}

// DefaultConfig returns the configuration used by tests and local runs
func DefaultConfig() *Config {
	return &Config{
		ContextType:   string(vmctx.MemoryContextType),
		ContextParams: map[string]any{},
		DefaultGas:    30 * core.TGas,
		MaxGas:        300 * core.TGas,
		BaseCallGas:   core.TGas,
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}
	if config.DefaultGas == 0 {
		return fmt.Errorf("invalid default gas: %d", config.DefaultGas)
	}
	if config.MaxGas < config.DefaultGas {
		return fmt.Errorf("max gas %s is below default gas %s", config.MaxGas, config.DefaultGas)
	}
	return nil
}

type deployment struct {
	kind     string
	abi      *abi.ABI
	contract core.Contract
	methods  map[string]core.Method
}

// Engine is responsible for contract deployment and execution
type Engine struct {
	config      *Config
	codeManager *repository.Manager
	ctx         types.BlockchainContext // Blockchain context

	mu          sync.Mutex
	deployments map[core.AccountID]*deployment
	nonce       uint64
}

// NewEngine creates a new contract engine.
// Deployments recorded in the repository are loaded again.
func NewEngine(config *Config) (*Engine, error) {
	// Ensure configuration is valid
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, err := vmctx.Get(vmctx.ContextType(config.ContextType), config.ContextParams)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockchain context: %w", err)
	}

	e := &Engine{
		config:      config,
		ctx:         ctx,
		deployments: make(map[core.AccountID]*deployment),
	}

	if config.RepositoryDir != "" {
		codeManager, err := repository.NewManager(config.RepositoryDir)
		if err != nil {
			ctx.Close()
			return nil, fmt.Errorf("failed to create code manager: %w", err)
		}
		e.codeManager = codeManager
		if err := e.loadDeployments(); err != nil {
			ctx.Close()
			return nil, err
		}
	}

	return e, nil
}

func (e *Engine) WithContext(ctx types.BlockchainContext) *Engine {
	e.ctx = ctx
	return e
}

func (e *Engine) GetContext() types.BlockchainContext {
	return e.ctx
}

func (e *Engine) loadDeployments() error {
	accounts, err := e.codeManager.List()
	if err != nil {
		return fmt.Errorf("failed to list deployments: %w", err)
	}
	for _, account := range accounts {
		code, err := e.codeManager.GetContract(account)
		if err != nil {
			return fmt.Errorf("failed to load deployment of %s: %w", account, err)
		}
		d, err := newDeployment(code.Kind)
		if err != nil {
			return fmt.Errorf("failed to load deployment of %s: %w", account, err)
		}
		e.deployments[account] = d
		slog.Debug("deployment loaded", "account", account, "kind", code.Kind)
	}
	return nil
}

func newDeployment(kind string) (*deployment, error) {
	c, err := contract.Get(kind)
	if err != nil {
		return nil, err
	}
	contractABI, err := abi.ExtractABI(kind, c)
	if err != nil {
		return nil, fmt.Errorf("failed to extract ABI of %s: %w", kind, err)
	}
	methods := make(map[string]core.Method)
	for _, m := range c.Methods() {
		methods[m.Name] = m
	}
	return &deployment{
		kind:     kind,
		abi:      contractABI,
		contract: c,
		methods:  methods,
	}, nil
}

// DeployContract deploys a registered contract kind to account
func (e *Engine) DeployContract(ctx context.Context, account core.AccountID, kind string) (*abi.ABI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	d, err := newDeployment(kind)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.deployments[account]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, account)
	}

	if e.codeManager != nil {
		abiJSON, err := d.abi.JSON()
		if err != nil {
			return nil, err
		}
		if err := e.codeManager.RegisterContract(account, kind, abiJSON); err != nil {
			return nil, fmt.Errorf("failed to save deployment: %w", err)
		}
	}

	e.deployments[account] = d
	slog.Info("contract deployed", "account", account, "kind", kind)
	return d.abi, nil
}

// ABI returns the ABI of the contract deployed at account
func (e *Engine) ABI(account core.AccountID) (*abi.ABI, error) {
	d, err := e.deployment(account)
	if err != nil {
		return nil, err
	}
	return d.abi, nil
}

func (e *Engine) deployment(account core.AccountID) (*deployment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.deployments[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrContractNotFound, account)
	}
	return d, nil
}

// Initialize calls the init method of the contract at account, signed by the
// account itself.
func (e *Engine) Initialize(ctx context.Context, account core.AccountID, args json.RawMessage) (*Outcome, error) {
	d, err := e.deployment(account)
	if err != nil {
		return nil, err
	}
	var method string
	for _, f := range d.abi.Functions {
		if f.Init {
			method = f.Name
			break
		}
	}
	if method == "" {
		return nil, fmt.Errorf("%w: %s has no init method", core.ErrMethodNotFound, account)
	}
	return e.Execute(ctx, Transaction{
		Signer:   account,
		Receiver: account,
		Method:   method,
		Args:     args,
	})
}

// Execute runs tx and every receipt it schedules.
// A failed transaction is reported through the outcome, the error is only
// set when the transaction could not be run to the end.
func (e *Engine) Execute(ctx context.Context, tx Transaction) (*Outcome, error) {
	if err := tx.Signer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer: %w", err)
	}
	if err := tx.Receiver.Validate(); err != nil {
		return nil, fmt.Errorf("invalid receiver: %w", err)
	}

	prepaid := tx.Gas
	if prepaid == 0 {
		prepaid = e.config.DefaultGas
	}
	if prepaid > e.config.MaxGas {
		return nil, fmt.Errorf("%w: attached %s, max %s", core.ErrInvalidArgument, prepaid, e.config.MaxGas)
	}

	hash := e.txHash(tx)
	run := newTxRun(hash, tx, prepaid)
	outcome := &Outcome{TxHash: hash}

	for !run.done() {
		if err := ctx.Err(); err != nil {
			outcome.Status = types.StatusPending
			outcome.Err = err
			outcome.Error = err.Error()
			metrics.ObserveTransaction(string(outcome.Status))
			return outcome, err
		}
		r := run.next()
		ro, logs := e.executeReceipt(run, r)
		outcome.Receipts = append(outcome.Receipts, ro)
		outcome.Logs = append(outcome.Logs, logs...)
		outcome.GasBurnt += ro.GasBurnt

		if err := e.ctx.SaveReceipt(types.ReceiptRecord{
			TxHash:      hash,
			ID:          ro.ID,
			Predecessor: ro.Predecessor,
			Receiver:    ro.Receiver,
			Method:      ro.Method,
			Status:      ro.Status,
			Result:      ro.Result,
			Error:       ro.Error,
			GasBurnt:    ro.GasBurnt,
		}); err != nil {
			return nil, fmt.Errorf("failed to save receipt: %w", err)
		}
	}

	root := run.root
	switch {
	case !root.resolved:
		outcome.Status = types.StatusPending
	case root.result.Status == core.PromiseSuccessful:
		outcome.Status = types.StatusSuccess
		outcome.Value = root.result.Data
	default:
		outcome.Status = types.StatusFailure
		outcome.Err = root.err
		if root.err != nil {
			outcome.Error = root.err.Error()
		}
	}
	metrics.ObserveTransaction(string(outcome.Status))
	slog.Debug("transaction executed", "tx", hash, "status", outcome.Status, "receipts", len(outcome.Receipts), "gas_burnt", outcome.GasBurnt)
	return outcome, nil
}

func (e *Engine) txHash(tx Transaction) core.Hash {
	e.mu.Lock()
	e.nonce++
	nonce := e.nonce
	e.mu.Unlock()

	data, _ := json.Marshal(struct {
		Tx        Transaction `json:"tx"`
		Nonce     uint64      `json:"nonce"`
		Height    uint64      `json:"height"`
		BlockTime int64       `json:"block_time"`
	}{tx, nonce, e.ctx.BlockHeight(), e.ctx.BlockTime()})
	return core.GetHash(data)
}

// executeReceipt runs r and resolves it unless it handed its result over to a promise
func (e *Engine) executeReceipt(run *txRun, r *receipt) (ReceiptOutcome, []LogEntry) {
	start := time.Now()
	meter := gas.NewMeter(r.gas)
	rc := newRuntimeContext(e.ctx, r, run.signer, meter)

	ro := ReceiptOutcome{
		ID:          r.id,
		Predecessor: r.predecessor,
		Receiver:    r.receiver,
		Method:      r.method,
	}

	value, err := e.invoke(rc, r, meter)
	if err == nil {
		err = e.finish(run, rc, r, value, &ro)
	}

	if err != nil {
		if errors.Is(err, core.ErrOutOfGas) {
			meter.Exhaust()
		}
		execErr := &ExecutionError{
			ReceiptID: r.id,
			Receiver:  r.receiver,
			Method:    r.method,
			Err:       err,
		}
		ro.Status = types.StatusFailure
		ro.Error = execErr.Error()
		run.resolve(r, core.PromiseResult{Status: core.PromiseFailed}, execErr)
		slog.Warn("receipt failed", "tx", run.hash, "receipt", r.id, "receiver", r.receiver, "method", r.method, "error", err)
	} else {
		ro.Status = types.StatusSuccess
	}
	ro.GasBurnt = meter.Used()

	for _, l := range rc.logs {
		e.ctx.Log(run.hash, l.Account, l.Event, l.KeyValues...)
	}
	metrics.ObserveReceipt(r.receiver.String(), r.method, string(ro.Status), uint64(ro.GasBurnt), time.Since(start))
	return ro, rc.logs
}

// invoke checks access and gas, then calls the contract method.
// Panics raised by the contract are returned as errors.
func (e *Engine) invoke(rc *runtimeContext, r *receipt, meter *gas.Meter) (value any, err error) {
	d, err := e.deployment(r.receiver)
	if err != nil {
		return nil, err
	}
	m, ok := d.methods[r.method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", core.ErrMethodNotFound, r.receiver, r.method)
	}
	if m.Private && r.predecessor != r.receiver {
		return nil, fmt.Errorf("%w: %s called by %s", core.ErrPrivateMethod, r.method, r.predecessor)
	}
	if err := meter.Consume(e.config.BaseCallGas); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			switch v := rec.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("%w: %v", core.ErrExecutionReverted, v)
			}
		}
	}()
	return m.Handler(rc, r.args)
}

// finish charges the gas of returned promises, commits the state and
// schedules or resolves the result
func (e *Engine) finish(run *txRun, rc *runtimeContext, r *receipt, value any, ro *ReceiptOutcome) error {
	if p, ok := value.(core.Promise); ok {
		if err := rc.meter.Consume(p.AttachedGas()); err != nil {
			return err
		}
		if err := rc.commit(); err != nil {
			return err
		}
		if len(p.Calls()) == 0 {
			run.resolve(r, core.PromiseResult{Status: core.PromiseSuccessful}, nil)
			return nil
		}
		run.schedule(r, p)
		return nil
	}

	var data []byte
	if value != nil {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
	}
	if err := rc.commit(); err != nil {
		return err
	}
	ro.Result = data
	run.resolve(r, core.PromiseResult{Status: core.PromiseSuccessful, Data: data}, nil)
	return nil
}

// State decodes the persisted record of account into v
func (e *Engine) State(account core.AccountID, v any) error {
	data, err := e.ctx.GetState(account)
	if err != nil {
		return err
	}
	return decodeState(data, v)
}

// StateJSON returns the persisted record of account as JSON
func (e *Engine) StateJSON(account core.AccountID) ([]byte, error) {
	var v map[string]any
	if err := e.State(account, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// Close releases the blockchain context
func (e *Engine) Close() error {
	return e.ctx.Close()
}
