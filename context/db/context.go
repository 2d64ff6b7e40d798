// Package db provides a BlockchainContext persisted in SQLite through GORM
package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/govm-net/pricefetcher/context"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	defaultDBPath    = "./sqlite.db"
	defaultCacheSize = 256
)

// DBBlock is the block the context currently executes in
type DBBlock struct {
	gorm.Model
	Height uint64 `gorm:"column:height;not null;unique;index"`
	Time   int64  `gorm:"column:block_time;not null"`
	Hash   string `gorm:"column:block_hash;not null;index;size:66"`
}

func (DBBlock) TableName() string {
	return "blocks"
}

// DBState is the persisted state record of one contract account
type DBState struct {
	Account   string `gorm:"column:account_id;primaryKey;size:64"`
	Data      []byte `gorm:"column:state_data;type:blob;not null"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:nano"`
}

// TableName specifies the table name for DBState
func (DBState) TableName() string {
	return "contract_states"
}

// DBReceipt represents an executed receipt
type DBReceipt struct {
	gorm.Model
	TxHash      string `gorm:"column:tx_hash;not null;index;size:66"`
	ReceiptID   uint64 `gorm:"column:receipt_id;not null"`
	Predecessor string `gorm:"column:predecessor_id;not null;index;size:64"`
	Receiver    string `gorm:"column:receiver_id;not null;index;size:64"`
	Method      string `gorm:"column:method_name;not null;size:255"`
	Status      string `gorm:"column:status;not null;size:16"`
	Result      []byte `gorm:"column:result;type:blob"`
	Error       string `gorm:"column:error_message"`
	GasBurnt    uint64 `gorm:"column:gas_burnt;not null;default:0"`
}

// TableName specifies the table name for DBReceipt
func (DBReceipt) TableName() string {
	return "receipts"
}

// DBEvent represents an event in the database
type DBEvent struct {
	gorm.Model
	BlockHeight uint64 `gorm:"column:block_height;not null;index"`
	TxHash      string `gorm:"column:tx_hash;not null;index;size:66"`
	Contract    string `gorm:"column:contract_id;not null;index;size:64"`
	EventName   string `gorm:"column:event_name;not null;size:255"`
	KeyValues   []byte `gorm:"column:key_values;type:blob;not null"` // JSON encoded key-value pairs
}

// TableName specifies the table name for DBEvent
func (DBEvent) TableName() string {
	return "events"
}

// Context implements the BlockchainContext interface using SQLite with GORM
type Context struct {
	db *gorm.DB

	mu           sync.RWMutex
	currentBlock DBBlock

	// states caches recently read state records; nil marks a known missing record
	states *lru.Cache[core.AccountID, []byte]
}

func init() {
	context.Register(context.DBContextType, NewContext)
}

// NewContext creates a new SQLite-backed blockchain context.
// Supported params: "db_path" (string) and "cache_size" (int).
func NewContext(params map[string]any) (types.BlockchainContext, error) {
	dbPath := defaultDBPath
	if path, ok := params["db_path"].(string); ok && path != "" {
		dbPath = path
	}
	cacheSize := defaultCacheSize
	if size, ok := params["cache_size"].(int); ok && size > 0 {
		cacheSize = size
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache, err := lru.New[core.AccountID, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create state cache: %w", err)
	}

	ctx := &Context{db: db, states: cache}
	if err := ctx.initDB(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (c *Context) initDB() error {
	// Auto migrate the schemas with indexes
	err := c.db.AutoMigrate(
		&DBBlock{},
		&DBState{},
		&DBReceipt{},
		&DBEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// resume from the latest known block
	var block DBBlock
	result := c.db.Order("height desc").Limit(1).Find(&block)
	if result.Error != nil {
		return fmt.Errorf("failed to load latest block: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		c.currentBlock = block
	}
	return nil
}

// SetBlockInfo implements types.BlockchainContext
func (c *Context) SetBlockInfo(height uint64, time int64, hash core.Hash) error {
	block := DBBlock{Height: height, Time: time, Hash: hash.String()}
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "height"}},
		DoUpdates: clause.AssignmentColumns([]string{"block_time", "block_hash", "updated_at"}),
	}).Create(&block).Error
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}

	c.mu.Lock()
	c.currentBlock = block
	c.mu.Unlock()
	return nil
}

// BlockHeight implements types.BlockchainContext
func (c *Context) BlockHeight() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBlock.Height
}

// BlockTime implements types.BlockchainContext
func (c *Context) BlockTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBlock.Time
}

// BlockHash implements types.BlockchainContext
func (c *Context) BlockHash() core.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.HashFromString(c.currentBlock.Hash)
}

// StateExists implements types.BlockchainContext
func (c *Context) StateExists(account core.AccountID) bool {
	data, err := c.GetState(account)
	return err == nil && data != nil
}

// GetState implements types.BlockchainContext
func (c *Context) GetState(account core.AccountID) ([]byte, error) {
	if data, ok := c.states.Get(account); ok {
		if data == nil {
			return nil, fmt.Errorf("%w: %s", core.ErrStateNotFound, account)
		}
		return append([]byte(nil), data...), nil
	}

	var state DBState
	result := c.db.Where("account_id = ?", account.String()).First(&state)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		c.states.Add(account, nil)
		return nil, fmt.Errorf("%w: %s", core.ErrStateNotFound, account)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get state: %w", result.Error)
	}

	c.states.Add(account, state.Data)
	return append([]byte(nil), state.Data...), nil
}

// SetState implements types.BlockchainContext
func (c *Context) SetState(account core.AccountID, data []byte) error {
	state := DBState{Account: account.String(), Data: data}
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_data", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		c.states.Remove(account)
		return fmt.Errorf("failed to save state: %w", err)
	}

	c.states.Add(account, append([]byte(nil), data...))
	return nil
}

// DeleteState implements types.BlockchainContext
func (c *Context) DeleteState(account core.AccountID) error {
	c.states.Remove(account)
	if err := c.db.Where("account_id = ?", account.String()).Delete(&DBState{}).Error; err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// SaveReceipt implements types.BlockchainContext
func (c *Context) SaveReceipt(record types.ReceiptRecord) error {
	receipt := &DBReceipt{
		TxHash:      record.TxHash.String(),
		ReceiptID:   record.ID,
		Predecessor: record.Predecessor.String(),
		Receiver:    record.Receiver.String(),
		Method:      record.Method,
		Status:      string(record.Status),
		Result:      record.Result,
		Error:       record.Error,
		GasBurnt:    uint64(record.GasBurnt),
	}
	if err := c.db.Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// Receipts returns the receipts of a transaction in execution order
func (c *Context) Receipts(txHash core.Hash) ([]types.ReceiptRecord, error) {
	var rows []DBReceipt
	if err := c.db.Where("tx_hash = ?", txHash.String()).Order("receipt_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}

	records := make([]types.ReceiptRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.ReceiptRecord{
			TxHash:      core.HashFromString(row.TxHash),
			ID:          row.ReceiptID,
			Predecessor: core.AccountID(row.Predecessor),
			Receiver:    core.AccountID(row.Receiver),
			Method:      row.Method,
			Status:      types.ReceiptStatus(row.Status),
			Result:      row.Result,
			Error:       row.Error,
			GasBurnt:    core.Gas(row.GasBurnt),
		})
	}
	return records, nil
}

// Log implements types.BlockchainContext
func (c *Context) Log(txHash core.Hash, contract core.AccountID, eventName string, keyValues ...any) {
	// 将 keyValues 编码为 JSON
	data, err := json.Marshal(keyValues)
	if err != nil {
		slog.Error("Failed to marshal event data", "error", err)
		return
	}

	event := &DBEvent{
		BlockHeight: c.BlockHeight(),
		TxHash:      txHash.String(),
		Contract:    contract.String(),
		EventName:   eventName,
		KeyValues:   data,
	}
	if err := c.db.Create(event).Error; err != nil {
		slog.Error("Failed to save event", "error", err)
		return
	}

	// 同时输出到日志
	params := []any{
		"block", event.BlockHeight,
		"tx", event.TxHash,
		"contract", contract,
		"event", eventName,
	}
	params = append(params, keyValues...)
	slog.Info("Contract event", params...)
}

// Close implements types.BlockchainContext
func (c *Context) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
