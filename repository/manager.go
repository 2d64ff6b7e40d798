package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/govm-net/pricefetcher/core"
)

// ErrAlreadyDeployed is returned when an account already has a contract
var ErrAlreadyDeployed = errors.New("contract already deployed")

// Manager 合约部署管理器, one directory per account
type Manager struct {
	rootDir string // 根目录
}

// ContractCode 合约部署信息
type ContractCode struct {
	Account    core.AccountID // 合约账户
	Kind       string         // 合约类型
	ABI        []byte         // ABI JSON
	UpdateTime time.Time      // 最后更新时间
	Hash       [32]byte       // ABI哈希
}

// ContractMetadata 合约元数据
type ContractMetadata struct {
	Kind       string    `json:"kind"`
	Hash       string    `json:"hash"`
	UpdateTime time.Time `json:"update_time"`
}

// NewManager 创建部署管理器
func NewManager(rootDir string) (*Manager, error) {
	// 确保根目录存在
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		slog.Error("failed to create root directory", "dir", rootDir, "error", err)
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	return &Manager{
		rootDir: rootDir,
	}, nil
}

// RegisterContract 注册合约部署
func (m *Manager) RegisterContract(account core.AccountID, kind string, abi []byte) error {
	if err := account.Validate(); err != nil {
		return err
	}

	// 检查合约是否已存在
	contractDir := m.getContractDir(account)
	if _, err := os.Stat(contractDir); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyDeployed, account)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check contract directory: %w", err)
	}

	if err := os.MkdirAll(contractDir, 0755); err != nil {
		return fmt.Errorf("failed to create contract directory: %w", err)
	}

	code := &ContractCode{
		Account:    account,
		Kind:       kind,
		ABI:        abi,
		UpdateTime: time.Now(),
		Hash:       sha256.Sum256(abi),
	}

	if err := m.saveContractFiles(code); err != nil {
		// 删除已创建的目录
		os.RemoveAll(contractDir)
		return fmt.Errorf("failed to save contract files: %w", err)
	}

	return nil
}

// GetContract 获取合约部署信息
func (m *Manager) GetContract(account core.AccountID) (*ContractCode, error) {
	return m.loadContractCode(account)
}

// List returns every registered account in sorted order
func (m *Manager) List() ([]core.AccountID, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	accounts := make([]core.AccountID, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		account, err := core.ParseAccountID(entry.Name())
		if err != nil {
			slog.Warn("skipping unknown directory", "dir", entry.Name())
			continue
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts, nil
}

// getContractDir 获取合约目录路径
func (m *Manager) getContractDir(account core.AccountID) string {
	return filepath.Join(m.rootDir, account.String())
}

// saveContractFiles 保存合约相关文件
func (m *Manager) saveContractFiles(code *ContractCode) error {
	dir := m.getContractDir(code.Account)

	if err := os.WriteFile(filepath.Join(dir, "abi.json"), code.ABI, 0644); err != nil {
		return fmt.Errorf("failed to save abi: %w", err)
	}

	// 创建元数据
	metadata := ContractMetadata{
		Kind:       code.Kind,
		Hash:       hex.EncodeToString(code.Hash[:]),
		UpdateTime: code.UpdateTime,
	}

	metadataBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metadataBytes, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	return nil
}

// loadContractCode 从文件系统加载合约部署信息
func (m *Manager) loadContractCode(account core.AccountID) (*ContractCode, error) {
	dir := m.getContractDir(account)

	abi, err := os.ReadFile(filepath.Join(dir, "abi.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrContractNotFound, account)
		}
		return nil, fmt.Errorf("failed to read abi: %w", err)
	}

	metadataBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata ContractMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	// 校验哈希
	hash := sha256.Sum256(abi)
	if hex.EncodeToString(hash[:]) != metadata.Hash {
		return nil, fmt.Errorf("abi hash mismatch for %s", account)
	}

	return &ContractCode{
		Account:    account,
		Kind:       metadata.Kind,
		ABI:        abi,
		UpdateTime: metadata.UpdateTime,
		Hash:       hash,
	}, nil
}
