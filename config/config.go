// Package config loads the settings of the vm-cli from defaults, an optional
// file and PRICEFETCHER_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	vmctx "github.com/govm-net/pricefetcher/context"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/vm"
)

// Config is the complete vm-cli configuration
type Config struct {
	Context    ContextConfig `mapstructure:"context"`
	Repository string        `mapstructure:"repository_dir"`
	Gas        GasConfig     `mapstructure:"gas"`
	Log        LogConfig     `mapstructure:"log"`

	configPath string
}

// ContextConfig selects the blockchain context backend
type ContextConfig struct {
	Type      string `mapstructure:"type"`
	DBPath    string `mapstructure:"db_path"`
	CacheSize int    `mapstructure:"cache_size"`
}

// GasConfig is expressed in TGas
type GasConfig struct {
	Prepaid uint64 `mapstructure:"prepaid"`
	Max     uint64 `mapstructure:"max"`
	BaseTx  uint64 `mapstructure:"base_call"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// ConfigPath returns the file the configuration was read from, if any
func (c *Config) ConfigPath() string {
	return c.configPath
}

// Validate checks the configuration for consistency
func Validate(c *Config) error {
	switch vmctx.ContextType(c.Context.Type) {
	case vmctx.MemoryContextType:
	case vmctx.DBContextType:
		if c.Context.DBPath == "" {
			return fmt.Errorf("context.db_path is required for the db context")
		}
	default:
		return fmt.Errorf("unknown context type %q", c.Context.Type)
	}
	if c.Context.CacheSize < 0 {
		return fmt.Errorf("invalid context.cache_size: %d", c.Context.CacheSize)
	}

	if c.Gas.Prepaid == 0 {
		return fmt.Errorf("gas.prepaid must be positive")
	}
	if c.Gas.Max < c.Gas.Prepaid {
		return fmt.Errorf("gas.max (%d) is below gas.prepaid (%d)", c.Gas.Max, c.Gas.Prepaid)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses the configured level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// EngineConfig converts c into the configuration of a vm.Engine
func (c *Config) EngineConfig() *vm.Config {
	params := map[string]any{}
	if c.Context.DBPath != "" {
		params["db_path"] = c.Context.DBPath
	}
	if c.Context.CacheSize > 0 {
		params["cache_size"] = c.Context.CacheSize
	}
	return &vm.Config{
		ContextType:   c.Context.Type,
		ContextParams: params,
		RepositoryDir: c.Repository,
		DefaultGas:    core.Gas(c.Gas.Prepaid) * core.TGas,
		MaxGas:        core.Gas(c.Gas.Max) * core.TGas,
		BaseCallGas:   core.Gas(c.Gas.BaseTx) * core.TGas,
	}
}
