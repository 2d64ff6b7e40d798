package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/govm-net/pricefetcher/api"
	"github.com/govm-net/pricefetcher/config"
	_ "github.com/govm-net/pricefetcher/context/db"
	_ "github.com/govm-net/pricefetcher/context/memory"
	_ "github.com/govm-net/pricefetcher/contract/pricefetcher"
	_ "github.com/govm-net/pricefetcher/mock"
	"github.com/govm-net/pricefetcher/vm"
	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vm-cli",
	Short: "Price fetcher VM command line tool",
	Long: `Command line tool for deploying and calling the price fetcher contract
and the mock price oracle on a local VM.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		return setupLogger(cfg.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (toml, yaml or json)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(abiCmd)
}

func setupLogger(lc config.LogConfig) error {
	level, err := lc.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(lc.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// newEngine creates the VM engine from the loaded configuration
func newEngine() (api.VM, error) {
	engine, err := vm.NewEngine(cfg.EngineConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create VM engine: %w", err)
	}
	return engine, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}
