package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/govm-net/pricefetcher/api"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
	"github.com/govm-net/pricefetcher/vm"
	"github.com/spf13/cobra"
)

var (
	callSigner   string
	callContract string
	callMethod   string
	callArgs     string
	callGas      uint64
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Call a contract method",
	Long: `Call a method of a deployed contract in a new block.
Example: vm-cli call --signer alice.testnet --contract fetcher.testnet --method query_price`,
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := core.ParseAccountID(callSigner)
		if err != nil {
			return fmt.Errorf("invalid signer: %w", err)
		}
		receiver, err := core.ParseAccountID(callContract)
		if err != nil {
			return fmt.Errorf("invalid contract: %w", err)
		}
		var rawArgs json.RawMessage
		if callArgs != "" {
			if !json.Valid([]byte(callArgs)) {
				return fmt.Errorf("%w: args are not valid JSON", core.ErrInvalidArgument)
			}
			rawArgs = json.RawMessage(callArgs)
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := advanceBlock(engine); err != nil {
			return err
		}

		outcome, err := engine.Execute(cmd.Context(), vm.Transaction{
			Signer:   signer,
			Receiver: receiver,
			Method:   callMethod,
			Args:     rawArgs,
			Gas:      core.Gas(callGas) * core.TGas,
		})
		if err != nil {
			return fmt.Errorf("failed to execute transaction: %w", err)
		}
		return printOutcome(cmd.OutOrStdout(), outcome)
	},
}

func init() {
	callCmd.Flags().StringVarP(&callSigner, "signer", "s", "", "Signer account (required)")
	callCmd.Flags().StringVar(&callContract, "contract", "", "Contract account (required)")
	callCmd.Flags().StringVarP(&callMethod, "method", "m", "", "Method name (required)")
	callCmd.Flags().StringVar(&callArgs, "args", "", "JSON arguments")
	callCmd.Flags().Uint64Var(&callGas, "gas", 0, "Attached gas in TGas, 0 uses the configured default")
	callCmd.MarkFlagRequired("signer")
	callCmd.MarkFlagRequired("contract")
	callCmd.MarkFlagRequired("method")
}

// advanceBlock starts a new block at the current time
func advanceBlock(engine api.VM) error {
	bc := engine.GetContext()
	height := bc.BlockHeight() + 1
	now := time.Now().UnixNano()
	hash := core.GetHash([]byte(fmt.Sprintf("%s:%d:%d", bc.BlockHash(), height, now)))
	if err := bc.SetBlockInfo(height, now, hash); err != nil {
		return fmt.Errorf("failed to set block info: %w", err)
	}
	return nil
}

func printOutcome(w io.Writer, outcome *vm.Outcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	if outcome.Status != types.StatusSuccess {
		return fmt.Errorf("transaction %s: %s", outcome.Status, outcome.Error)
	}
	return nil
}
