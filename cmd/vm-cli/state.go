package main

import (
	"fmt"

	"github.com/govm-net/pricefetcher/abi"
	"github.com/govm-net/pricefetcher/contract"
	"github.com/govm-net/pricefetcher/core"
	"github.com/spf13/cobra"
)

var stateAccount string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the state of a contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := core.ParseAccountID(stateAccount)
		if err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		data, err := engine.StateJSON(account)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var abiKind string

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Print the ABI of a contract kind, or list the registered kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if abiKind == "" {
			for _, kind := range contract.ListRegistered() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		}

		c, err := contract.Get(abiKind)
		if err != nil {
			return err
		}
		contractABI, err := abi.ExtractABI(abiKind, c)
		if err != nil {
			return err
		}
		data, err := contractABI.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	stateCmd.Flags().StringVarP(&stateAccount, "account", "a", "", "Contract account (required)")
	stateCmd.MarkFlagRequired("account")

	abiCmd.Flags().StringVarP(&abiKind, "kind", "k", "", "Contract kind")
}
