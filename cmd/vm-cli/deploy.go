package main

import (
	"encoding/json"
	"fmt"

	"github.com/govm-net/pricefetcher/core"
	"github.com/spf13/cobra"
)

var (
	deployAccount string
	deployKind    string
	deployInit    bool
	deployArgs    string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a contract to an account",
	Long: `Deploy a registered contract kind to an account, optionally calling its init method.
Example: vm-cli deploy --account fetcher.testnet --kind pricefetcher --init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := core.ParseAccountID(deployAccount)
		if err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		contractABI, err := engine.DeployContract(cmd.Context(), account, deployKind)
		if err != nil {
			return fmt.Errorf("failed to deploy contract: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Contract %s deployed to %s\n", contractABI.Kind, account)

		if !deployInit {
			return nil
		}
		if err := advanceBlock(engine); err != nil {
			return err
		}
		var initArgs json.RawMessage
		if deployArgs != "" {
			initArgs = json.RawMessage(deployArgs)
		}
		outcome, err := engine.Initialize(cmd.Context(), account, initArgs)
		if err != nil {
			return fmt.Errorf("failed to initialize contract: %w", err)
		}
		return printOutcome(cmd.OutOrStdout(), outcome)
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployAccount, "account", "a", "", "Account to deploy to (required)")
	deployCmd.Flags().StringVarP(&deployKind, "kind", "k", "", "Contract kind (required)")
	deployCmd.Flags().BoolVar(&deployInit, "init", false, "Call the init method after deploying")
	deployCmd.Flags().StringVar(&deployArgs, "args", "", "JSON arguments of the init method")
	deployCmd.MarkFlagRequired("account")
	deployCmd.MarkFlagRequired("kind")
}
