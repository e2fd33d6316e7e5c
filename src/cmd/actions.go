package cmd

import (
	"context"

	"github.com/warp-contracts/market/src/app"
	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/ledger"

	"github.com/spf13/cobra"
)

var transferDryRun bool

func init() {
	transferCmd.Flags().BoolVar(&transferDryRun, "dry-run", false, "only show what would be transferred")

	RootCmd.AddCommand(transferCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(unlistCmd)
	RootCmd.AddCommand(buyCmd)
}

// Submits the action built for the configured signer and waits for confirmation
func submit(cmd *cobra.Command, build func(ctx context.Context, controller *app.Controller, signer ledger.Signer) (coordinator.Action, error)) error {
	return run(cmd, func(ctx context.Context, controller *app.Controller) (any, error) {
		signer, err := requireSigner(controller)
		if err != nil {
			return nil, err
		}

		action, err := build(ctx, controller, signer)
		if err != nil {
			return nil, err
		}

		return controller.Coordinator.Submit(ctx, action)
	})
}

var transferCmd = &cobra.Command{
	Use:   "transfer <id> <to>",
	Short: "Transfers an owned asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseId(args[0])
		if err != nil {
			return
		}

		if transferDryRun {
			return run(cmd, func(ctx context.Context, controller *app.Controller) (any, error) {
				signer, err := requireSigner(controller)
				if err != nil {
					return nil, err
				}
				return controller.Coordinator.PreviewTransfer(ctx, signer.Address(), id, args[1])
			})
		}

		to, err := eth.ParseRecipient(args[1])
		if err != nil {
			return
		}

		return submit(cmd, func(ctx context.Context, controller *app.Controller, signer ledger.Signer) (coordinator.Action, error) {
			return coordinator.Transfer(signer, id, to), nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list <id> <price>",
	Short: "Puts an owned asset up for sale, price in ether",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseId(args[0])
		if err != nil {
			return
		}

		price, err := eth.ParsePrice(args[1])
		if err != nil {
			return
		}

		return submit(cmd, func(ctx context.Context, controller *app.Controller, signer ledger.Signer) (coordinator.Action, error) {
			return coordinator.List(signer, id, price), nil
		})
	},
}

var unlistCmd = &cobra.Command{
	Use:   "unlist <id>",
	Short: "Withdraws an asset from sale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseId(args[0])
		if err != nil {
			return
		}

		return submit(cmd, func(ctx context.Context, controller *app.Controller, signer ledger.Signer) (coordinator.Action, error) {
			return coordinator.Unlist(signer, id), nil
		})
	},
}

var buyCmd = &cobra.Command{
	Use:   "buy <id>",
	Short: "Buys a listed asset for its current price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseId(args[0])
		if err != nil {
			return
		}

		return submit(cmd, func(ctx context.Context, controller *app.Controller, signer ledger.Signer) (action coordinator.Action, err error) {
			price, err := controller.Ledger.PriceOf(ctx, id)
			if err != nil {
				return
			}
			return coordinator.Buy(signer, id, price), nil
		})
	},
}
