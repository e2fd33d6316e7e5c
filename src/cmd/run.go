package cmd

import (
	"context"
	"encoding/json"

	"github.com/warp-contracts/market/src/app"
	"github.com/warp-contracts/market/src/utils/ledger"

	"github.com/spf13/cobra"
)

// Starts the controller, runs f and prints its result as JSON
func run(cmd *cobra.Command, f func(ctx context.Context, controller *app.Controller) (any, error)) (err error) {
	controller, err := app.NewController(conf)
	if err != nil {
		return
	}

	err = controller.Start()
	if err != nil {
		return
	}
	defer controller.StopWait()

	out, err := f(applicationCtx, controller)
	if err != nil {
		return
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func requireSigner(controller *app.Controller) (ledger.Signer, error) {
	if controller.Signer == nil {
		return nil, ledger.ErrSignerMissing
	}
	return controller.Signer, nil
}
