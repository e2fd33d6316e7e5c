package cmd

import (
	"github.com/warp-contracts/market/src/app"
	"github.com/warp-contracts/market/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the marketplace REST API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := app.NewController(conf)
		if err != nil {
			return
		}

		err = controller.WithServer().Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished serve command")
		return
	},
}
