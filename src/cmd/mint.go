package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/warp-contracts/market/src/app"
	"github.com/warp-contracts/market/src/mint"

	"github.com/spf13/cobra"
)

var (
	mintFile        string
	mintName        string
	mintDescription string
	mintSymbol      string
	mintCreatedBy   string
)

func init() {
	mintCmd.Flags().StringVar(&mintFile, "file", "", "image to upload")
	mintCmd.Flags().StringVar(&mintName, "name", "", "name of the asset")
	mintCmd.Flags().StringVar(&mintDescription, "description", "", "description of the asset")
	mintCmd.Flags().StringVar(&mintSymbol, "symbol", "", "symbol, defaults to the collection's")
	mintCmd.Flags().StringVar(&mintCreatedBy, "created-by", "", "author, defaults to the signer")
	_ = mintCmd.MarkFlagRequired("file")
	_ = mintCmd.MarkFlagRequired("name")

	RootCmd.AddCommand(mintCmd)
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Uploads an image with its description and mints a new asset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		/* #nosec */
		data, err := os.ReadFile(mintFile)
		if err != nil {
			return
		}

		return run(cmd, func(ctx context.Context, controller *app.Controller) (any, error) {
			signer, err := requireSigner(controller)
			if err != nil {
				return nil, err
			}

			return controller.Minter.Mint(ctx, signer, &mint.Request{
				Data:        data,
				FileName:    filepath.Base(mintFile),
				Name:        mintName,
				Description: mintDescription,
				Symbol:      mintSymbol,
				CreatedBy:   mintCreatedBy,
			})
		})
	},
}
