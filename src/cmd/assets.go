package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/warp-contracts/market/src/app"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/spf13/cobra"
)

var (
	assetsFilter string
	assetsOwner  string
	assetsId     int64
)

func init() {
	assetsCmd.Flags().StringVar(&assetsFilter, "filter", "all", "all, listed or mine")
	assetsCmd.Flags().StringVar(&assetsOwner, "owner", "", "only assets of this address")
	assetsCmd.Flags().Int64Var(&assetsId, "id", -1, "only the asset with this id")

	RootCmd.AddCommand(assetsCmd)
	RootCmd.AddCommand(assetCmd)
}

type assetsOutput struct {
	Total        uint64         `json:"total"`
	Unresolvable int            `json:"unresolvable"`
	Assets       []*model.Asset `json:"assets"`
}

func filter(controller *app.Controller) (out model.Filter, err error) {
	switch assetsFilter {
	case "all":
		out = model.FilterAll()
	case "listed":
		out = model.FilterListed()
	case "mine":
		signer, err := requireSigner(controller)
		if err != nil {
			return out, err
		}
		out = model.FilterOwnedBy(signer.Address())
	default:
		err = fmt.Errorf("%w: unknown filter %q", model.ErrInvalidInput, assetsFilter)
		return
	}

	if assetsOwner != "" {
		owner, err := eth.ParseAddress(assetsOwner)
		if err != nil {
			return out, err
		}
		out = model.FilterOwnedBy(owner)
	}

	if assetsId >= 0 {
		out = out.WithId(uint64(assetsId))
	}
	return
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Lists assets of the collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return run(cmd, func(ctx context.Context, controller *app.Controller) (any, error) {
			filter, err := filter(controller)
			if err != nil {
				return nil, err
			}

			pass, err := controller.Indexer.Pass(ctx, filter)
			if err != nil {
				return nil, err
			}

			return &assetsOutput{
				Total:        pass.Total,
				Unresolvable: pass.Count(index.StatusUnresolvable),
				Assets:       pass.Assets(),
			}, nil
		})
	},
}

var assetCmd = &cobra.Command{
	Use:   "asset <id>",
	Short: "Shows a single asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseId(args[0])
		if err != nil {
			return
		}

		return run(cmd, func(ctx context.Context, controller *app.Controller) (any, error) {
			return controller.Indexer.Lookup(ctx, id)
		})
	},
}

func parseId(s string) (id uint64, err error) {
	id, err = strconv.ParseUint(s, 10, 64)
	if err != nil {
		err = fmt.Errorf("%w: %q is not an asset id", model.ErrInvalidInput, s)
	}
	return
}
