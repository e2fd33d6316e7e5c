package market

import (
	"fmt"

	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/session"

	"github.com/shopspring/decimal"
)

const (
	LabelYourListing = "Your listing"
	LabelListed      = "Listed"
	LabelNotListed   = "Not listed"
)

func CanList(asset *model.Asset, snapshot session.Snapshot) bool {
	return Check(model.ActionKindList, asset, snapshot, decimal.Zero) == nil
}

func CanUnlist(asset *model.Asset, snapshot session.Snapshot) bool {
	return Check(model.ActionKindUnlist, asset, snapshot, decimal.Zero) == nil
}

func CanBuy(asset *model.Asset, snapshot session.Snapshot) bool {
	return Check(model.ActionKindBuy, asset, snapshot, decimal.Zero) == nil
}

func CanTransfer(asset *model.Asset, snapshot session.Snapshot) bool {
	return Check(model.ActionKindTransfer, asset, snapshot, decimal.Zero) == nil
}

// Returns the error a precondition of the action violates, nil if the action is allowed.
// Zero price skips the price check of a listing, so it can be used before the user picks one.
func Check(kind model.ActionKind, asset *model.Asset, snapshot session.Snapshot, price decimal.Decimal) error {
	if !snapshot.Present {
		return fmt.Errorf("%w: no active session", model.ErrUnauthorized)
	}

	switch kind {
	case model.ActionKindList:
		if !snapshot.Is(asset.Owner) {
			return fmt.Errorf("%w: not the owner of asset %d", model.ErrUnauthorized, asset.Id)
		}
		if asset.IsListed() {
			return model.ErrAlreadyListed
		}
		if price.IsNegative() {
			return model.ErrInvalidPrice
		}
	case model.ActionKindUnlist:
		if !snapshot.Is(asset.Owner) {
			return fmt.Errorf("%w: not the owner of asset %d", model.ErrUnauthorized, asset.Id)
		}
		if !asset.IsListed() {
			return model.ErrNotListed
		}
	case model.ActionKindBuy:
		if !asset.IsListed() {
			return model.ErrNotListed
		}
		if snapshot.Is(asset.Owner) {
			return fmt.Errorf("%w: asset %d is already yours", model.ErrUnauthorized, asset.Id)
		}
	case model.ActionKindTransfer:
		if !snapshot.Is(asset.Owner) {
			return fmt.Errorf("%w: not the owner of asset %d", model.ErrUnauthorized, asset.Id)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", model.ErrInvalidInput, kind)
	}
	return nil
}

// Actions the session may take on the asset
func Actions(asset *model.Asset, snapshot session.Snapshot) (out []model.ActionKind) {
	out = make([]model.ActionKind, 0, 3)
	for _, kind := range []model.ActionKind{
		model.ActionKindTransfer,
		model.ActionKindList,
		model.ActionKindUnlist,
		model.ActionKindBuy,
	} {
		if Check(kind, asset, snapshot, decimal.Zero) == nil {
			out = append(out, kind)
		}
	}
	return
}

func Label(asset *model.Asset, snapshot session.Snapshot) string {
	switch {
	case asset.IsListed() && snapshot.Is(asset.Owner):
		return LabelYourListing
	case asset.IsListed():
		return LabelListed
	default:
		return LabelNotListed
	}
}
