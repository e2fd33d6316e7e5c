package market

import (
	"fmt"

	"github.com/warp-contracts/market/src/utils/model"

	"github.com/shopspring/decimal"
)

// Sale state of an asset
type State struct {
	Listed bool            `json:"listed"`
	Price  decimal.Decimal `json:"price"`
}

func Unlisted() State {
	return State{}
}

func Listed(price decimal.Decimal) State {
	return State{Listed: true, Price: price}
}

func (self State) String() string {
	if !self.Listed {
		return "unlisted"
	}
	return "listed(" + self.Price.String() + ")"
}

func StateOf(asset *model.Asset) State {
	if asset.IsListed() {
		return Listed(asset.Price)
	}
	return Unlisted()
}

// Sale state after a successful action. Mint and transfer don't touch the price.
func Next(state State, kind model.ActionKind, price decimal.Decimal) (next State, err error) {
	switch kind {
	case model.ActionKindList:
		if state.Listed {
			err = model.ErrAlreadyListed
			return
		}
		if !price.IsPositive() {
			err = model.ErrInvalidPrice
			return
		}
		next = Listed(price)
	case model.ActionKindUnlist, model.ActionKindBuy:
		if !state.Listed {
			err = model.ErrNotListed
			return
		}
		next = Unlisted()
	case model.ActionKindMint:
		next = Unlisted()
	case model.ActionKindTransfer:
		next = state
	default:
		err = fmt.Errorf("%w: unknown action %q", model.ErrInvalidInput, kind)
	}
	return
}
