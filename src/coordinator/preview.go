package coordinator

import (
	"context"
	"fmt"

	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
)

type Lookuper interface {
	Lookup(ctx context.Context, id uint64) (*model.Asset, error)
}

// What the user confirms before a transfer is submitted
type TransferPreview struct {
	Asset     *model.Asset   `json:"asset"`
	Symbol    string         `json:"symbol"`
	Recipient common.Address `json:"recipient"`
}

// Validates the recipient and the caller's ownership without submitting anything
func (self *Coordinator) PreviewTransfer(ctx context.Context, caller common.Address, id uint64, recipient string) (out *TransferPreview, err error) {
	to, err := eth.ParseRecipient(recipient)
	if err != nil {
		return
	}

	owner, err := self.ledger.OwnerOf(ctx, id)
	if err != nil {
		return
	}
	if owner != caller {
		err = fmt.Errorf("%w: %s doesn't own asset %d", model.ErrUnauthorized, caller.Hex(), id)
		return
	}

	out = &TransferPreview{Recipient: to}

	if self.indexer != nil {
		out.Asset, err = self.indexer.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
	} else {
		out.Asset = &model.Asset{Id: id, Owner: owner}
		out.Asset.ContentURI, err = self.ledger.ContentURIOf(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	out.Symbol = out.Asset.Symbol
	if out.Symbol == "" {
		out.Symbol, err = self.ledger.Symbol(ctx)
		if err != nil {
			return nil, err
		}
	}
	return
}
