package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Read calls, never mutate state and need no identity
type Reader interface {
	// Next unassigned asset id
	TotalAssetCount(ctx context.Context) (uint64, error)
	OwnerOf(ctx context.Context, id uint64) (common.Address, error)
	ContentURIOf(ctx context.Context, id uint64) (string, error)

	// Price in wei, 0 means not listed
	PriceOf(ctx context.Context, id uint64) (*big.Int, error)
	Symbol(ctx context.Context) (string, error)
}

// Write calls. Each one returns as soon as the transaction is dispatched,
// inclusion is awaited with Confirm.
type Writer interface {
	Mint(ctx context.Context, signer Signer, to common.Address, contentURI string) (*Receipt, error)
	Transfer(ctx context.Context, signer Signer, from, to common.Address, id uint64) (*Receipt, error)
	List(ctx context.Context, signer Signer, id uint64, price *big.Int) (*Receipt, error)
	Unlist(ctx context.Context, signer Signer, id uint64) (*Receipt, error)
	Buy(ctx context.Context, signer Signer, id uint64, payment *big.Int) (*Receipt, error)

	// Waits for inclusion. Fails with model.ErrReverted if the ledger executed and rejected the call.
	Confirm(ctx context.Context, receipt *Receipt) (*Confirmation, error)
}

type Ledger interface {
	Reader
	Writer
}

// Dispatched, not yet included transaction
type Receipt struct {
	Hash        common.Hash
	Kind        model.ActionKind
	AssetId     uint64
	Submitter   common.Address
	SubmittedAt time.Time

	Tx *types.Transaction
}

type Confirmation struct {
	Hash        common.Hash
	BlockNumber uint64

	// For mint it's the id of the new asset
	AssetId uint64
	GasUsed uint64
}

func newReceipt(kind model.ActionKind, id uint64, signer Signer) *Receipt {
	return &Receipt{
		Kind:        kind,
		AssetId:     id,
		Submitter:   signer.Address(),
		SubmittedAt: time.Now(),
	}
}
