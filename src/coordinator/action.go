package coordinator

import (
	"math/big"

	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
)

// State changing call requested by the user
type Action struct {
	Kind    model.ActionKind
	AssetId uint64
	Signer  ledger.Signer

	// Transfer source
	From common.Address

	// Transfer recipient, owner of a minted asset
	To common.Address

	// Mint
	ContentURI string

	// List, in wei
	Price *big.Int

	// Buy, in wei
	Payment *big.Int
}

func Mint(signer ledger.Signer, to common.Address, contentURI string) Action {
	return Action{Kind: model.ActionKindMint, Signer: signer, To: to, ContentURI: contentURI}
}

func Transfer(signer ledger.Signer, id uint64, to common.Address) Action {
	return Action{Kind: model.ActionKindTransfer, AssetId: id, Signer: signer, From: signer.Address(), To: to}
}

func List(signer ledger.Signer, id uint64, price *big.Int) Action {
	return Action{Kind: model.ActionKindList, AssetId: id, Signer: signer, Price: price}
}

func Unlist(signer ledger.Signer, id uint64) Action {
	return Action{Kind: model.ActionKindUnlist, AssetId: id, Signer: signer}
}

func Buy(signer ledger.Signer, id uint64, payment *big.Int) Action {
	return Action{Kind: model.ActionKindBuy, AssetId: id, Signer: signer, Payment: payment}
}
