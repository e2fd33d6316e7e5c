package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
)

// Preconditions of write calls checked with reads, before anything gets signed

func checkOwner(ctx context.Context, reader Reader, id uint64, submitter common.Address) (err error) {
	owner, err := reader.OwnerOf(ctx, id)
	if err != nil {
		return
	}
	if owner != submitter {
		return fmt.Errorf("%w: %s doesn't own asset %d", model.ErrUnauthorized, submitter.Hex(), id)
	}
	return
}

func preflightMint(to common.Address, contentURI string) error {
	if contentURI == "" {
		return fmt.Errorf("%w: empty content uri", model.ErrInvalidInput)
	}
	return eth.CheckRecipient(to)
}

func preflightTransfer(ctx context.Context, reader Reader, signer Signer, from, to common.Address, id uint64) (err error) {
	err = eth.CheckRecipient(to)
	if err != nil {
		return
	}
	if signer.Address() != from {
		return fmt.Errorf("%w: only %s can transfer from its account", model.ErrUnauthorized, from.Hex())
	}
	return checkOwner(ctx, reader, id, from)
}

func preflightList(ctx context.Context, reader Reader, signer Signer, id uint64, price *big.Int) (err error) {
	if price == nil || price.Sign() <= 0 {
		return model.ErrInvalidPrice
	}
	err = checkOwner(ctx, reader, id, signer.Address())
	if err != nil {
		return
	}
	current, err := reader.PriceOf(ctx, id)
	if err != nil {
		return
	}
	if current.Sign() > 0 {
		return fmt.Errorf("%w: asset %d", model.ErrAlreadyListed, id)
	}
	return
}

func preflightUnlist(ctx context.Context, reader Reader, signer Signer, id uint64) (err error) {
	err = checkOwner(ctx, reader, id, signer.Address())
	if err != nil {
		return
	}
	current, err := reader.PriceOf(ctx, id)
	if err != nil {
		return
	}
	if current.Sign() == 0 {
		return fmt.Errorf("%w: asset %d", model.ErrNotListed, id)
	}
	return
}

func preflightBuy(ctx context.Context, reader Reader, signer Signer, id uint64, payment *big.Int) (err error) {
	price, err := reader.PriceOf(ctx, id)
	if err != nil {
		return
	}
	if price.Sign() == 0 {
		return fmt.Errorf("%w: asset %d", model.ErrNotListed, id)
	}
	if payment == nil || payment.Cmp(price) != 0 {
		return fmt.Errorf("%w: asset %d costs %s wei", model.ErrInsufficientPayment, id, price)
	}
	owner, err := reader.OwnerOf(ctx, id)
	if err != nil {
		return
	}
	if owner == signer.Address() {
		return fmt.Errorf("%w: can't buy own asset %d", model.ErrUnauthorized, id)
	}
	return
}
