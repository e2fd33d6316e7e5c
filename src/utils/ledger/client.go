package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/contract"
	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/task"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// DigitalAsset contract reached through a JSON-RPC node
type Client struct {
	config   *config.Config
	log      *logrus.Entry
	client   *ethclient.Client
	contract *contract.DigitalAsset
	chainID  *big.Int
}

func NewClient(ctx context.Context, config *config.Config) (self *Client, err error) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("ledger-client")

	if !common.IsHexAddress(config.Ledger.ContractAddress) {
		err = ErrNoContract
		return
	}

	self.client, err = ethclient.DialContext(ctx, config.Ledger.RpcUrl)
	if err != nil {
		self.log.WithError(err).Error("Cannot get ETH client")
		return
	}

	self.chainID, err = self.client.ChainID(ctx)
	if err != nil {
		self.log.WithError(err).Error("Failed to get chain id")
		self.client.Close()
		return
	}

	self.contract = contract.NewDigitalAsset(common.HexToAddress(config.Ledger.ContractAddress), self.client)

	self.log.WithField("chain_id", self.chainID).
		WithField("contract", self.contract.Address.Hex()).
		Info("Connected to ledger")
	return
}

func (self *Client) Close() {
	self.client.Close()
}

func (self *Client) callOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, self.config.Ledger.CallTimeout)
	return &bind.CallOpts{Context: ctx}, cancel
}

// Reverts of reads about unknown tokens become model.ErrNotFound
func (self *Client) readError(id uint64, err error) error {
	reason := eth.RevertReason(contract.ABI(), err)
	if reason != "" && errors.Is(eth.ReasonToError(reason), model.ErrNotFound) {
		return fmt.Errorf("%w: asset %d", model.ErrNotFound, id)
	}
	return err
}

func (self *Client) TotalAssetCount(ctx context.Context) (count uint64, err error) {
	opts, cancel := self.callOpts(ctx)
	defer cancel()

	next, err := self.contract.NextTokenId(opts)
	if err != nil {
		return
	}
	return next.Uint64(), nil
}

func (self *Client) OwnerOf(ctx context.Context, id uint64) (owner common.Address, err error) {
	opts, cancel := self.callOpts(ctx)
	defer cancel()

	owner, err = self.contract.OwnerOf(opts, new(big.Int).SetUint64(id))
	if err != nil {
		err = self.readError(id, err)
	}
	return
}

func (self *Client) ContentURIOf(ctx context.Context, id uint64) (uri string, err error) {
	opts, cancel := self.callOpts(ctx)
	defer cancel()

	uri, err = self.contract.TokenURI(opts, new(big.Int).SetUint64(id))
	if err != nil {
		err = self.readError(id, err)
	}
	return
}

func (self *Client) PriceOf(ctx context.Context, id uint64) (price *big.Int, err error) {
	opts, cancel := self.callOpts(ctx)
	defer cancel()

	price, err = self.contract.GetPrice(opts, new(big.Int).SetUint64(id))
	if err != nil {
		err = self.readError(id, err)
	}
	return
}

func (self *Client) Symbol(ctx context.Context) (symbol string, err error) {
	opts, cancel := self.callOpts(ctx)
	defer cancel()
	return self.contract.Symbol(opts)
}

// Signs and sends the transaction. Failures are classified, unknown ones are model.ErrRejected.
func (self *Client) transact(ctx context.Context, signer Signer, receipt *Receipt, f func(opts *bind.TransactOpts) (*types.Transaction, error)) (*Receipt, error) {
	opts, err := signer.Transactor(ctx, self.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRejected, err)
	}

	tx, err := f(opts)
	if err != nil {
		self.log.WithError(err).WithField("kind", receipt.Kind).Debug("Failed to send transaction")
		return nil, eth.Classify(contract.ABI(), err)
	}

	receipt.Hash = tx.Hash()
	receipt.Tx = tx

	self.log.WithField("kind", receipt.Kind).
		WithField("asset_id", receipt.AssetId).
		WithField("hash", receipt.Hash).
		Debug("Transaction sent")
	return receipt, nil
}

func (self *Client) Mint(ctx context.Context, signer Signer, to common.Address, contentURI string) (*Receipt, error) {
	err := preflightMint(to, contentURI)
	if err != nil {
		return nil, err
	}
	return self.transact(ctx, signer, newReceipt(model.ActionKindMint, 0, signer), func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return self.contract.MintAsset(opts, to, contentURI)
	})
}

func (self *Client) Transfer(ctx context.Context, signer Signer, from, to common.Address, id uint64) (*Receipt, error) {
	err := preflightTransfer(ctx, self, signer, from, to, id)
	if err != nil {
		return nil, err
	}
	return self.transact(ctx, signer, newReceipt(model.ActionKindTransfer, id, signer), func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return self.contract.TransferFrom(opts, from, to, new(big.Int).SetUint64(id))
	})
}

func (self *Client) List(ctx context.Context, signer Signer, id uint64, price *big.Int) (*Receipt, error) {
	err := preflightList(ctx, self, signer, id, price)
	if err != nil {
		return nil, err
	}
	return self.transact(ctx, signer, newReceipt(model.ActionKindList, id, signer), func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return self.contract.ListTokenForSale(opts, new(big.Int).SetUint64(id), price)
	})
}

func (self *Client) Unlist(ctx context.Context, signer Signer, id uint64) (*Receipt, error) {
	err := preflightUnlist(ctx, self, signer, id)
	if err != nil {
		return nil, err
	}
	return self.transact(ctx, signer, newReceipt(model.ActionKindUnlist, id, signer), func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return self.contract.UnlistToken(opts, new(big.Int).SetUint64(id))
	})
}

func (self *Client) Buy(ctx context.Context, signer Signer, id uint64, payment *big.Int) (*Receipt, error) {
	err := preflightBuy(ctx, self, signer, id, payment)
	if err != nil {
		return nil, err
	}
	return self.transact(ctx, signer, newReceipt(model.ActionKindBuy, id, signer), func(opts *bind.TransactOpts) (*types.Transaction, error) {
		opts.Value = payment
		return self.contract.BuyToken(opts, new(big.Int).SetUint64(id))
	})
}

// Polls for the transaction receipt
func (self *Client) Confirm(ctx context.Context, receipt *Receipt) (confirmation *Confirmation, err error) {
	var out *types.Receipt
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.Ledger.ConfirmationMaxElapsed).
		WithMaxInterval(self.config.Ledger.ConfirmationMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if !errors.Is(err, ethereum.NotFound) {
				self.log.WithError(err).WithField("hash", receipt.Hash).Warn("Failed to get transaction receipt, retrying")
			}
			return err
		}).
		Run(func() (err error) {
			out, err = self.client.TransactionReceipt(ctx, receipt.Hash)
			return
		})
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, err
	}

	if out.Status == types.ReceiptStatusFailed {
		reason := self.replay(ctx, receipt, out.BlockNumber)
		self.log.WithField("hash", receipt.Hash).WithField("reason", reason).Info("Transaction reverted")
		return nil, fmt.Errorf("%w: %s", model.ErrReverted, reason)
	}

	confirmation = &Confirmation{
		Hash:        receipt.Hash,
		BlockNumber: out.BlockNumber.Uint64(),
		AssetId:     receipt.AssetId,
		GasUsed:     out.GasUsed,
	}

	if receipt.Kind == model.ActionKindMint {
		confirmation.AssetId, err = self.mintedId(ctx, out)
		if err != nil {
			return nil, err
		}
	}
	return
}

// Executes the reverted call again at its block to get the reason
func (self *Client) replay(ctx context.Context, receipt *Receipt, blockNumber *big.Int) string {
	if receipt.Tx == nil {
		return "execution failed"
	}

	msg := ethereum.CallMsg{
		From:  receipt.Submitter,
		To:    receipt.Tx.To(),
		Gas:   receipt.Tx.Gas(),
		Value: receipt.Tx.Value(),
		Data:  receipt.Tx.Data(),
	}
	_, err := self.client.CallContract(ctx, msg, blockNumber)
	reason := eth.RevertReason(contract.ABI(), err)
	if reason == "" {
		return "execution failed"
	}
	return reason
}

// Id of the minted asset is in the Transfer event. Falls back to nextTokenId - 1 at the inclusion block.
func (self *Client) mintedId(ctx context.Context, receipt *types.Receipt) (id uint64, err error) {
	event, err := eth.GetTransactionLog(receipt, contract.ABI(), "Transfer")
	if err == nil {
		tokenId, ok := event["tokenId"].(*big.Int)
		if ok {
			return tokenId.Uint64(), nil
		}
	}

	opts, cancel := self.callOpts(ctx)
	defer cancel()
	opts.BlockNumber = receipt.BlockNumber

	next, err := self.contract.NextTokenId(opts)
	if err != nil {
		return
	}
	if next.Sign() == 0 {
		err = ErrUnknownMintedId
		return
	}
	return next.Uint64() - 1, nil
}
