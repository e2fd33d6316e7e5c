package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

const MemoryChainId = 1337

type token struct {
	owner common.Address
	uri   string
	price *big.Int
}

type operation struct {
	receipt *Receipt

	// Executes the call against the state at inclusion time
	apply func() (assetId uint64, err error)
}

// In-process DigitalAsset contract. Calls are validated when dispatched and executed again on Confirm,
// so calls that became invalid in the meantime revert like on a real chain.
type Memory struct {
	log     *logrus.Entry
	chainID *big.Int
	symbol  string

	mtx        sync.Mutex
	tokens     []*token
	pending    map[common.Hash]*operation
	nonce      uint64
	block      uint64
	revertNext []string
	gate       chan struct{}
}

func NewMemory(symbol string) (self *Memory) {
	self = new(Memory)
	self.log = logger.NewSublogger("memory-ledger")
	self.chainID = big.NewInt(MemoryChainId)
	self.symbol = symbol
	self.pending = make(map[common.Hash]*operation)
	return
}

// Creates an asset without a transaction
func (self *Memory) Seed(owner common.Address, contentURI string) (id uint64) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	id = uint64(len(self.tokens))
	self.tokens = append(self.tokens, &token{owner: owner, uri: contentURI, price: new(big.Int)})
	return
}

// Next confirmed transaction reverts with the reason
func (self *Memory) RevertNext(reason string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.revertNext = append(self.revertNext, reason)
}

// Confirm blocks until the returned function is called
func (self *Memory) HoldConfirmations() (release func()) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	gate := make(chan struct{})
	self.gate = gate

	var once sync.Once
	return func() {
		once.Do(func() {
			self.mtx.Lock()
			if self.gate == gate {
				self.gate = nil
			}
			self.mtx.Unlock()
			close(gate)
		})
	}
}

func (self *Memory) get(id uint64) (*token, error) {
	if id >= uint64(len(self.tokens)) {
		return nil, fmt.Errorf("%w: asset %d", model.ErrNotFound, id)
	}
	return self.tokens[id], nil
}

func (self *Memory) TotalAssetCount(ctx context.Context) (uint64, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return uint64(len(self.tokens)), ctx.Err()
}

func (self *Memory) OwnerOf(ctx context.Context, id uint64) (owner common.Address, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	t, err := self.get(id)
	if err != nil {
		return
	}
	return t.owner, ctx.Err()
}

func (self *Memory) ContentURIOf(ctx context.Context, id uint64) (uri string, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	t, err := self.get(id)
	if err != nil {
		return
	}
	return t.uri, ctx.Err()
}

func (self *Memory) PriceOf(ctx context.Context, id uint64) (price *big.Int, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	t, err := self.get(id)
	if err != nil {
		return
	}
	return new(big.Int).Set(t.price), ctx.Err()
}

func (self *Memory) Symbol(ctx context.Context) (string, error) {
	return self.symbol, ctx.Err()
}

// Simulates signing and puts the call into the mempool
func (self *Memory) submit(ctx context.Context, signer Signer, receipt *Receipt, apply func() (uint64, error)) (*Receipt, error) {
	_, err := signer.Transactor(ctx, self.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRejected, err)
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.nonce++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], self.nonce)
	receipt.Hash = crypto.Keccak256Hash(receipt.Submitter.Bytes(), buf[:])

	self.pending[receipt.Hash] = &operation{receipt: receipt, apply: apply}

	self.log.WithField("kind", receipt.Kind).WithField("hash", receipt.Hash).Trace("Submitted")
	return receipt, nil
}

func (self *Memory) Mint(ctx context.Context, signer Signer, to common.Address, contentURI string) (*Receipt, error) {
	err := preflightMint(to, contentURI)
	if err != nil {
		return nil, err
	}

	receipt := newReceipt(model.ActionKindMint, 0, signer)
	return self.submit(ctx, signer, receipt, func() (uint64, error) {
		id := uint64(len(self.tokens))
		self.tokens = append(self.tokens, &token{owner: to, uri: contentURI, price: new(big.Int)})
		return id, nil
	})
}

func (self *Memory) Transfer(ctx context.Context, signer Signer, from, to common.Address, id uint64) (*Receipt, error) {
	err := preflightTransfer(ctx, self, signer, from, to, id)
	if err != nil {
		return nil, err
	}

	receipt := newReceipt(model.ActionKindTransfer, id, signer)
	return self.submit(ctx, signer, receipt, func() (uint64, error) {
		t, err := self.get(id)
		if err != nil {
			return 0, err
		}
		if t.owner != from {
			return 0, model.ErrUnauthorized
		}
		t.owner = to
		return id, nil
	})
}

func (self *Memory) List(ctx context.Context, signer Signer, id uint64, price *big.Int) (*Receipt, error) {
	err := preflightList(ctx, self, signer, id, price)
	if err != nil {
		return nil, err
	}

	submitter := signer.Address()
	price = new(big.Int).Set(price)
	receipt := newReceipt(model.ActionKindList, id, signer)
	return self.submit(ctx, signer, receipt, func() (uint64, error) {
		t, err := self.get(id)
		if err != nil {
			return 0, err
		}
		if t.owner != submitter {
			return 0, model.ErrUnauthorized
		}
		if t.price.Sign() > 0 {
			return 0, model.ErrAlreadyListed
		}
		t.price = price
		return id, nil
	})
}

func (self *Memory) Unlist(ctx context.Context, signer Signer, id uint64) (*Receipt, error) {
	err := preflightUnlist(ctx, self, signer, id)
	if err != nil {
		return nil, err
	}

	submitter := signer.Address()
	receipt := newReceipt(model.ActionKindUnlist, id, signer)
	return self.submit(ctx, signer, receipt, func() (uint64, error) {
		t, err := self.get(id)
		if err != nil {
			return 0, err
		}
		if t.owner != submitter {
			return 0, model.ErrUnauthorized
		}
		if t.price.Sign() == 0 {
			return 0, model.ErrNotListed
		}
		t.price = new(big.Int)
		return id, nil
	})
}

func (self *Memory) Buy(ctx context.Context, signer Signer, id uint64, payment *big.Int) (*Receipt, error) {
	err := preflightBuy(ctx, self, signer, id, payment)
	if err != nil {
		return nil, err
	}

	buyer := signer.Address()
	payment = new(big.Int).Set(payment)
	receipt := newReceipt(model.ActionKindBuy, id, signer)
	return self.submit(ctx, signer, receipt, func() (uint64, error) {
		t, err := self.get(id)
		if err != nil {
			return 0, err
		}
		if t.price.Sign() == 0 {
			return 0, model.ErrNotListed
		}
		if t.price.Cmp(payment) != 0 {
			return 0, model.ErrInsufficientPayment
		}
		if t.owner == buyer {
			return 0, model.ErrUnauthorized
		}
		t.owner = buyer
		t.price = new(big.Int)
		return id, nil
	})
}

func (self *Memory) Confirm(ctx context.Context, receipt *Receipt) (confirmation *Confirmation, err error) {
	self.mtx.Lock()
	gate := self.gate
	self.mtx.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	op, ok := self.pending[receipt.Hash]
	if !ok {
		return nil, ErrUnknownReceipt
	}
	delete(self.pending, receipt.Hash)
	self.block++

	if len(self.revertNext) > 0 {
		reason := self.revertNext[0]
		self.revertNext = self.revertNext[1:]
		return nil, fmt.Errorf("%w: %s", model.ErrReverted, reason)
	}

	assetId, err := op.apply()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrReverted, err.Error())
	}

	confirmation = &Confirmation{
		Hash:        receipt.Hash,
		BlockNumber: self.block,
		AssetId:     assetId,
		GasUsed:     21000,
	}
	return
}
