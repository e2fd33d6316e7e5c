package ledger

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity able to sign transactions
type Signer interface {
	Address() common.Address

	// Fails if the identity declines to sign
	Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// Signs with a private key held in memory
type KeySigner struct {
	PrivateKey *ecdsa.PrivateKey
	address    common.Address
}

func NewKeySigner(privateKeyHex string) (self *KeySigner, err error) {
	self = new(KeySigner)

	if !strings.HasPrefix(privateKeyHex, "0x") {
		privateKeyHex = "0x" + privateKeyHex
	}

	// Parse the private key
	buf, err := hexutil.Decode(privateKeyHex)
	if err != nil {
		return
	}

	self.PrivateKey, err = crypto.ToECDSA(buf)
	if err != nil {
		return
	}

	self.address = crypto.PubkeyToAddress(self.PrivateKey.PublicKey)
	return
}

func (self *KeySigner) Address() common.Address {
	return self.address
}

func (self *KeySigner) Transactor(ctx context.Context, chainID *big.Int) (opts *bind.TransactOpts, err error) {
	opts, err = bind.NewKeyedTransactorWithChainID(self.PrivateKey, chainID)
	if err != nil {
		return
	}
	opts.Context = ctx
	return
}
