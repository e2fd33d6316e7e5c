package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Typed calls of the DigitalAsset contract
type DigitalAsset struct {
	Address  common.Address
	contract *bind.BoundContract
}

func NewDigitalAsset(address common.Address, backend bind.ContractBackend) (self *DigitalAsset) {
	self = new(DigitalAsset)
	self.Address = address
	self.contract = bind.NewBoundContract(address, parsed, backend, backend, backend)
	return
}

func (self *DigitalAsset) call(opts *bind.CallOpts, method string, params ...interface{}) (out interface{}, err error) {
	var result []interface{}
	err = self.contract.Call(opts, &result, method, params...)
	if err != nil {
		return
	}
	if len(result) == 0 {
		err = ErrEmptyResult
		return
	}
	out = result[0]
	return
}

func (self *DigitalAsset) NextTokenId(opts *bind.CallOpts) (*big.Int, error) {
	out, err := self.call(opts, "nextTokenId")
	if err != nil {
		return nil, err
	}
	return *abiConvert[*big.Int](out), nil
}

func (self *DigitalAsset) OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error) {
	out, err := self.call(opts, "ownerOf", tokenId)
	if err != nil {
		return common.Address{}, err
	}
	return *abiConvert[common.Address](out), nil
}

func (self *DigitalAsset) TokenURI(opts *bind.CallOpts, tokenId *big.Int) (string, error) {
	out, err := self.call(opts, "tokenURI", tokenId)
	if err != nil {
		return "", err
	}
	return *abiConvert[string](out), nil
}

func (self *DigitalAsset) GetPrice(opts *bind.CallOpts, tokenId *big.Int) (*big.Int, error) {
	out, err := self.call(opts, "getPrice", tokenId)
	if err != nil {
		return nil, err
	}
	return *abiConvert[*big.Int](out), nil
}

func (self *DigitalAsset) Symbol(opts *bind.CallOpts) (string, error) {
	out, err := self.call(opts, "symbol")
	if err != nil {
		return "", err
	}
	return *abiConvert[string](out), nil
}

func (self *DigitalAsset) MintAsset(opts *bind.TransactOpts, to common.Address, tokenURI string) (*types.Transaction, error) {
	return self.contract.Transact(opts, "mintAsset", to, tokenURI)
}

func (self *DigitalAsset) TransferFrom(opts *bind.TransactOpts, from common.Address, to common.Address, tokenId *big.Int) (*types.Transaction, error) {
	return self.contract.Transact(opts, "transferFrom", from, to, tokenId)
}

func (self *DigitalAsset) ListTokenForSale(opts *bind.TransactOpts, tokenId *big.Int, price *big.Int) (*types.Transaction, error) {
	return self.contract.Transact(opts, "listTokenForSale", tokenId, price)
}

func (self *DigitalAsset) UnlistToken(opts *bind.TransactOpts, tokenId *big.Int) (*types.Transaction, error) {
	return self.contract.Transact(opts, "unlistToken", tokenId)
}

// Payment is passed in opts.Value
func (self *DigitalAsset) BuyToken(opts *bind.TransactOpts, tokenId *big.Int) (*types.Transaction, error) {
	return self.contract.Transact(opts, "buyToken", tokenId)
}

func abiConvert[T any](in interface{}) *T {
	return abi.ConvertType(in, new(T)).(*T)
}
