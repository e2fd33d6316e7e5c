package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Asset materialized from the ledger and its description document
type Asset struct {
	Id          uint64         `json:"id"`
	Owner       common.Address `json:"owner"`
	ContentURI  string         `json:"contentURI"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ImageURI    string         `json:"imageURI"`
	ImageURL    string         `json:"imageURL"`
	Symbol      string         `json:"symbol"`
	CreatedBy   string         `json:"createdBy"`

	// Sale price in ether, zero means not for sale
	Price decimal.Decimal `json:"price"`
}

func (self *Asset) IsListed() bool {
	return self.Price.IsPositive()
}

func (self *Asset) IsOwnedBy(address common.Address) bool {
	return self.Owner == address
}
