package model

import (
	"github.com/ethereum/go-ethereum/common"
)

type FilterKind string

const (
	FilterKindAll     FilterKind = "all"
	FilterKindOwnedBy FilterKind = "owned"
	FilterKindListed  FilterKind = "listed"
)

// Selects assets of an index pass
type Filter struct {
	Kind  FilterKind
	Owner common.Address

	// Narrows the pass to a single asset
	Id *uint64
}

func FilterAll() Filter {
	return Filter{Kind: FilterKindAll}
}

func FilterOwnedBy(owner common.Address) Filter {
	return Filter{Kind: FilterKindOwnedBy, Owner: owner}
}

func FilterListed() Filter {
	return Filter{Kind: FilterKindListed}
}

func (self Filter) WithId(id uint64) Filter {
	self.Id = &id
	return self
}

// Id is worth processing at all
func (self Filter) MatchId(id uint64) bool {
	return self.Id == nil || *self.Id == id
}

func (self Filter) MatchOwner(owner common.Address) bool {
	return self.Kind != FilterKindOwnedBy || owner == self.Owner
}

func (self Filter) Match(asset *Asset) bool {
	if !self.MatchId(asset.Id) || !self.MatchOwner(asset.Owner) {
		return false
	}
	return self.Kind != FilterKindListed || asset.IsListed()
}

// Subset of assets matching the filter, order preserved
func (self Filter) Apply(assets []*Asset) (out []*Asset) {
	out = make([]*Asset, 0, len(assets))
	for _, asset := range assets {
		if self.Match(asset) {
			out = append(out, asset)
		}
	}
	return
}
