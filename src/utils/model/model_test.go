package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestModelTestSuite(t *testing.T) {
	suite.Run(t, new(ModelTestSuite))
}

type ModelTestSuite struct {
	suite.Suite
	alice  common.Address
	bob    common.Address
	assets []*Asset
}

func (s *ModelTestSuite) SetupSuite() {
	s.alice = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	s.bob = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	s.assets = []*Asset{
		{Id: 0, Owner: s.alice},
		{Id: 1, Owner: s.bob, Price: decimal.RequireFromString("0.5")},
		{Id: 2, Owner: s.alice, Price: decimal.RequireFromString("1")},
		{Id: 3, Owner: s.bob},
	}
}

func (s *ModelTestSuite) ids(assets []*Asset) (out []uint64) {
	for _, a := range assets {
		out = append(out, a.Id)
	}
	return
}

func (s *ModelTestSuite) TestOwnedByIsIdempotent() {
	filter := FilterOwnedBy(s.alice)
	once := filter.Apply(s.assets)
	twice := filter.Apply(once)
	require.Equal(s.T(), []uint64{0, 2}, s.ids(once))
	require.Equal(s.T(), s.ids(once), s.ids(twice))
}

func (s *ModelTestSuite) TestOwnerComparisonIgnoresCase() {
	owner := common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.Equal(s.T(), []uint64{0, 2}, s.ids(FilterOwnedBy(owner).Apply(s.assets)))
}

func (s *ModelTestSuite) TestListed() {
	require.Equal(s.T(), []uint64{1, 2}, s.ids(FilterListed().Apply(s.assets)))
	require.Equal(s.T(), []uint64{2}, s.ids(FilterListed().WithId(2).Apply(s.assets)))
	require.Empty(s.T(), FilterListed().WithId(3).Apply(s.assets))
}

func (s *ModelTestSuite) TestDocumentMissingFields() {
	var doc Document
	err := json.Unmarshal([]byte(`{"name":"Sunset","image":null,"extra":1}`), &doc)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "Sunset", doc.Name)
	require.Equal(s.T(), "", doc.Image)
	require.Equal(s.T(), "", doc.Description)
	require.Equal(s.T(), "", doc.CreatedBy)
	require.Equal(s.T(), "", doc.Symbol)
}

func (s *ModelTestSuite) TestDocumentNotAnObject() {
	var doc Document
	require.NotNil(s.T(), json.Unmarshal([]byte(`[1,2]`), &doc))
	require.NotNil(s.T(), json.Unmarshal([]byte(`<html>`), &doc))
}

func (s *ModelTestSuite) TestTaxonomy() {
	require.True(s.T(), errors.Is(ErrInvalidRecipient, ErrInvalidInput))
	require.True(s.T(), errors.Is(ErrInvalidPrice, ErrInvalidInput))
	require.True(s.T(), errors.Is(ErrInsufficientPayment, ErrInvalidInput))
	require.False(s.T(), errors.Is(ErrRejected, ErrReverted))
}

func (s *ModelTestSuite) TestPendingKey() {
	list := &PendingTransaction{Kind: ActionKindList, AssetId: 4, Submitter: s.alice}
	require.Equal(s.T(), "list:4", list.Key())

	mint := &PendingTransaction{Kind: ActionKindMint, Submitter: s.alice}
	require.Equal(s.T(), "mint:"+s.alice.Hex(), mint.Key())
}
