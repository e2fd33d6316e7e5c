package coordinator

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"
	monitor_market "github.com/warp-contracts/market/src/utils/monitoring/market"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type decliningSigner struct {
	address common.Address
}

func (self *decliningSigner) Address() common.Address {
	return self.address
}

func (self *decliningSigner) Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	return nil, errors.New("user declined")
}

func newSigner(t require.TestingT) *ledger.KeySigner {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	signer, err := ledger.NewKeySigner(common.Bytes2Hex(crypto.FromECDSA(key)))
	require.Nil(t, err)
	return signer
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

type CoordinatorTestSuite struct {
	suite.Suite
	ctx         context.Context
	cancel      context.CancelFunc
	config      *config.Config
	alice       *ledger.KeySigner
	bob         *ledger.KeySigner
	ledger      *ledger.Memory
	monitor     *monitor_market.Monitor
	coordinator *Coordinator
	assetId     uint64
}

func (s *CoordinatorTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
	s.config.StopTimeout = 5 * time.Second
	s.alice = newSigner(s.T())
	s.bob = newSigner(s.T())
}

func (s *CoordinatorTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.ledger = ledger.NewMemory("DA")
	s.assetId = s.ledger.Seed(s.alice.Address(), "ipfs://doc")
	s.monitor = monitor_market.NewMonitor(s.config)
	s.coordinator = s.newCoordinator(s.config)
}

func (s *CoordinatorTestSuite) newCoordinator(config *config.Config) *Coordinator {
	coordinator := NewCoordinator(config).
		WithLedger(s.ledger).
		WithMonitor(s.monitor)
	require.Nil(s.T(), coordinator.Start())
	return coordinator
}

func (s *CoordinatorTestSuite) TearDownTest() {
	s.coordinator.StopWait()
}

func (s *CoordinatorTestSuite) TestMintConfirmed() {
	tx, err := s.coordinator.Submit(s.ctx, Mint(s.bob, s.bob.Address(), "ipfs://new"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.TransactionStatusConfirmed, tx.Status)
	require.Equal(s.T(), uint64(1), tx.AssetId)
	require.NotEqual(s.T(), common.Hash{}, tx.Hash)
	require.NotEmpty(s.T(), tx.Id)
	require.False(s.T(), tx.FinishedAt.IsZero())

	owner, err := s.ledger.OwnerOf(s.ctx, 1)
	require.Nil(s.T(), err)
	require.Equal(s.T(), s.bob.Address(), owner)

	published := <-s.coordinator.Output
	require.Equal(s.T(), tx.Id, published.Id)
	require.Empty(s.T(), s.coordinator.Pending())
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Coordinator.State.Confirmed.Load())
	require.Equal(s.T(), int64(0), s.monitor.GetReport().Coordinator.State.Pending.Load())
}

func (s *CoordinatorTestSuite) TestConcurrentListOneAccepted() {
	release := s.ledger.HoldConfirmations()
	defer release()

	const n = 5
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(100)))
			results <- err
		}()
	}

	// Every request but the accepted one fails right away
	for i := 0; i < n-1; i++ {
		err := <-results
		require.ErrorIs(s.T(), err, model.ErrAlreadyPending)
	}
	require.Len(s.T(), s.coordinator.Pending(), 1)
	require.Equal(s.T(), model.ActionKindList, s.coordinator.Pending()[0].Kind)

	release()
	require.Nil(s.T(), <-results)
	require.Empty(s.T(), s.coordinator.Pending())
	require.Equal(s.T(), uint64(n-1), s.monitor.GetReport().Coordinator.Errors.AlreadyPending.Load())

	price, err := s.ledger.PriceOf(s.ctx, s.assetId)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(100), price.Int64())
}

func (s *CoordinatorTestSuite) TestLongOutstandingStaysPending() {
	release := s.ledger.HoldConfirmations()
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(100)))
		done <- err
	}()
	require.Eventually(s.T(), func() bool { return len(s.coordinator.Pending()) == 1 }, time.Second, 5*time.Millisecond)
	first := s.coordinator.Pending()[0]

	time.Sleep(100 * time.Millisecond)

	_, err := s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(200)))
	require.ErrorIs(s.T(), err, model.ErrAlreadyPending)
	require.Len(s.T(), s.coordinator.Pending(), 1)
	require.Equal(s.T(), first.Id, s.coordinator.Pending()[0].Id)

	release()
	require.Nil(s.T(), <-done)
	require.Empty(s.T(), s.coordinator.Pending())

	price, err := s.ledger.PriceOf(s.ctx, s.assetId)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(100), price.Int64())
}

func (s *CoordinatorTestSuite) TestReleaseKeepsOtherTransaction() {
	tx := &model.PendingTransaction{Id: "owner", Kind: model.ActionKindList, AssetId: s.assetId}
	require.Nil(s.T(), s.coordinator.registry.Add(tx.Key(), tx, cache.NoExpiration))

	s.coordinator.release(tx.Key(), "someone-else")
	require.Len(s.T(), s.coordinator.Pending(), 1)

	s.coordinator.release(tx.Key(), "owner")
	require.Empty(s.T(), s.coordinator.Pending())
}

func (s *CoordinatorTestSuite) TestDifferentKindsDontCollide() {
	release := s.ledger.HoldConfirmations()
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := s.coordinator.Submit(s.ctx, Mint(s.alice, s.alice.Address(), "ipfs://a"))
		done <- err
	}()
	require.Eventually(s.T(), func() bool { return len(s.coordinator.Pending()) == 1 }, time.Second, 5*time.Millisecond)

	// Mint is keyed by the submitter
	_, err := s.coordinator.Submit(s.ctx, Mint(s.alice, s.alice.Address(), "ipfs://b"))
	require.ErrorIs(s.T(), err, model.ErrAlreadyPending)

	ctx, cancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer cancel()
	_, err = s.coordinator.Submit(ctx, Mint(s.bob, s.bob.Address(), "ipfs://c"))
	require.ErrorIs(s.T(), err, context.DeadlineExceeded)
	require.Len(s.T(), s.coordinator.Pending(), 2)

	release()
	require.Nil(s.T(), <-done)
	require.Eventually(s.T(), func() bool { return len(s.coordinator.Pending()) == 0 }, time.Second, 5*time.Millisecond)
}

func (s *CoordinatorTestSuite) TestRejected() {
	signer := &decliningSigner{address: s.alice.Address()}

	_, err := s.coordinator.Submit(s.ctx, List(signer, s.assetId, big.NewInt(1)))
	require.ErrorIs(s.T(), err, model.ErrRejected)
	require.Empty(s.T(), s.coordinator.Pending())

	published := <-s.coordinator.Output
	require.Equal(s.T(), model.TransactionStatusFailed, published.Status)
	require.Contains(s.T(), published.Reason, "user declined")

	// Same action may be retried right away
	_, err = s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(1)))
	require.Nil(s.T(), err)
}

func (s *CoordinatorTestSuite) TestNoSigner() {
	_, err := s.coordinator.Submit(s.ctx, Action{Kind: model.ActionKindUnlist, AssetId: s.assetId})
	require.ErrorIs(s.T(), err, model.ErrRejected)
}

func (s *CoordinatorTestSuite) TestPreflightErrorsVerbatim() {
	_, err := s.coordinator.Submit(s.ctx, List(s.bob, s.assetId, big.NewInt(1)))
	require.ErrorIs(s.T(), err, model.ErrUnauthorized)
	require.NotErrorIs(s.T(), err, model.ErrRejected)

	_, err = s.coordinator.Submit(s.ctx, Unlist(s.alice, s.assetId))
	require.ErrorIs(s.T(), err, model.ErrNotListed)

	_, err = s.coordinator.Submit(s.ctx, Buy(s.bob, 42, big.NewInt(1)))
	require.ErrorIs(s.T(), err, model.ErrNotFound)

	_, err = s.coordinator.Submit(s.ctx, Transfer(s.alice, s.assetId, common.Address{}))
	require.ErrorIs(s.T(), err, model.ErrInvalidRecipient)

	_, err = s.coordinator.Submit(s.ctx, Action{Kind: "burn", Signer: s.alice})
	require.ErrorIs(s.T(), err, model.ErrInvalidInput)

	require.Empty(s.T(), s.coordinator.Pending())
	require.Equal(s.T(), uint64(5), s.monitor.GetReport().Coordinator.Errors.Preflight.Load())
}

func (s *CoordinatorTestSuite) TestReverted() {
	s.ledger.RevertNext("out of gas")

	tx, err := s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(1)))
	require.ErrorIs(s.T(), err, model.ErrReverted)
	require.Equal(s.T(), model.TransactionStatusFailed, tx.Status)
	require.Contains(s.T(), tx.Reason, "out of gas")
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Coordinator.Errors.Reverted.Load())

	price, err := s.ledger.PriceOf(s.ctx, s.assetId)
	require.Nil(s.T(), err)
	require.Zero(s.T(), price.Sign())
}

func (s *CoordinatorTestSuite) TestBuyAndTransfer() {
	_, err := s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(10)))
	require.Nil(s.T(), err)

	_, err = s.coordinator.Submit(s.ctx, Buy(s.bob, s.assetId, big.NewInt(10)))
	require.Nil(s.T(), err)

	_, err = s.coordinator.Submit(s.ctx, Buy(s.alice, s.assetId, big.NewInt(10)))
	require.ErrorIs(s.T(), err, model.ErrNotListed)

	tx, err := s.coordinator.Submit(s.ctx, Transfer(s.bob, s.assetId, s.alice.Address()))
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.TransactionStatusConfirmed, tx.Status)

	owner, err := s.ledger.OwnerOf(s.ctx, s.assetId)
	require.Nil(s.T(), err)
	require.Equal(s.T(), s.alice.Address(), owner)
}

func (s *CoordinatorTestSuite) TestCallerAbandons() {
	release := s.ledger.HoldConfirmations()
	defer release()

	ctx, cancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer cancel()

	tx, err := s.coordinator.Submit(ctx, List(s.alice, s.assetId, big.NewInt(7)))
	require.ErrorIs(s.T(), err, context.DeadlineExceeded)
	require.Equal(s.T(), model.TransactionStatusSubmitted, tx.Status)

	// Entry stays until the ledger reports
	require.Len(s.T(), s.coordinator.Pending(), 1)
	_, err = s.coordinator.Submit(s.ctx, List(s.alice, s.assetId, big.NewInt(8)))
	require.ErrorIs(s.T(), err, model.ErrAlreadyPending)

	release()
	published := <-s.coordinator.Output
	require.Equal(s.T(), tx.Id, published.Id)
	require.Equal(s.T(), model.TransactionStatusConfirmed, published.Status)
	require.Eventually(s.T(), func() bool { return len(s.coordinator.Pending()) == 0 }, time.Second, 5*time.Millisecond)
}

func (s *CoordinatorTestSuite) TestConfirmationTimeout() {
	cfg := *s.config
	cfg.Coordinator.ConfirmationTimeout = 50 * time.Millisecond
	coordinator := s.newCoordinator(&cfg)
	defer coordinator.StopWait()

	release := s.ledger.HoldConfirmations()
	defer release()

	tx, err := coordinator.Submit(s.ctx, Unlist(s.alice, s.assetId))
	require.ErrorIs(s.T(), err, model.ErrNotListed)
	require.Nil(s.T(), tx)

	tx, err = coordinator.Submit(s.ctx, Transfer(s.alice, s.assetId, s.bob.Address()))
	require.ErrorIs(s.T(), err, context.DeadlineExceeded)
	require.Equal(s.T(), model.TransactionStatusFailed, tx.Status)
	require.Empty(s.T(), coordinator.Pending())
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Coordinator.Errors.Unconfirmed.Load())
}

func (s *CoordinatorTestSuite) TestStopped() {
	coordinator := s.newCoordinator(s.config)
	coordinator.StopWait()

	_, err := coordinator.Submit(s.ctx, Unlist(s.alice, s.assetId))
	require.ErrorIs(s.T(), err, ErrStopped)

	_, ok := <-coordinator.Output
	require.False(s.T(), ok)
}

func (s *CoordinatorTestSuite) TestPreviewTransfer() {
	preview, err := s.coordinator.PreviewTransfer(s.ctx, s.alice.Address(), s.assetId, s.bob.Address().Hex())
	require.Nil(s.T(), err)
	require.Equal(s.T(), s.bob.Address(), preview.Recipient)
	require.Equal(s.T(), "DA", preview.Symbol)
	require.Equal(s.T(), "ipfs://doc", preview.Asset.ContentURI)

	_, err = s.coordinator.PreviewTransfer(s.ctx, s.bob.Address(), s.assetId, s.alice.Address().Hex())
	require.ErrorIs(s.T(), err, model.ErrUnauthorized)

	_, err = s.coordinator.PreviewTransfer(s.ctx, s.alice.Address(), s.assetId, "0x1234")
	require.ErrorIs(s.T(), err, model.ErrInvalidRecipient)

	_, err = s.coordinator.PreviewTransfer(s.ctx, s.alice.Address(), s.assetId, common.Address{}.Hex())
	require.ErrorIs(s.T(), err, model.ErrInvalidRecipient)

	_, err = s.coordinator.PreviewTransfer(s.ctx, s.alice.Address(), 99, s.bob.Address().Hex())
	require.ErrorIs(s.T(), err, model.ErrNotFound)
}
