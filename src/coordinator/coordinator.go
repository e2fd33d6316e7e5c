package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/monitoring"
	"github.com/warp-contracts/market/src/utils/task"

	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"
)

// Submits write calls, awaits their confirmation and classifies the outcome.
// At most one transaction per (kind, asset id) is in flight.
type Coordinator struct {
	*task.Task

	ledger  ledger.Ledger
	indexer Lookuper
	monitor monitoring.Monitor

	// Pending transactions, values are never modified after insertion
	registry *cache.Cache

	// Confirmations running in the background
	mtx      sync.Mutex
	stopped  bool
	inFlight sync.WaitGroup

	// Finished transactions
	Output chan *model.PendingTransaction
}

type outcome struct {
	tx  *model.PendingTransaction
	err error
}

func NewCoordinator(config *config.Config) (self *Coordinator) {
	self = new(Coordinator)

	// Entries live until their transaction finishes, only the submitting call removes them
	self.registry = cache.New(cache.NoExpiration, 0)
	self.Output = make(chan *model.PendingTransaction, config.Coordinator.OutputBufferSize)

	self.Task = task.NewTask(config, "coordinator").
		WithOnAfterStop(self.onAfterStop)

	return
}

func (self *Coordinator) WithLedger(ledger ledger.Ledger) *Coordinator {
	self.ledger = ledger
	return self
}

func (self *Coordinator) WithIndexer(indexer Lookuper) *Coordinator {
	self.indexer = indexer
	return self
}

func (self *Coordinator) WithMonitor(monitor monitoring.Monitor) *Coordinator {
	self.monitor = monitor
	return self
}

func (self *Coordinator) onAfterStop() {
	self.mtx.Lock()
	self.stopped = true
	self.mtx.Unlock()

	self.inFlight.Wait()
	close(self.Output)
}

func (self *Coordinator) acquire() bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.stopped || self.Ctx.Err() != nil {
		return false
	}
	self.inFlight.Add(1)
	return true
}

// Outstanding transactions, oldest first
func (self *Coordinator) Pending() (out []*model.PendingTransaction) {
	items := self.registry.Items()
	out = make([]*model.PendingTransaction, 0, len(items))
	for _, item := range items {
		tx, ok := item.Object.(*model.PendingTransaction)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	slices.SortFunc(out, func(a, b *model.PendingTransaction) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})
	return
}

// Dispatches the action and waits for its confirmation.
// If ctx is done first the confirmation continues in the background and the transaction is returned as submitted.
func (self *Coordinator) Submit(ctx context.Context, action Action) (tx *model.PendingTransaction, err error) {
	if action.Signer == nil {
		return nil, fmt.Errorf("%w: no signer", model.ErrRejected)
	}

	if !self.acquire() {
		return nil, ErrStopped
	}

	pending := &model.PendingTransaction{
		Id:          xid.New().String(),
		Kind:        action.Kind,
		AssetId:     action.AssetId,
		Submitter:   action.Signer.Address(),
		Status:      model.TransactionStatusSubmitted,
		SubmittedAt: time.Now(),
	}
	key := pending.Key()

	// Check and insert in one step
	err = self.registry.Add(key, pending, cache.NoExpiration)
	if err != nil {
		self.inFlight.Done()
		if self.monitor != nil {
			self.monitor.GetReport().Coordinator.Errors.AlreadyPending.Inc()
		}
		return nil, fmt.Errorf("%w: %s", model.ErrAlreadyPending, key)
	}

	log := self.Log.WithField("id", pending.Id).WithField("key", key)

	receipt, err := self.dispatch(ctx, action)
	if err != nil {
		err = self.classify(err)
		log.WithError(err).Info("Transaction not dispatched")

		self.release(key, pending.Id)
		failed := *pending
		self.finish(&failed, err)
		self.inFlight.Done()
		return nil, err
	}

	// Registry values are immutable, replace with a copy that has the hash
	submitted := *pending
	submitted.Hash = receipt.Hash
	self.registry.Set(key, &submitted, cache.NoExpiration)

	if self.monitor != nil {
		self.monitor.GetReport().Coordinator.State.Submitted.Inc()
		self.monitor.GetReport().Coordinator.State.Pending.Inc()
	}
	log.WithField("hash", receipt.Hash).Debug("Transaction submitted")

	done := make(chan outcome, 1)
	go func() {
		defer self.inFlight.Done()
		final, err := self.confirm(action, receipt, &submitted)
		self.release(key, submitted.Id)
		done <- outcome{tx: final, err: err}
	}()

	select {
	case <-ctx.Done():
		log.Debug("Caller stopped waiting for confirmation")
		out := submitted
		return &out, ctx.Err()
	case o := <-done:
		return o.tx, o.err
	}
}

// Removes the entry only if it still belongs to the transaction
func (self *Coordinator) release(key, id string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	value, ok := self.registry.Get(key)
	if !ok {
		return
	}
	tx, ok := value.(*model.PendingTransaction)
	if !ok || tx.Id != id {
		self.Log.WithField("key", key).WithField("id", id).Warn("Pending entry owned by another transaction")
		return
	}
	self.registry.Delete(key)
}

func (self *Coordinator) dispatch(ctx context.Context, action Action) (*ledger.Receipt, error) {
	switch action.Kind {
	case model.ActionKindMint:
		return self.ledger.Mint(ctx, action.Signer, action.To, action.ContentURI)
	case model.ActionKindTransfer:
		return self.ledger.Transfer(ctx, action.Signer, action.From, action.To, action.AssetId)
	case model.ActionKindList:
		return self.ledger.List(ctx, action.Signer, action.AssetId, action.Price)
	case model.ActionKindUnlist:
		return self.ledger.Unlist(ctx, action.Signer, action.AssetId)
	case model.ActionKindBuy:
		return self.ledger.Buy(ctx, action.Signer, action.AssetId, action.Payment)
	}
	return nil, fmt.Errorf("%w: %w %q", model.ErrInvalidInput, ErrUnknownAction, action.Kind)
}

// Precondition violations keep their meaning, other synchronous failures are rejections
func (self *Coordinator) classify(err error) error {
	if model.IsKnown(err) {
		if self.monitor != nil {
			if errors.Is(err, model.ErrRejected) {
				self.monitor.GetReport().Coordinator.Errors.Rejected.Inc()
			} else {
				self.monitor.GetReport().Coordinator.Errors.Preflight.Inc()
			}
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if self.monitor != nil {
		self.monitor.GetReport().Coordinator.Errors.Rejected.Inc()
	}
	return fmt.Errorf("%w: %v", model.ErrRejected, err)
}

// Waits for inclusion under the coordinator's context, independent of the caller
func (self *Coordinator) confirm(action Action, receipt *ledger.Receipt, submitted *model.PendingTransaction) (final *model.PendingTransaction, err error) {
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Coordinator.ConfirmationTimeout)
	defer cancel()

	if self.monitor != nil {
		defer self.monitor.GetReport().Coordinator.State.Pending.Dec()
	}

	final = new(model.PendingTransaction)
	*final = *submitted

	confirmation, err := self.ledger.Confirm(ctx, receipt)
	if err == nil && action.Kind == model.ActionKindTransfer {
		err = self.verifyTransfer(ctx, action)
	}

	if err != nil {
		if self.monitor != nil {
			if errors.Is(err, model.ErrReverted) {
				self.monitor.GetReport().Coordinator.Errors.Reverted.Inc()
			} else {
				self.monitor.GetReport().Coordinator.Errors.Unconfirmed.Inc()
			}
		}
		self.Log.WithError(err).WithField("hash", receipt.Hash).Info("Transaction failed")
		self.finish(final, err)
		return
	}

	final.BlockNumber = confirmation.BlockNumber
	if action.Kind == model.ActionKindMint {
		final.AssetId = confirmation.AssetId
	}
	if self.monitor != nil {
		self.monitor.GetReport().Coordinator.State.Confirmed.Inc()
	}
	self.Log.WithField("hash", receipt.Hash).
		WithField("kind", final.Kind).
		WithField("asset_id", final.AssetId).
		Info("Transaction confirmed")
	self.finish(final, nil)
	return
}

// Ledger has to report the recipient as the new owner
func (self *Coordinator) verifyTransfer(ctx context.Context, action Action) error {
	owner, err := self.ledger.OwnerOf(ctx, action.AssetId)
	if err != nil {
		return err
	}
	if owner != action.To {
		return fmt.Errorf("%w: owner did not change", model.ErrReverted)
	}
	return nil
}

// Marks the transaction as finished and publishes it
func (self *Coordinator) finish(tx *model.PendingTransaction, err error) {
	tx.FinishedAt = time.Now()
	if err == nil {
		tx.Status = model.TransactionStatusConfirmed
	} else {
		tx.Status = model.TransactionStatusFailed
		tx.Reason = err.Error()
	}

	select {
	case self.Output <- tx:
	default:
		self.Log.WithField("id", tx.Id).Warn("Output channel full, dropping finished transaction")
	}
}
