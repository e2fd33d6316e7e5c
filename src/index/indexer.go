package index

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/monitoring"
	"github.com/warp-contracts/market/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
)

// Source of description documents
type Resolver interface {
	Resolve(ctx context.Context, uri string) (*model.Document, error)

	// HTTP location of the content, not fetched
	Locate(uri string) string
}

// Walks the whole asset space and composes ledger reads with content resolution
type Indexer struct {
	*task.Task

	ledger   ledger.Reader
	resolver Resolver
	monitor  monitoring.Monitor
}

func NewIndexer(config *config.Config) (self *Indexer) {
	self = new(Indexer)

	self.Task = task.NewTask(config, "indexer").
		WithWorkerPool(config.Indexer.MaxWorkers, config.Indexer.MaxQueueSize)

	return
}

func (self *Indexer) WithLedger(ledger ledger.Reader) *Indexer {
	self.ledger = ledger
	return self
}

func (self *Indexer) WithResolver(resolver Resolver) *Indexer {
	self.resolver = resolver
	return self
}

func (self *Indexer) WithMonitor(monitor monitoring.Monitor) *Indexer {
	self.monitor = monitor
	return self
}

// Values read once per pass and shared by all ids
type passState struct {
	filter model.Filter

	symbolOnce sync.Once
	symbol     string
}

// Scans [0, N). Failures of single ids are recorded in the results, only reading N fails the pass.
func (self *Indexer) Pass(ctx context.Context, filter model.Filter) (out *Pass, err error) {
	out = &Pass{Filter: filter, StartedAt: time.Now()}
	if self.monitor != nil {
		self.monitor.GetReport().Indexer.State.PassesStarted.Inc()
	}

	out.Total, err = self.ledger.TotalAssetCount(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to read asset count")
		if self.monitor != nil {
			self.monitor.GetReport().Indexer.Errors.PassFailures.Inc()
		}
		return nil, err
	}

	state := &passState{filter: filter}

	ids := self.ids(filter, out.Total)
	out.Results = make([]Result, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		wg.Add(1)
		submitted := self.SubmitToWorker(func() {
			defer wg.Done()
			out.Results[i] = self.process(ctx, state, id)
		})
		if !submitted {
			wg.Done()
			return nil, ErrStopped
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		// Workers finish in the background, their results are dropped
		return nil, ctx.Err()
	case <-self.Ctx.Done():
		return nil, ErrStopped
	case <-done:
	}

	out.Duration = time.Since(out.StartedAt)
	self.report(out)

	self.Log.WithField("total", out.Total).
		WithField("present", out.Count(StatusPresent)).
		WithField("unresolvable", out.Count(StatusUnresolvable)).
		WithField("duration", out.Duration).
		Debug("Pass finished")
	return
}

// Ids worth processing, a single id filter doesn't walk the whole range
func (self *Indexer) ids(filter model.Filter, total uint64) (out []uint64) {
	if filter.Id != nil {
		if *filter.Id < total {
			out = []uint64{*filter.Id}
		}
		return
	}

	out = make([]uint64, 0, total)
	for id := uint64(0); id < total; id++ {
		out = append(out, id)
	}
	return
}

// Materializes a single asset
func (self *Indexer) Lookup(ctx context.Context, id uint64) (asset *model.Asset, err error) {
	result := self.process(ctx, &passState{filter: model.FilterAll()}, id)

	switch result.Status {
	case StatusPresent:
		return result.Asset, nil
	case StatusAbsent:
		if result.Err != nil {
			return nil, result.Err
		}
		return nil, fmt.Errorf("%w: asset %d has no content", model.ErrNotFound, id)
	default:
		return nil, result.Err
	}
}

func (self *Indexer) process(ctx context.Context, state *passState, id uint64) (result Result) {
	result.Id = id

	var (
		owner    common.Address
		hasOwner bool
		price    *big.Int
		err      error
	)

	// Owner is checked before anything gets resolved
	if state.filter.Kind == model.FilterKindOwnedBy {
		owner, err = self.ledger.OwnerOf(ctx, id)
		if err != nil {
			return self.onReadError(result, err)
		}
		if !state.filter.MatchOwner(owner) {
			result.Status = StatusExcluded
			return
		}
		hasOwner = true
	}

	if state.filter.Kind == model.FilterKindListed {
		price, err = self.ledger.PriceOf(ctx, id)
		if err != nil {
			return self.onReadError(result, err)
		}
		if price.Sign() <= 0 {
			result.Status = StatusExcluded
			return
		}
	}

	uri, err := self.ledger.ContentURIOf(ctx, id)
	if err != nil {
		return self.onReadError(result, err)
	}
	if uri == "" {
		result.Status = StatusAbsent
		return
	}

	doc, err := self.resolver.Resolve(ctx, uri)
	if err != nil {
		self.Log.WithError(err).WithField("id", id).Debug("Skipping asset, content not resolved")
		result.Status = StatusUnresolvable
		result.Err = err
		return
	}

	if !hasOwner {
		owner, err = self.ledger.OwnerOf(ctx, id)
		if err != nil {
			return self.onReadError(result, err)
		}
	}

	if price == nil {
		price, err = self.ledger.PriceOf(ctx, id)
		if err != nil {
			return self.onReadError(result, err)
		}
	}

	asset := &model.Asset{
		Id:          id,
		Owner:       owner,
		ContentURI:  uri,
		Name:        doc.Name,
		Description: doc.Description,
		ImageURI:    doc.Image,
		ImageURL:    self.resolver.Locate(doc.Image),
		Symbol:      doc.Symbol,
		CreatedBy:   doc.CreatedBy,
		Price:       eth.FromWei(price),
	}
	if asset.Symbol == "" {
		asset.Symbol = self.symbol(ctx, state)
	}

	result.Status = StatusPresent
	result.Asset = asset
	return
}

func (self *Indexer) onReadError(result Result, err error) Result {
	result.Err = err
	if errors.Is(err, model.ErrNotFound) {
		result.Status = StatusAbsent
		return result
	}

	self.Log.WithError(err).WithField("id", result.Id).Warn("Ledger read failed")
	if self.monitor != nil {
		self.monitor.GetReport().Indexer.Errors.LedgerReads.Inc()
	}
	result.Status = StatusUnresolvable
	return result
}

// Contract symbol, read at most once per pass
func (self *Indexer) symbol(ctx context.Context, state *passState) string {
	state.symbolOnce.Do(func() {
		symbol, err := self.ledger.Symbol(ctx)
		if err != nil {
			self.Log.WithError(err).Debug("Failed to read contract symbol")
			return
		}
		state.symbol = symbol
	})
	return state.symbol
}

func (self *Indexer) report(pass *Pass) {
	if self.monitor == nil {
		return
	}

	r := self.monitor.GetReport().Indexer
	r.State.AssetsPresent.Add(uint64(pass.Count(StatusPresent)))
	r.State.AssetsUnresolvable.Add(uint64(pass.Count(StatusUnresolvable)))
	r.State.AssetsAbsent.Add(uint64(pass.Count(StatusAbsent)))
	r.State.AssetsExcluded.Add(uint64(pass.Count(StatusExcluded)))
	r.OnPass(pass.Duration, pass.Total)
}
