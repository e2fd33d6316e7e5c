package report

import (
	"math"
	"time"

	"go.uber.org/atomic"
)

type IndexerErrors struct {
	PassFailures atomic.Uint64 `json:"pass_failures"`
	LedgerReads  atomic.Uint64 `json:"ledger_reads"`
}

type IndexerState struct {
	PassesStarted         atomic.Uint64  `json:"passes_started"`
	PassesFinished        atomic.Uint64  `json:"passes_finished"`
	AssetsPresent         atomic.Uint64  `json:"assets_present"`
	AssetsUnresolvable    atomic.Uint64  `json:"assets_unresolvable"`
	AssetsAbsent          atomic.Uint64  `json:"assets_absent"`
	AssetsExcluded        atomic.Uint64  `json:"assets_excluded"`
	LastPassTimestamp     atomic.Int64   `json:"last_pass_timestamp"`
	LastPassDurationMs    atomic.Int64   `json:"last_pass_duration_ms"`
	LastAssetCount        atomic.Uint64  `json:"last_asset_count"`
	AveragePassDurationMs atomic.Float64 `json:"average_pass_duration_ms"`
}

type IndexerReport struct {
	State  IndexerState  `json:"state"`
	Errors IndexerErrors `json:"errors"`
}

// Records a finished index pass
func (self *IndexerReport) OnPass(duration time.Duration, total uint64) {
	finished := self.State.PassesFinished.Inc()
	self.State.LastPassTimestamp.Store(time.Now().Unix())
	self.State.LastPassDurationMs.Store(duration.Milliseconds())
	self.State.LastAssetCount.Store(total)

	// Running mean
	avg := self.State.AveragePassDurationMs.Load()
	avg += (float64(duration.Milliseconds()) - avg) / float64(finished)
	self.State.AveragePassDurationMs.Store(math.Round(avg*100) / 100)
}
