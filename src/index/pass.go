package index

import (
	"slices"
	"time"

	"github.com/warp-contracts/market/src/utils/model"
)

type Status string

const (
	// Asset materialized
	StatusPresent Status = "present"

	// Description document couldn't be fetched or parsed
	StatusUnresolvable Status = "unresolvable"

	// Ledger doesn't know the id or it has no content
	StatusAbsent Status = "absent"

	// Filtered out
	StatusExcluded Status = "excluded"
)

// Outcome for a single id
type Result struct {
	Id     uint64       `json:"id"`
	Status Status       `json:"status"`
	Asset  *model.Asset `json:"asset,omitempty"`
	Err    error        `json:"-"`
}

// One full scan of the asset space
type Pass struct {
	Filter    model.Filter
	Total     uint64
	Results   []Result
	StartedAt time.Time
	Duration  time.Duration
}

// Materialized assets in ascending id order
func (self *Pass) Assets() (out []*model.Asset) {
	out = make([]*model.Asset, 0, len(self.Results))
	for _, result := range self.Results {
		if result.Status == StatusPresent {
			out = append(out, result.Asset)
		}
	}
	slices.SortFunc(out, func(a, b *model.Asset) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return
}

func (self *Pass) Count(status Status) (n int) {
	for _, result := range self.Results {
		if result.Status == status {
			n++
		}
	}
	return
}
