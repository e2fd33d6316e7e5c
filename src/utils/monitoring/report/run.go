package report

import (
	"time"

	"go.uber.org/atomic"
)

type RunErrors struct{}

type RunState struct {
	StartTimestamp atomic.Int64  `json:"start_timestamp"`
	UpForSeconds   atomic.Uint64 `json:"up_for_seconds"`
}

type RunReport struct {
	State  RunState  `json:"state"`
	Errors RunErrors `json:"errors"`
}

func (self *RunReport) Fill() {
	self.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.State.StartTimestamp.Load()))
}
