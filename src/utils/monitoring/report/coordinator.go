package report

import (
	"go.uber.org/atomic"
)

type CoordinatorErrors struct {
	AlreadyPending atomic.Uint64 `json:"already_pending"`
	Rejected       atomic.Uint64 `json:"rejected"`
	Reverted       atomic.Uint64 `json:"reverted"`
	Preflight      atomic.Uint64 `json:"preflight"`
	Unconfirmed    atomic.Uint64 `json:"unconfirmed"`
}

type CoordinatorState struct {
	Submitted atomic.Uint64 `json:"submitted"`
	Confirmed atomic.Uint64 `json:"confirmed"`
	Pending   atomic.Int64  `json:"pending"`
}

type CoordinatorReport struct {
	State  CoordinatorState  `json:"state"`
	Errors CoordinatorErrors `json:"errors"`
}
