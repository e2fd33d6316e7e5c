package report

import (
	"go.uber.org/atomic"
)

type ContentErrors struct {
	GatewayFailures atomic.Uint64 `json:"gateway_failures"`
	Unresolvable    atomic.Uint64 `json:"unresolvable"`
	Malformed       atomic.Uint64 `json:"malformed"`
}

type ContentState struct {
	Resolved                   atomic.Uint64  `json:"resolved"`
	GatewayRequests            atomic.Uint64  `json:"gateway_requests"`
	AverageGatewayFailureRatio atomic.Float64 `json:"average_gateway_failure_ratio"`
}

type ContentReport struct {
	State  ContentState  `json:"state"`
	Errors ContentErrors `json:"errors"`
}
