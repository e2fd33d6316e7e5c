package config

import "errors"

var (
	ErrUnknownLedgerKind  = errors.New("unknown ledger kind")
	ErrNoGateways         = errors.New("no content gateways configured")
	ErrBadGatewayTemplate = errors.New("gateway template lacks {address} placeholder")
	ErrBadMaxWorkers      = errors.New("indexer needs at least one worker")
)
