package eth

import "errors"

var (
	ErrEventNotInABI = errors.New("event not in abi")
	ErrLogNotFound   = errors.New("desired transaction log not found")
)
