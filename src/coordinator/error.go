package coordinator

import "errors"

var (
	ErrStopped       = errors.New("coordinator is stopping")
	ErrUnknownAction = errors.New("unknown action")
)
