package index

import "errors"

var (
	ErrStopped = errors.New("indexer is stopping")
)
