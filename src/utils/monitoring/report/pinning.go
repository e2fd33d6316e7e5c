package report

import (
	"go.uber.org/atomic"
)

type PinningErrors struct {
	Upload atomic.Uint64 `json:"upload"`
}

type PinningState struct {
	BinariesUploaded  atomic.Uint64 `json:"binaries_uploaded"`
	DocumentsUploaded atomic.Uint64 `json:"documents_uploaded"`
	BytesUploaded     atomic.Uint64 `json:"bytes_uploaded"`
}

type PinningReport struct {
	State  PinningState  `json:"state"`
	Errors PinningErrors `json:"errors"`
}
