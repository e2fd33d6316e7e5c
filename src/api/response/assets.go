package response

import (
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/session"
)

// Asset as seen by the current session
type Asset struct {
	*model.Asset

	Label   string             `json:"label"`
	Actions []model.ActionKind `json:"actions"`
}

type GetAssets struct {
	Session      session.Snapshot `json:"session"`
	Total        uint64           `json:"total"`
	Unresolvable int              `json:"unresolvable"`
	Assets       []*Asset         `json:"assets"`
}
