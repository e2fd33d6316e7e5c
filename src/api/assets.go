package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/warp-contracts/market/src/api/request"
	"github.com/warp-contracts/market/src/api/response"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/market"
	"github.com/warp-contracts/market/src/utils/eth"
	. "github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func view(asset *model.Asset, snapshot session.Snapshot) *response.Asset {
	return &response.Asset{
		Asset:   asset,
		Label:   market.Label(asset, snapshot),
		Actions: market.Actions(asset, snapshot),
	}
}

func parseId(s string) (id uint64, err error) {
	id, err = strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		err = fmt.Errorf("%w: %q is not an asset id", model.ErrInvalidInput, s)
	}
	return
}

// Asset id from the path, responds with an error if it's malformed
func (self *Server) assetId(c *gin.Context) (id uint64, ok bool) {
	id, err := parseId(c.Param("id"))
	if err != nil {
		fail(c, err, "Bad asset id")
		return
	}
	return id, true
}

func (self *Server) filterOf(in *request.GetAssets, snapshot session.Snapshot) (filter model.Filter, err error) {
	var owner common.Address
	if in.Owner != "" {
		owner, err = eth.ParseAddress(in.Owner)
		if err != nil {
			return
		}
	}

	switch strings.ToLower(in.Filter) {
	case "", "all":
		filter = model.FilterAll()
		if in.Owner != "" {
			filter = model.FilterOwnedBy(owner)
		}
	case "listed", "market":
		filter = model.FilterListed()
	case "mine", "owned":
		if in.Owner == "" {
			if !snapshot.Present {
				err = fmt.Errorf("%w: %w", model.ErrUnauthorized, ErrNoSession)
				return
			}
			owner = snapshot.Address
		}
		filter = model.FilterOwnedBy(owner)
	default:
		err = fmt.Errorf("%w: unknown filter %q", model.ErrInvalidInput, in.Filter)
		return
	}

	if in.Id != "" {
		var id uint64
		id, err = parseId(in.Id)
		if err != nil {
			return
		}
		filter = filter.WithId(id)
	}
	return
}

func (self *Server) onGetAssets(c *gin.Context) {
	var in = new(request.GetAssets)
	err := c.ShouldBindQuery(in)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err), "Failed to parse request")
		return
	}

	snapshot := self.session.Current()
	filter, err := self.filterOf(in, snapshot)
	if err != nil {
		fail(c, err, "Bad filter")
		return
	}

	ctx, cancel := self.context(c)
	defer cancel()

	pass, err := self.indexer.Pass(ctx, filter)
	if err != nil {
		fail(c, err, "Index pass failed")
		return
	}

	// Result computed for a different identity is not applied
	if !self.session.IsCurrent(snapshot) {
		fail(c, ErrSessionChanged, "Session changed during the pass")
		return
	}

	out := &response.GetAssets{
		Session:      snapshot,
		Total:        pass.Total,
		Unresolvable: pass.Count(index.StatusUnresolvable),
	}
	assets := pass.Assets()
	out.Assets = make([]*response.Asset, 0, len(assets))
	for _, asset := range assets {
		out.Assets = append(out.Assets, view(asset, snapshot))
	}

	LOG(c).WithField("filter", filter.Kind).WithField("count", len(out.Assets)).Debug("Assets listed")
	c.JSON(http.StatusOK, out)
}

func (self *Server) onGetAsset(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	snapshot := self.session.Current()

	ctx, cancel := self.context(c)
	defer cancel()

	asset, err := self.indexer.Lookup(ctx, id)
	if err != nil {
		fail(c, err, "Failed to get asset")
		return
	}

	c.JSON(http.StatusOK, view(asset, snapshot))
}

func (self *Server) onPreviewTransfer(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	var in = new(request.PreviewTransfer)
	err := c.ShouldBindQuery(in)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidRecipient, err), "Failed to parse request")
		return
	}

	snapshot := self.session.Current()
	if !snapshot.Present {
		fail(c, fmt.Errorf("%w: %w", model.ErrUnauthorized, ErrNoSession), "Transfer preview without session")
		return
	}

	ctx, cancel := self.context(c)
	defer cancel()

	preview, err := self.coordinator.PreviewTransfer(ctx, snapshot.Address, id, in.To)
	if err != nil {
		fail(c, err, "Transfer preview failed")
		return
	}

	c.JSON(http.StatusOK, preview)
}
