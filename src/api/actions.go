package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/warp-contracts/market/src/api/request"
	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/mint"
	"github.com/warp-contracts/market/src/utils/eth"
	"github.com/warp-contracts/market/src/utils/ledger"
	. "github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/gin-gonic/gin"
)

// Submits the action built for the session's signer and waits for the outcome
func (self *Server) submit(c *gin.Context, build func(signer ledger.Signer) (coordinator.Action, error)) {
	signer, err := self.signerFor(self.session.Current())
	if err != nil {
		fail(c, err, "Can't sign")
		return
	}

	action, err := build(signer)
	if err != nil {
		fail(c, err, "Bad request")
		return
	}

	ctx, cancel := self.context(c)
	defer cancel()

	tx, err := self.coordinator.Submit(ctx, action)
	if err != nil {
		fail(c, err, "Transaction failed")
		return
	}

	LOG(c).WithField("kind", tx.Kind).
		WithField("asset_id", tx.AssetId).
		WithField("hash", tx.Hash).
		Info("Transaction confirmed")
	c.JSON(http.StatusOK, tx)
}

func (self *Server) onTransfer(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	var in = new(request.Transfer)
	err := c.ShouldBindJSON(in)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidRecipient, err), "Failed to parse request")
		return
	}

	self.submit(c, func(signer ledger.Signer) (action coordinator.Action, err error) {
		to, err := eth.ParseRecipient(in.To)
		if err != nil {
			return
		}
		return coordinator.Transfer(signer, id, to), nil
	})
}

func (self *Server) onList(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	var in = new(request.List)
	err := c.ShouldBindJSON(in)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidPrice, err), "Failed to parse request")
		return
	}

	self.submit(c, func(signer ledger.Signer) (action coordinator.Action, err error) {
		price, err := eth.ParsePrice(in.Price)
		if err != nil {
			return
		}
		return coordinator.List(signer, id, price), nil
	})
}

func (self *Server) onUnlist(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	self.submit(c, func(signer ledger.Signer) (coordinator.Action, error) {
		return coordinator.Unlist(signer, id), nil
	})
}

// Pays exactly the current price
func (self *Server) onBuy(c *gin.Context) {
	id, ok := self.assetId(c)
	if !ok {
		return
	}

	self.submit(c, func(signer ledger.Signer) (action coordinator.Action, err error) {
		ctx, cancel := self.context(c)
		defer cancel()

		price, err := self.ledger.PriceOf(ctx, id)
		if err != nil {
			return
		}
		return coordinator.Buy(signer, id, price), nil
	})
}

func (self *Server) onMint(c *gin.Context) {
	signer, err := self.signerFor(self.session.Current())
	if err != nil {
		fail(c, err, "Can't sign")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err), "No file")
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err), "Failed to open file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err), "Failed to read file")
		return
	}

	ctx, cancel := self.context(c)
	defer cancel()

	out, err := self.minter.Mint(ctx, signer, &mint.Request{
		Data:        data,
		FileName:    header.Filename,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Symbol:      c.PostForm("symbol"),
		CreatedBy:   c.PostForm("createdBy"),
	})
	if err != nil {
		if out != nil && out.Transaction != nil && out.Transaction.Status == model.TransactionStatusConfirmed {
			// Minted, only reading it back failed
			LOG(c).WithError(err).Warn("Minted asset not materialized")
			c.JSON(http.StatusOK, out)
			return
		}
		fail(c, err, "Mint failed")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onGetPending(c *gin.Context) {
	c.JSON(http.StatusOK, self.coordinator.Pending())
}
