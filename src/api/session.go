package api

import (
	"fmt"
	"net/http"

	"github.com/warp-contracts/market/src/api/request"
	"github.com/warp-contracts/market/src/utils/ledger"
	. "github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/session"

	"github.com/gin-gonic/gin"
)

func (self *Server) onGetSession(c *gin.Context) {
	c.JSON(http.StatusOK, self.session.Current())
}

func (self *Server) onPutSession(c *gin.Context) {
	var in = new(request.SetSession)
	err := c.ShouldBindJSON(in)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err), "Failed to parse request")
		return
	}

	err = self.session.Set(in.Address)
	if err != nil {
		fail(c, err, "Failed to set session")
		return
	}

	current := self.session.Current()
	LOG(c).WithField("address", current.Address.Hex()).Info("Session set")
	c.JSON(http.StatusOK, current)
}

func (self *Server) onDeleteSession(c *gin.Context) {
	self.session.Clear()
	c.JSON(http.StatusOK, self.session.Current())
}

// Writes need the session identity to be the one the server signs for
func (self *Server) signerFor(snapshot session.Snapshot) (ledger.Signer, error) {
	if !snapshot.Present {
		return nil, fmt.Errorf("%w: %w", model.ErrUnauthorized, ErrNoSession)
	}
	if self.signer == nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRejected, ErrNoSigner)
	}
	if self.signer.Address() != snapshot.Address {
		return nil, fmt.Errorf("%w: %w: %s", model.ErrRejected, ErrSignerMismatch, snapshot.Address.Hex())
	}
	return self.signer, nil
}
