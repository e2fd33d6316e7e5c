package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/mint"
	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/gin-gonic/gin"
)

// HTTP status of an error, keeps "declined", "refused by the ledger" and "content unavailable" apart
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrSessionChanged):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyPending),
		errors.Is(err, model.ErrAlreadyListed),
		errors.Is(err, model.ErrNotListed),
		errors.Is(err, model.ErrReverted):
		return http.StatusConflict
	case errors.Is(err, model.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrUnresolvableContent),
		errors.Is(err, model.ErrMalformedContent),
		errors.Is(err, mint.ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled),
		errors.Is(err, index.ErrStopped),
		errors.Is(err, coordinator.ErrStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error, msg string) {
	status := statusOf(err)
	entry := logger.LOGE(c, err, status)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		entry.Error(msg)
		return
	}
	entry.Debug(msg)
}
