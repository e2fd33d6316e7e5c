package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Logger bound to the HTTP request
func LOG(c *gin.Context) *logrus.Entry {
	return NewSublogger("api").
		WithField("method", c.Request.Method).
		WithField("path", c.FullPath())
}

// Aborts the request with the given status and returns a logger for the failure
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, &ErrorResponse{Error: msg, Status: status})

	return LOG(c).WithError(err).WithField("status", status)
}
