package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walterwhite-69/Miruro-API/internal/anilist"
	"github.com/walterwhite-69/Miruro-API/internal/pipe"
	"github.com/walterwhite-69/Miruro-API/internal/upstream"
)

// statusClientClosed is logged when the caller went away before the upstream answered
const statusClientClosed = 499

// errorStatus maps a service error to the HTTP status and message sent to the caller.
// Upstream error statuses of 400 and above pass through; anything else reaching an
// upstream is a bad gateway.
func errorStatus(err error) (int, string) {
	var decodeErr *pipe.DecodeError
	var upErr *upstream.Error

	switch {
	case errors.As(err, &decodeErr):
		return http.StatusInternalServerError, decodeErr.Error()
	case errors.Is(err, anilist.ErrNotFound):
		return http.StatusNotFound, anilist.ErrNotFound.Error()
	case errors.Is(err, context.Canceled):
		return statusClientClosed, "request cancelled"
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		if upErr.Timeout() {
			status = http.StatusGatewayTimeout
		}
		return status, upErr.Service + " request failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail records err on the context for the access log and writes the JSON error body
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, msg := errorStatus(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
