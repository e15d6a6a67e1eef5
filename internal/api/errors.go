package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error to its HTTP status and machine-readable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrAnalysisFailed):
		return http.StatusInternalServerError, "ANALYSIS_FAILED"
	case errors.Is(err, provider.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, provider.ErrNotAvailable):
		return http.StatusNotFound, "NOT_AVAILABLE"
	case errors.Is(err, provider.ErrMisconfigured):
		return http.StatusServiceUnavailable, "MISCONFIGURED"
	default:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "BAD_REQUEST"})
}
