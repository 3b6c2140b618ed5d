package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/v0xg/a11yscan/internal/logger"
	"github.com/v0xg/a11yscan/internal/scan"
)

// Scanner runs one scan and always returns a structured response.
type Scanner interface {
	Scan(ctx context.Context, req scan.Request) *scan.Response
}

// ScanHandler serves POST /api/v1/scan.
type ScanHandler struct {
	scanner Scanner
	timeout time.Duration
	log     logger.Logger
}

// NewScanHandler creates a handler. A positive timeout bounds each scan.
func NewScanHandler(scanner Scanner, timeout time.Duration, log logger.Logger) *ScanHandler {
	return &ScanHandler{scanner: scanner, timeout: timeout, log: log}
}

// Scan decodes the request, runs the scan and maps the outcome onto a status
// code. Unreachable sites are a completed scan with a negative result, so they
// answer 200 like a success.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req scan.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, scan.Failure(scan.FailureValidation, scan.Metadata{}, "invalid request body: "+err.Error(), "", 0))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp := h.scanner.Scan(ctx, req)
	c.JSON(statusFor(resp), resp)
}

func statusFor(resp *scan.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.ErrorType {
	case scan.FailureValidation:
		return http.StatusBadRequest
	case scan.FailureUnreachable:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
