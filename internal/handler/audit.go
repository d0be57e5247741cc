package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"go.uber.org/zap"
)

// DefaultAuditLimit is how many entries GET /audit returns without a limit
const DefaultAuditLimit = 50

// AuditReader reads back recorded mutations
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// AuditHandler exposes the mutation audit trail
type AuditHandler struct {
	reader AuditReader
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(reader AuditReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		reader: reader,
		logger: logger,
	}
}

// GetAuditEntries returns the newest audit entries
func (h *AuditHandler) GetAuditEntries(c *gin.Context) {
	limit := DefaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, h.logger, strconv.ErrSyntax)
			return
		}
		limit = n
	}

	entries, err := h.reader.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err, "Failed to read audit entries")
		return
	}

	c.JSON(http.StatusOK, entries)
}
