package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/storage"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	calls  storage.GenerationCallRepository
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(calls storage.GenerationCallRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		calls:  calls,
		logger: logger,
	}
}

// Stats returns generation call counts per provider.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.calls.Count(ctx)
	if err != nil {
		h.logger.Error("counting generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	failed, err := h.calls.CountBySuccess(ctx, false)
	if err != nil {
		h.logger.Error("counting failed generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	providers, err := h.calls.StatsByProvider(ctx)
	if err != nil {
		h.logger.Error("aggregating generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"succeeded": total - failed,
		"failed":    failed,
		"providers": providers,
	})
}

// Calls lists the most recent generation calls.
// Route: GET /api/v1/admin/calls?limit=20
func (h *AdminHandler) Calls(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	calls, err := h.calls.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"calls": calls})
}
