package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/model"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	store  interface{ Len() int }
	calls  storage.CallRepository
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. store only needs to report how
// many sessions are live, so the dependency is the minimal interface.
func NewAdminHandler(store interface{ Len() int }, calls storage.CallRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		calls:  calls,
		logger: logger,
	}
}

// Stats returns live session and provider-call counters.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	generated, err := h.calls.Count(ctx, model.CallGenerate)
	if err != nil {
		h.logger.Error("counting generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	generatedFailed, err := h.calls.CountFailed(ctx, model.CallGenerate)
	if err != nil {
		h.logger.Error("counting failed generation calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	enhanced, err := h.calls.Count(ctx, model.CallEnhance)
	if err != nil {
		h.logger.Error("counting enhancer calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	enhancedFailed, err := h.calls.CountFailed(ctx, model.CallEnhance)
	if err != nil {
		h.logger.Error("counting failed enhancer calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"live_sessions":      h.store.Len(),
		"generation_calls":   generated,
		"generation_failed":  generatedFailed,
		"enhancement_calls":  enhanced,
		"enhancement_failed": enhancedFailed,
	})
}
