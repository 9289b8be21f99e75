package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

// GenerateHandler is the proxy between browser clients and the remote
// generative model. The server-held credential never reaches the client; the
// client sends only a prompt and image payloads.
type GenerateHandler struct {
	generator generation.Generator
	calls     storage.CallRepository
	logger    *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generator generation.Generator, calls storage.CallRepository, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		calls:     calls,
		logger:    logger,
	}
}

type generateRequest struct {
	Prompt string                 `json:"prompt"`
	Images []generation.ImagePart `json:"images"`
}

// Generate handles POST /api/generate.
//
// Responses: 200 {imageData} on success; 400 on a missing prompt or empty
// image list; 500 for a missing credential, a remote failure, or a response
// with no image — all error bodies are {error: string}. Wrong methods get 405
// from the router. One request in, one image (or one error) out; no retries.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	if req.Prompt == "" || len(req.Images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing prompt or images",
		})
		return
	}

	start := time.Now()
	result, err := h.generator.GenerateCollage(c.Request.Context(), req.Prompt, req.Images)
	h.recordCall(c, req, err, time.Since(start).Milliseconds())

	if err != nil {
		h.logger.Warn("generation failed",
			zap.Int("images", len(req.Images)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": errorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imageData": result.DataURI(),
	})
}

// errorMessage maps generation failures to the client-facing message. The
// missing-credential case is deliberately generic — the client has no
// business knowing which credential the server lacks.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, generation.ErrMissingCredential):
		return "API key not configured"
	case errors.Is(err, generation.ErrEmptyResult):
		return "No image was generated"
	default:
		return err.Error()
	}
}

func (h *GenerateHandler) recordCall(c *gin.Context, req generateRequest, callErr error, durationMs int64) {
	call := &model.ProviderCall{
		Kind:        model.CallGenerate,
		Provider:    h.generator.ProviderName(),
		Model:       h.generator.ModelName(),
		ImageCount:  len(req.Images),
		PromptChars: len(req.Prompt),
		Success:     callErr == nil,
	}
	call.DurationMs = &durationMs
	if callErr != nil {
		msg := callErr.Error()
		call.ErrorMessage = &msg
	}

	if err := h.calls.Create(c.Request.Context(), call); err != nil {
		h.logger.Error("recording generation call", zap.Error(err))
	}
}
