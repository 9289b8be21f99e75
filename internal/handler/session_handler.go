package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/composer"
	"github.com/Chrojoh/dog-collage-generator/internal/enhance"
	"github.com/Chrojoh/dog-collage-generator/internal/export"
	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/ingest"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
	"github.com/Chrojoh/dog-collage-generator/internal/session"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

// SessionHandler exposes the form-state API: one session per page load, all
// of it in memory, everything a browser needs to drive the collage pipeline.
type SessionHandler struct {
	store     *session.Store
	ingestor  *ingest.Ingestor
	generator generation.Generator
	enhancer  *enhance.Enhancer // nil when prompt refinement is disabled
	calls     storage.CallRepository
	logger    *zap.Logger
}

// NewSessionHandler creates a SessionHandler. enhancer may be nil.
func NewSessionHandler(
	store *session.Store,
	ingestor *ingest.Ingestor,
	generator generation.Generator,
	enhancer *enhance.Enhancer,
	calls storage.CallRepository,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		store:     store,
		ingestor:  ingestor,
		generator: generator,
		enhancer:  enhancer,
		calls:     calls,
		logger:    logger,
	}
}

// Create handles POST /api/v1/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.store.Create()
	c.JSON(http.StatusCreated, s.View())
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Delete handles DELETE /api/v1/sessions/:id, ending the session and
// releasing its images.
func (h *SessionHandler) Delete(c *gin.Context) {
	h.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Update handles PATCH /api/v1/sessions/:id with partial text-field edits.
func (h *SessionHandler) Update(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var update session.FormUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.Apply(update)
	c.JSON(http.StatusOK, s.View())
}

// AddStat handles POST /api/v1/sessions/:id/stats.
func (h *SessionHandler) AddStat(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	entry := s.AddStat()
	c.JSON(http.StatusCreated, entry)
}

type statUpdate struct {
	Label *string `json:"label"`
	Value *string `json:"value"`
}

// UpdateStat handles PATCH /api/v1/sessions/:id/stats/:statID.
func (h *SessionHandler) UpdateStat(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var update statUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.UpdateStat(c.Param("statID"), update.Label, update.Value) {
		c.JSON(http.StatusNotFound, gin.H{"error": "stat not found"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// RemoveStat handles DELETE /api/v1/sessions/:id/stats/:statID.
func (h *SessionHandler) RemoveStat(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	if !s.RemoveStat(c.Param("statID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "stat not found"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// ToggleStyle handles POST /api/v1/sessions/:id/styles/:styleID/toggle.
func (h *SessionHandler) ToggleStyle(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	if err := s.ToggleStyle(c.Param("styleID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown style"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// SelectSize handles PUT /api/v1/sessions/:id/size/:sizeID.
func (h *SessionHandler) SelectSize(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	if err := s.SelectSize(c.Param("sizeID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown size"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// UploadImages handles POST /api/v1/sessions/:id/images (multipart field
// "images"). Accepted files are appended to the existing collection; files
// that are not images or fail to decode are reported in "skipped" without
// failing the batch.
func (h *SessionHandler) UploadImages(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	result := h.ingestor.Batch(files)
	s.AddImages(result.Assets)

	c.JSON(http.StatusOK, gin.H{
		"session": s.View(),
		"skipped": result.Skipped,
	})
}

// ImagePreview handles GET /api/v1/sessions/:id/images/:index/preview,
// serving the normalized JPEG for on-screen display.
func (h *SessionHandler) ImagePreview(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image index"})
		return
	}
	asset := s.ImageAt(index)
	if asset == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, asset.MimeType, asset.Data)
}

// RemoveImage handles DELETE /api/v1/sessions/:id/images/:index.
func (h *SessionHandler) RemoveImage(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image index"})
		return
	}
	if !s.RemoveImage(index) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Generate handles POST /api/v1/sessions/:id/generate: compose the prompt
// from current form state, optionally refine it, call the image model, and
// record the outcome on the session. The loading gate means a second request
// for the same session gets 409 until the first settles.
func (h *SessionHandler) Generate(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	if s.ImageCount() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload at least one image."})
		return
	}

	if err := s.BeginGeneration(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	form, images := s.Snapshot()
	prompt := composer.Compose(form, s.SelectedStyles(), s.SelectedSize())

	// Best-effort refinement: a failing enhancer logs and falls back to the
	// composed prompt, never blocking the collage.
	if h.enhancer != nil {
		if refined, err := h.enhancer.Refine(c.Request.Context(), prompt); err == nil {
			prompt = refined
		} else {
			h.logger.Warn("prompt refinement failed, using composed prompt", zap.Error(err))
		}
	}

	parts := make([]generation.ImagePart, 0, len(images))
	for _, img := range images {
		parts = append(parts, generation.ImagePart{
			MimeType: img.MimeType,
			Data:     img.Base64(),
		})
	}

	start := time.Now()
	result, err := h.generator.GenerateCollage(c.Request.Context(), prompt, parts)
	h.recordCall(c, len(parts), len(prompt), err, time.Since(start).Milliseconds())

	if err != nil {
		msg := errorMessage(err)
		s.FailGeneration(msg)
		h.logger.Warn("session generation failed",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	uri := result.DataURI()
	s.CompleteGeneration(uri)
	c.JSON(http.StatusOK, gin.H{"imageData": uri})
}

// Result handles GET /api/v1/sessions/:id/result, returning the tagged
// request state for polling clients.
func (h *SessionHandler) Result(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	c.JSON(http.StatusOK, s.State())
}

// ResultFile handles GET /api/v1/sessions/:id/result/file: re-encode the
// generated image as JPEG and serve it as a download named after the call
// name. A render failure here leaves the displayed result untouched.
func (h *SessionHandler) ResultFile(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	state := s.State()
	if state.Phase != session.PhaseReady {
		c.JSON(http.StatusNotFound, gin.H{"error": "no generated collage to save"})
		return
	}

	data, err := export.ToJPEG(state.ImageData)
	if err != nil {
		h.logger.Error("rendering result for download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not render the generated image for saving."})
		return
	}

	form, _ := s.Snapshot()
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(form.CallName)+`"`)
	c.Data(http.StatusOK, "image/jpeg", data)
}

// session resolves the :id parameter, writing a 404 and returning nil when
// the session does not exist (or has been swept).
func (h *SessionHandler) session(c *gin.Context) *session.Session {
	s := h.store.Get(c.Param("id"))
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil
	}
	return s
}

func (h *SessionHandler) recordCall(c *gin.Context, imageCount, promptChars int, callErr error, durationMs int64) {
	call := &model.ProviderCall{
		Kind:        model.CallGenerate,
		Provider:    h.generator.ProviderName(),
		Model:       h.generator.ModelName(),
		ImageCount:  imageCount,
		PromptChars: promptChars,
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
