package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/config"
	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/ingest"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
	"github.com/Chrojoh/dog-collage-generator/internal/session"
)

type stubGenerator struct{}

func (stubGenerator) GenerateCollage(ctx context.Context, prompt string, images []generation.ImagePart) (*generation.CollageImage, error) {
	return &generation.CollageImage{MimeType: "image/png", Data: []byte{1}}, nil
}
func (stubGenerator) ProviderName() string { return "stub" }
func (stubGenerator) ModelName() string    { return "stub" }

type stubCallRepo struct{}

func (stubCallRepo) Create(ctx context.Context, call *model.ProviderCall) error { return nil }
func (stubCallRepo) Count(ctx context.Context, kind model.CallKind) (int64, error) {
	return 0, nil
}
func (stubCallRepo) CountFailed(ctx context.Context, kind model.CallKind) (int64, error) {
	return 0, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.MaxBodyMB = 10
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100

	logger := zap.NewNop()
	r := gin.New()
	RegisterRoutes(r, cfg, Deps{
		Store:     session.NewStore(time.Hour, logger),
		Ingestor:  ingest.New(1200, 85, logger),
		Generator: stubGenerator{},
		Calls:     stubCallRepo{},
	}, logger)
	return r
}

func TestRoutes_Healthz(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("healthz: status = %d, want 200", w.Code)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	router := testRouter(t)

	// Wrong method on a registered path must get 405, not 404.
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/generate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /api/generate: status = %d, want 405", method, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["error"] != "Method not allowed" {
			t.Errorf("error = %q, want \"Method not allowed\"", body["error"])
		}
	}
}

func TestRoutes_Catalog(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("catalog: status = %d, want 200", w.Code)
	}

	var body struct {
		Styles []struct {
			ID string `json:"id"`
		} `json:"styles"`
		Sizes []struct {
			ID string `json:"id"`
		} `json:"sizes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding catalog: %v", err)
	}
	if len(body.Styles) != 6 {
		t.Errorf("styles = %d, want 6", len(body.Styles))
	}
	if len(body.Sizes) != 4 {
		t.Errorf("sizes = %d, want 4", len(body.Sizes))
	}
}

func TestRoutes_GenerateBodyLimit(t *testing.T) {
	router := testRouter(t)

	// A declared body over the configured cap is rejected before the handler.
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = 11 << 20
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize generate: status = %d, want 413", w.Code)
	}
}

func TestRoutes_AdminStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.MaxBodyMB = 10
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100
	cfg.Admin.APIKeys = []string{"secret"}

	logger := zap.NewNop()
	router := gin.New()
	RegisterRoutes(router, cfg, Deps{
		Store:     session.NewStore(time.Hour, logger),
		Ingestor:  ingest.New(1200, 85, logger),
		Generator: stubGenerator{},
		Calls:     stubCallRepo{},
	}, logger)

	// No key: rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("admin stats without key: status = %d, want 401", w.Code)
	}

	// Valid key: counters come back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin stats: status = %d, want 200", w.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if _, ok := body["generation_calls"]; !ok {
		t.Errorf("stats body missing generation_calls: %v", body)
	}
}

func TestRoutes_AdminDisabledWithoutKeys(t *testing.T) {
	router := testRouter(t) // no admin keys configured

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("admin stats with admin disabled: status = %d, want 404", w.Code)
	}
}

func TestRoutes_SessionFlow(t *testing.T) {
	router := testRouter(t)

	// End-to-end through the real route table: create, read, delete.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d, want 201", w.Code)
	}

	var view session.View
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding session: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+view.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get session: status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+view.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete session: status = %d, want 204", w.Code)
	}
}
