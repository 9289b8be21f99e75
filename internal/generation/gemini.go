package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/config"
)

// GeminiGenerator talks to the Gemini generateContent REST API directly.
// The official Go SDK does not expose responseModalities, which is required
// to get image output from the image models, so the request and response
// bodies are modeled by hand.
type GeminiGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeminiGenerator creates the generator. An empty API key is allowed at
// construction time; the credential is checked per request so its absence is
// a request-scoped failure, not a startup crash.
func NewGeminiGenerator(cfg config.GeminiConfig, logger *zap.Logger) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			// Image generation is slow; the transport timeout is the only
			// timeout in this design.
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (g *GeminiGenerator) ProviderName() string { return "gemini" }
func (g *GeminiGenerator) ModelName() string    { return g.model }

// Wire types for the generateContent call. Field names follow the REST API's
// camelCase JSON.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCollage sends the prompt as a text part and each image as inline
// data, requesting image-modality output, and returns the first content part
// carrying inline image bytes.
func (g *GeminiGenerator) GenerateCollage(ctx context.Context, prompt string, images []ImagePart) (*CollageImage, error) {
	if g.apiKey == "" {
		return nil, ErrMissingCredential
	}

	parts := make([]geminiPart, 0, len(images)+1)
	parts = append(parts, geminiPart{Text: prompt})
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: img.MimeType,
				Data:     img.Data,
			},
		})
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini: HTTP %d", resp.StatusCode)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parsing gemini response: %w", err)
	}

	g.logger.Debug("gemini call completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("candidates", len(out.Candidates)),
	)

	// Scan content parts in order; the first one exposing inline image bytes
	// wins. Text parts (the model sometimes narrates) are skipped.
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding image payload: %w", err)
			}
			return &CollageImage{
				MimeType: part.InlineData.MimeType,
				Data:     data,
			}, nil
		}
	}

	return nil, ErrEmptyResult
}

var _ Generator = (*GeminiGenerator)(nil)
