// Package genclient is the client side of the /api/generate contract. The CLI
// uses it to drive a running server, and tests use it against stub servers.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Chrojoh/dog-collage-generator/internal/generation"
)

// Client issues exactly one logical request per Generate call: no retry, no
// backoff. A transport or non-success response is surfaced immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type generateRequest struct {
	Prompt string                 `json:"prompt"`
	Images []generation.ImagePart `json:"images"`
}

type generateResponse struct {
	ImageData string `json:"imageData"`
	Error     string `json:"error"`
}

// Generate posts the prompt and image payloads and returns the generated
// image as a directly renderable data URI. On a non-success response the
// server-provided message is carried in the returned error when present.
func (c *Client) Generate(ctx context.Context, prompt string, images []generation.ImagePart) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt, Images: images})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generate endpoint: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("failed to generate collage: %s", out.Error)
		}
		return "", fmt.Errorf("failed to generate collage (HTTP %d)", resp.StatusCode)
	}

	return out.ImageData, nil
}
