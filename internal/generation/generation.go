// Package generation defines the boundary to the remote generative-image
// model: a prompt plus inline images in, exactly one image out, or a typed
// failure.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential means the server-held API key is not configured.
	// The remote model is never contacted in this case.
	ErrMissingCredential = errors.New("API key not configured")

	// ErrEmptyResult means the remote call succeeded but no content part
	// carried inline image bytes.
	ErrEmptyResult = errors.New("no image was generated")
)

// ImagePart is one photograph in its wire form: a MIME type and raw base64
// with no data-URI header.
type ImagePart struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// CollageImage is the single image a successful generation yields.
type CollageImage struct {
	MimeType string
	Data     []byte
}

// DataURI formats the image for direct rendering: data:<mime>;base64,<payload>.
func (c *CollageImage) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", c.MimeType, base64.StdEncoding.EncodeToString(c.Data))
}

// Generator is the interface for generative-image backends.
//
// Go interface design tip: keep interfaces small. One generation method plus
// identity accessors for the audit log — that's all callers need, and it
// makes the handler trivially testable with a fake.
type Generator interface {
	GenerateCollage(ctx context.Context, prompt string, images []ImagePart) (*CollageImage, error)
	ProviderName() string
	ModelName() string
}
