// Package ingest turns raw file uploads into normalized image assets.
//
// Every accepted file is decoded, downsampled so that neither dimension
// exceeds the configured maximum (aspect ratio preserved), and re-encoded as
// JPEG at a fixed quality. Bounding the payload here keeps a batch of phone
// photos comfortably under the generate endpoint's body limit.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

// Ingestor normalizes uploaded photographs. It uses disintegration/imaging —
// a pure-Go image library, so no C dependencies are needed at build time.
type Ingestor struct {
	maxDim  int
	quality int
	logger  *zap.Logger
}

// New creates an Ingestor. maxDim caps the longest side of the encoded
// payload; quality is the JPEG quality (1-100).
func New(maxDim, quality int, logger *zap.Logger) *Ingestor {
	if maxDim <= 0 {
		maxDim = 1200
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Ingestor{maxDim: maxDim, quality: quality, logger: logger}
}

// Result reports the outcome of one batch: the assets that were accepted,
// plus the names of files that were skipped (non-image type or decode
// failure). A bad file never aborts the rest of the batch — partial success
// beats all-or-nothing for a multi-file picker.
type Result struct {
	Assets  []*model.ImageAsset
	Skipped []string
}

// Batch processes a multipart upload. Files whose declared type does not
// start with "image/" are silently skipped, matching the file picker's
// accept filter.
func (i *Ingestor) Batch(files []*multipart.FileHeader) Result {
	var res Result
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			i.logger.Warn("opening uploaded file",
				zap.String("file", fh.Filename),
				zap.Error(err),
			)
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}

		asset, err := i.File(fh.Filename, contentType, f)
		_ = f.Close()
		if err != nil {
			i.logger.Warn("skipping undecodable file",
				zap.String("file", fh.Filename),
				zap.Error(err),
			)
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		res.Assets = append(res.Assets, asset)
	}
	return res
}

// File normalizes a single image. The caller is responsible for having
// checked the MIME type; File itself only fails on undecodable data.
func (i *Ingestor) File(name, contentType string, r io.Reader) (*model.ImageAsset, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	// Cap the longest side, preserving aspect ratio. Fit only ever shrinks —
	// images already inside the bound pass through untouched.
	bounds := img.Bounds()
	if bounds.Dx() > i.maxDim || bounds.Dy() > i.maxDim {
		img = imaging.Fit(img, i.maxDim, i.maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(i.quality)); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}

	return &model.ImageAsset{
		ID:         uuid.NewString(),
		FileName:   name,
		SourceType: contentType,
		MimeType:   "image/jpeg",
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Data:       buf.Bytes(),
	}, nil
}
