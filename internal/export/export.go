// Package export turns a generated result into a downloadable JPEG file:
// decode the data URI, re-encode as JPEG, and derive a filename from the
// dog's call name.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultBaseName is the filename used when no call name was entered.
const DefaultBaseName = "collage"

const jpegQuality = 90

// ErrBadDataURI means the stored result is not a decodable image data URI.
var ErrBadDataURI = errors.New("result is not a decodable image data URI")

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName derives the download name from the call name: whitespace runs
// collapse to underscores, an empty call name falls back to "collage", and
// the extension is always .jpeg.
func FileName(callName string) string {
	base := strings.TrimSpace(callName)
	if base == "" {
		base = DefaultBaseName
	} else {
		base = whitespaceRun.ReplaceAllString(base, "_")
	}
	return base + ".jpeg"
}

// ToJPEG decodes a data URI ("data:<mime>;base64,<payload>") and re-encodes
// the image as JPEG. The source MIME type doesn't matter — whatever the model
// returned (commonly PNG) is normalized here, mirroring the off-screen canvas
// re-encode the browser version did.
func ToJPEG(dataURI string) ([]byte, error) {
	payload, err := payloadOf(dataURI)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// payloadOf strips the data-URI header and base64-decodes the payload.
func payloadOf(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, ErrBadDataURI
	}
	_, b64, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return nil, ErrBadDataURI
	}
	payload, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return payload, nil
}
