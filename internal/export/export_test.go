package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		callName string
		want     string
	}{
		{"simple", "Rex", "Rex.jpeg"},
		{"internal spaces", "Big Red Rex", "Big_Red_Rex.jpeg"},
		{"whitespace run", "Big \t Rex", "Big_Rex.jpeg"},
		{"empty", "", "collage.jpeg"},
		{"only whitespace", "   ", "collage.jpeg"},
		{"leading and trailing", "  Rex  ", "Rex.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.callName); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.callName, got, tt.want)
			}
		})
	}
}

// pngDataURI builds a data URI around a real in-memory PNG.
func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestToJPEG(t *testing.T) {
	jpegBytes, err := ToJPEG(pngDataURI(t))
	if err != nil {
		t.Fatalf("ToJPEG failed: %v", err)
	}

	// The output must be a decodable JPEG with the source dimensions.
	img, format, err := image.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("output format = %s, want jpeg", format)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 30 {
		t.Errorf("output dimensions %dx%d, want 20x30", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestToJPEG_BadInput(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no data prefix", "http://example.com/image.png"},
		{"no base64 marker", "data:image/png,rawbytes"},
		{"invalid base64", "data:image/png;base64,!!!not-base64!!!"},
		{"valid base64, not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToJPEG(tt.uri)
			if !errors.Is(err, ErrBadDataURI) {
				t.Errorf("ToJPEG(%q) error = %v, want ErrBadDataURI", tt.uri, err)
			}
		})
	}
}

func TestToJPEG_AcceptsJPEGSource(t *testing.T) {
	// The model may return JPEG instead of PNG; the exporter should not care.
	img := imaging.New(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	out, err := ToJPEG(uri)
	if err != nil {
		t.Fatalf("ToJPEG failed for JPEG source: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty output")
	}
}
