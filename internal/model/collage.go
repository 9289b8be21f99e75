// Package model defines the core data types for the collage generator.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import (
	"encoding/base64"
	"time"
)

// ImageAsset is one user-supplied photograph after ingestion: decoded,
// downsampled so neither dimension exceeds the configured maximum, and
// re-encoded as JPEG regardless of the source format. Data is both the
// preview (served back to the browser) and the transmitted payload.
type ImageAsset struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	SourceType string `json:"source_type"` // MIME type of the original upload
	MimeType   string `json:"mime_type"`   // always image/jpeg after normalization
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Data       []byte `json:"-"` // normalized JPEG bytes, not serialized in session views
}

// Base64 returns the transmitted form of the payload: raw base64 with no
// data-URI header.
func (a *ImageAsset) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// StatEntry is a free-form label/value pair ("DOB: 2021-03-04", "Hips: Good").
// Entries with an empty label or value stay in the collection but are excluded
// from prompt composition.
type StatEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Filled reports whether the entry qualifies for the prompt's information block.
func (s StatEntry) Filled() bool {
	return s.Label != "" && s.Value != ""
}

// CallKind distinguishes the two kinds of remote calls we audit.
type CallKind string

const (
	CallGenerate CallKind = "generate"
	CallEnhance  CallKind = "enhance"
)

// ProviderCall tracks each call to a remote model for cost monitoring.
// Each field has two tags:
//   - `db:"column_name"` — used by sqlx to scan database rows
//   - `json:"field_name"` — used for JSON serialization
type ProviderCall struct {
	ID           int64     `db:"id" json:"id"`
	Kind         CallKind  `db:"kind" json:"kind"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	ImageCount   int       `db:"image_count" json:"image_count"`
	PromptChars  int       `db:"prompt_chars" json:"prompt_chars"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	DurationMs   *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
