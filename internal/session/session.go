// Package session owns the per-user form state: text fields, stat entries,
// ingested images, style/size selections, and the state of the current
// generation request. All of it lives in memory for the lifetime of one
// session — nothing is persisted.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
	"github.com/Chrojoh/dog-collage-generator/internal/composer"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

var (
	// ErrGenerationInFlight gates the generate action: a second invocation
	// cannot start while one is pending.
	ErrGenerationInFlight = errors.New("a generation request is already in flight")

	// ErrUnknownTag is returned for style/size ids not present in the catalog.
	ErrUnknownTag = errors.New("unknown catalog tag")
)

// Phase enumerates the mutually exclusive display states. The session is
// always in exactly one of them — there is no way to be loading and failed at
// the same time, because Phase is a single value rather than a pile of
// independent flags.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// RequestState is a tagged variant: Phase selects which payload field is
// meaningful. ImageData is set only when ready; Error only when failed.
type RequestState struct {
	Phase     Phase  `json:"phase"`
	ImageData string `json:"image_data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Session is the aggregate the original UI scattered across independent
// mutable cells. All mutation goes through methods holding the session mutex;
// handlers never touch fields directly.
type Session struct {
	mu sync.Mutex

	ID         string
	LastActive time.Time

	CallName       string
	RegisteredName string
	PreTitles      string
	PostTitles     string
	Breeder        string
	Owner          string
	Stats          []model.StatEntry

	Images []*model.ImageAsset

	styleIDs map[string]struct{}
	sizeID   string

	state RequestState
}

// New creates a session with the same defaults a fresh page load had: two
// styles pre-selected, the first size selected, and four empty stat rows.
func New() *Session {
	s := &Session{
		ID:         uuid.NewString(),
		LastActive: time.Now(),
		styleIDs:   make(map[string]struct{}),
		sizeID:     catalog.DefaultSizeID(),
		state:      RequestState{Phase: PhaseIdle},
	}
	for _, id := range catalog.DefaultStyleIDs() {
		s.styleIDs[id] = struct{}{}
	}
	for _, label := range []string{"DOB", "Hips", "Eyes", "OFA"} {
		s.Stats = append(s.Stats, model.StatEntry{ID: uuid.NewString(), Label: label})
	}
	return s
}

// FormUpdate carries partial text-field edits. Pointer fields distinguish
// "not sent" (nil) from "set to empty" — the standard PATCH idiom.
type FormUpdate struct {
	CallName       *string `json:"call_name"`
	RegisteredName *string `json:"registered_name"`
	PreTitles      *string `json:"pre_titles"`
	PostTitles     *string `json:"post_titles"`
	Breeder        *string `json:"breeder"`
	Owner          *string `json:"owner"`
}

// Apply merges a partial update into the form fields.
func (s *Session) Apply(u FormUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if u.CallName != nil {
		s.CallName = *u.CallName
	}
	if u.RegisteredName != nil {
		s.RegisteredName = *u.RegisteredName
	}
	if u.PreTitles != nil {
		s.PreTitles = *u.PreTitles
	}
	if u.PostTitles != nil {
		s.PostTitles = *u.PostTitles
	}
	if u.Breeder != nil {
		s.Breeder = *u.Breeder
	}
	if u.Owner != nil {
		s.Owner = *u.Owner
	}
}

// AddStat appends a fresh empty entry and returns it.
func (s *Session) AddStat() model.StatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	entry := model.StatEntry{ID: uuid.NewString()}
	s.Stats = append(s.Stats, entry)
	return entry
}

// UpdateStat edits the entry with the given id in place, preserving order and
// leaving other entries untouched. Returns false if no entry matches.
func (s *Session) UpdateStat(id string, label, value *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for i := range s.Stats {
		if s.Stats[i].ID != id {
			continue
		}
		if label != nil {
			s.Stats[i].Label = *label
		}
		if value != nil {
			s.Stats[i].Value = *value
		}
		return true
	}
	return false
}

// RemoveStat deletes the entry with the given id. Returns false if absent.
func (s *Session) RemoveStat(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for i := range s.Stats {
		if s.Stats[i].ID == id {
			s.Stats = append(s.Stats[:i], s.Stats[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleStyle adds the style to the selection if absent, removes it if
// present. No minimum-selection constraint is enforced.
func (s *Session) ToggleStyle(id string) error {
	if _, ok := catalog.StyleByID(id); !ok {
		return ErrUnknownTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if _, selected := s.styleIDs[id]; selected {
		delete(s.styleIDs, id)
	} else {
		s.styleIDs[id] = struct{}{}
	}
	return nil
}

// SelectSize replaces the current size selection. Exactly one size is
// selected at all times; there is no way to deselect.
func (s *Session) SelectSize(id string) error {
	if _, ok := catalog.SizeByID(id); !ok {
		return ErrUnknownTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.sizeID = id
	return nil
}

// SelectedStyles returns the selected tags in catalog order, which is also
// the order their descriptions are enumerated in the prompt.
func (s *Session) SelectedStyles() []catalog.StyleTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.StyleTag
	for _, tag := range catalog.Styles {
		if _, ok := s.styleIDs[tag.ID]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// SelectedSize returns the single selected size tag.
func (s *Session) SelectedSize() catalog.SizeTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag, _ := catalog.SizeByID(s.sizeID)
	return tag
}

// AddImages appends ingested assets; repeated uploads are additive, never
// replacing what is already there.
func (s *Session) AddImages(assets []*model.ImageAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.Images = append(s.Images, assets...)
}

// ImageAt returns the asset at the given position, or nil when out of range.
func (s *Session) ImageAt(index int) *model.ImageAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.Images) {
		return nil
	}
	return s.Images[index]
}

// RemoveImage drops the asset at the given position without reordering the
// rest. Returns false when the index is out of range. The asset's byte slice
// becomes unreferenced here, which is this design's equivalent of revoking
// the browser's object URL.
func (s *Session) RemoveImage(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if index < 0 || index >= len(s.Images) {
		return false
	}
	s.Images = append(s.Images[:index], s.Images[index+1:]...)
	return true
}

// ImageCount returns how many assets are currently held.
func (s *Session) ImageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Images)
}

// Snapshot copies the form fields and images for composition and transmission
// while holding the lock once, so a concurrent edit cannot tear the request.
func (s *Session) Snapshot() (composer.Form, []*model.ImageAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := composer.Form{
		CallName:       s.CallName,
		RegisteredName: s.RegisteredName,
		PreTitles:      s.PreTitles,
		PostTitles:     s.PostTitles,
		Breeder:        s.Breeder,
		Owner:          s.Owner,
		Stats:          append([]model.StatEntry(nil), s.Stats...),
	}
	images := append([]*model.ImageAsset(nil), s.Images...)
	return form, images
}

// BeginGeneration transitions to loading, clearing any previous result and
// error — the explicit reset at the start of a new attempt. Fails if a
// request is already pending.
func (s *Session) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.state.Phase == PhaseLoading {
		return ErrGenerationInFlight
	}
	s.state = RequestState{Phase: PhaseLoading}
	return nil
}

// CompleteGeneration records a successful result.
func (s *Session) CompleteGeneration(imageDataURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state = RequestState{Phase: PhaseReady, ImageData: imageDataURI}
}

// FailGeneration records a failure. The previous result was already cleared
// by BeginGeneration, so the variant stays consistent.
func (s *Session) FailGeneration(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state = RequestState{Phase: PhaseFailed, Error: message}
}

// State returns the current request state.
func (s *Session) State() RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IdleSince reports the last time the session was touched.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastActive
}

// touch must be called with the mutex held.
func (s *Session) touch() {
	s.LastActive = time.Now()
}
