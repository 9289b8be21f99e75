package session

import (
	"errors"
	"testing"

	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

func TestNew_Defaults(t *testing.T) {
	s := New()

	if s.ID == "" {
		t.Error("expected a non-empty session ID")
	}

	// Fresh sessions come with the pre-selected styles and the first size.
	styles := s.SelectedStyles()
	if len(styles) != 2 {
		t.Fatalf("expected 2 default styles, got %d", len(styles))
	}
	if styles[0].ID != "silhouette" || styles[1].ID != "smoke" {
		t.Errorf("unexpected default styles: %s, %s", styles[0].ID, styles[1].ID)
	}
	if got := s.SelectedSize().ID; got != "8.5x11-portrait" {
		t.Errorf("expected default size 8.5x11-portrait, got %s", got)
	}

	// Four empty stat rows with the standard labels.
	wantLabels := []string{"DOB", "Hips", "Eyes", "OFA"}
	if len(s.Stats) != len(wantLabels) {
		t.Fatalf("expected %d default stats, got %d", len(wantLabels), len(s.Stats))
	}
	for i, want := range wantLabels {
		if s.Stats[i].Label != want {
			t.Errorf("stat %d: label = %q, want %q", i, s.Stats[i].Label, want)
		}
		if s.Stats[i].Value != "" {
			t.Errorf("stat %d: expected empty value, got %q", i, s.Stats[i].Value)
		}
		if s.Stats[i].ID == "" {
			t.Errorf("stat %d: expected a non-empty ID", i)
		}
	}

	if got := s.State().Phase; got != PhaseIdle {
		t.Errorf("expected fresh session phase idle, got %s", got)
	}
}

func TestApply_PartialUpdate(t *testing.T) {
	s := New()
	name := "Rex"
	s.Apply(FormUpdate{CallName: &name})

	if s.CallName != "Rex" {
		t.Errorf("call name = %q, want Rex", s.CallName)
	}
	// Fields not present in the update stay untouched.
	if s.RegisteredName != "" {
		t.Errorf("registered name should be untouched, got %q", s.RegisteredName)
	}

	// An explicit empty string clears the field — distinct from "not sent".
	empty := ""
	s.Apply(FormUpdate{CallName: &empty})
	if s.CallName != "" {
		t.Errorf("expected cleared call name, got %q", s.CallName)
	}
}

func TestStats_AddUpdateRemove(t *testing.T) {
	s := New()
	base := len(s.Stats)

	entry := s.AddStat()
	if entry.ID == "" {
		t.Fatal("expected new stat to have an ID")
	}
	if len(s.Stats) != base+1 {
		t.Fatalf("expected %d stats after add, got %d", base+1, len(s.Stats))
	}

	label, value := "Weight", "30kg"
	if !s.UpdateStat(entry.ID, &label, &value) {
		t.Fatal("UpdateStat returned false for an existing entry")
	}
	last := s.Stats[len(s.Stats)-1]
	if last.Label != "Weight" || last.Value != "30kg" {
		t.Errorf("updated stat = %+v, want Weight/30kg", last)
	}

	// Updating only the value leaves the label alone.
	newValue := "31kg"
	s.UpdateStat(entry.ID, nil, &newValue)
	last = s.Stats[len(s.Stats)-1]
	if last.Label != "Weight" || last.Value != "31kg" {
		t.Errorf("partial update wrong: %+v", last)
	}

	if s.UpdateStat("missing", &label, nil) {
		t.Error("UpdateStat returned true for an unknown id")
	}

	// Removing preserves the order of the remaining entries.
	second := s.Stats[1].ID
	if !s.RemoveStat(second) {
		t.Fatal("RemoveStat returned false for an existing entry")
	}
	if len(s.Stats) != base {
		t.Fatalf("expected %d stats after remove, got %d", base, len(s.Stats))
	}
	if s.Stats[0].Label != "DOB" || s.Stats[1].Label != "Eyes" {
		t.Errorf("removal reordered remaining stats: %v", s.Stats)
	}
	if s.RemoveStat(second) {
		t.Error("RemoveStat returned true for an already-removed id")
	}
}

func TestToggleStyle(t *testing.T) {
	s := New()

	// Toggling an unselected style adds it.
	if err := s.ToggleStyle("grunge"); err != nil {
		t.Fatalf("ToggleStyle failed: %v", err)
	}
	if !hasStyle(s, "grunge") {
		t.Error("grunge should be selected after toggle")
	}

	// Toggling again removes it.
	if err := s.ToggleStyle("grunge"); err != nil {
		t.Fatalf("ToggleStyle failed: %v", err)
	}
	if hasStyle(s, "grunge") {
		t.Error("grunge should be deselected after second toggle")
	}

	// Zero selected styles is allowed.
	for _, tag := range s.SelectedStyles() {
		if err := s.ToggleStyle(tag.ID); err != nil {
			t.Fatalf("ToggleStyle failed: %v", err)
		}
	}
	if got := len(s.SelectedStyles()); got != 0 {
		t.Errorf("expected 0 selected styles, got %d", got)
	}

	if err := s.ToggleStyle("nope"); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("expected ErrUnknownTag for bogus style, got %v", err)
	}
}

func TestSelectedStyles_CatalogOrder(t *testing.T) {
	s := New()
	// Select in reverse catalog order; enumeration must still follow the catalog.
	for i := len(catalog.Styles) - 1; i >= 0; i-- {
		id := catalog.Styles[i].ID
		if !hasStyle(s, id) {
			if err := s.ToggleStyle(id); err != nil {
				t.Fatalf("ToggleStyle(%s): %v", id, err)
			}
		}
	}

	selected := s.SelectedStyles()
	if len(selected) != len(catalog.Styles) {
		t.Fatalf("expected all %d styles selected, got %d", len(catalog.Styles), len(selected))
	}
	for i, tag := range selected {
		if tag.ID != catalog.Styles[i].ID {
			t.Errorf("position %d: got %s, want %s", i, tag.ID, catalog.Styles[i].ID)
		}
	}
}

func TestSelectSize_Exclusive(t *testing.T) {
	s := New()

	if err := s.SelectSize("7x5-landscape"); err != nil {
		t.Fatalf("SelectSize failed: %v", err)
	}
	if got := s.SelectedSize().ID; got != "7x5-landscape" {
		t.Errorf("selected size = %s, want 7x5-landscape", got)
	}

	// Selecting another size replaces the first; there is never zero or two.
	if err := s.SelectSize("5x7-portrait"); err != nil {
		t.Fatalf("SelectSize failed: %v", err)
	}
	if got := s.SelectedSize().ID; got != "5x7-portrait" {
		t.Errorf("selected size = %s, want 5x7-portrait", got)
	}

	if err := s.SelectSize("a0-poster"); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("expected ErrUnknownTag for bogus size, got %v", err)
	}
}

func TestImages_AddRemove(t *testing.T) {
	s := New()
	a := &model.ImageAsset{ID: "a", FileName: "a.jpg"}
	b := &model.ImageAsset{ID: "b", FileName: "b.jpg"}
	c := &model.ImageAsset{ID: "c", FileName: "c.jpg"}

	s.AddImages([]*model.ImageAsset{a, b})
	// A second upload is additive.
	s.AddImages([]*model.ImageAsset{c})
	if got := s.ImageCount(); got != 3 {
		t.Fatalf("expected 3 images, got %d", got)
	}

	if got := s.ImageAt(1); got != b {
		t.Errorf("ImageAt(1) = %v, want b", got)
	}
	if got := s.ImageAt(3); got != nil {
		t.Errorf("ImageAt out of range should be nil, got %v", got)
	}
	if got := s.ImageAt(-1); got != nil {
		t.Errorf("ImageAt(-1) should be nil, got %v", got)
	}

	if !s.RemoveImage(1) {
		t.Fatal("RemoveImage(1) returned false")
	}
	// Remaining images keep their relative order.
	if s.ImageAt(0) != a || s.ImageAt(1) != c {
		t.Error("removal reordered remaining images")
	}
	if s.RemoveImage(5) {
		t.Error("RemoveImage out of range should return false")
	}
}

func TestGeneration_Lifecycle(t *testing.T) {
	s := New()

	if err := s.BeginGeneration(); err != nil {
		t.Fatalf("BeginGeneration failed: %v", err)
	}
	if got := s.State().Phase; got != PhaseLoading {
		t.Errorf("phase = %s, want loading", got)
	}

	// The gate: no second request while one is pending.
	if err := s.BeginGeneration(); !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("expected ErrGenerationInFlight, got %v", err)
	}

	s.CompleteGeneration("data:image/png;base64,AAA=")
	state := s.State()
	if state.Phase != PhaseReady {
		t.Fatalf("phase = %s, want ready", state.Phase)
	}
	if state.ImageData != "data:image/png;base64,AAA=" {
		t.Errorf("image data = %q", state.ImageData)
	}
	if state.Error != "" {
		t.Errorf("ready state must carry no error, got %q", state.Error)
	}

	// A new attempt clears the previous result.
	if err := s.BeginGeneration(); err != nil {
		t.Fatalf("BeginGeneration after success failed: %v", err)
	}
	state = s.State()
	if state.ImageData != "" {
		t.Error("starting a new attempt must clear the previous result")
	}

	s.FailGeneration("boom")
	state = s.State()
	if state.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want failed", state.Phase)
	}
	if state.Error != "boom" {
		t.Errorf("error = %q, want boom", state.Error)
	}
	if state.ImageData != "" {
		t.Errorf("failed state must carry no image data, got %q", state.ImageData)
	}

	// Failure does not block the next attempt.
	if err := s.BeginGeneration(); err != nil {
		t.Errorf("BeginGeneration after failure failed: %v", err)
	}
}

func TestSnapshot_Isolated(t *testing.T) {
	s := New()
	name := "Rex"
	s.Apply(FormUpdate{CallName: &name})
	s.AddImages([]*model.ImageAsset{{ID: "a"}})

	form, images := s.Snapshot()
	if form.CallName != "Rex" {
		t.Errorf("snapshot call name = %q", form.CallName)
	}
	if len(images) != 1 {
		t.Fatalf("snapshot images = %d, want 1", len(images))
	}

	// Mutating the session afterwards must not affect the snapshot slices.
	s.AddImages([]*model.ImageAsset{{ID: "b"}})
	s.AddStat()
	if len(images) != 1 {
		t.Error("snapshot image slice aliases live session state")
	}
	if len(form.Stats) != 4 {
		t.Errorf("snapshot stats = %d, want 4", len(form.Stats))
	}
}

func hasStyle(s *Session, id string) bool {
	for _, tag := range s.SelectedStyles() {
		if tag.ID == id {
			return true
		}
	}
	return false
}
