package session

import (
	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

// View is the JSON shape handlers return for a session. Image bytes are not
// included — previews are served from their own endpoint.
type View struct {
	ID             string            `json:"id"`
	CallName       string            `json:"call_name"`
	RegisteredName string            `json:"registered_name"`
	PreTitles      string            `json:"pre_titles"`
	PostTitles     string            `json:"post_titles"`
	Breeder        string            `json:"breeder"`
	Owner          string            `json:"owner"`
	Stats          []model.StatEntry `json:"stats"`
	Images         []ImageView       `json:"images"`
	StyleIDs       []string          `json:"style_ids"`
	SizeID         string            `json:"size_id"`
	State          RequestState      `json:"state"`
}

// ImageView is the metadata of one ingested asset.
type ImageView struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// View snapshots the whole session under one lock acquisition.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]ImageView, 0, len(s.Images))
	for _, img := range s.Images {
		images = append(images, ImageView{
			ID:       img.ID,
			FileName: img.FileName,
			MimeType: img.MimeType,
			Width:    img.Width,
			Height:   img.Height,
		})
	}

	// Selection in catalog order, matching what the composer will see.
	styleIDs := make([]string, 0, len(s.styleIDs))
	for _, tag := range catalog.Styles {
		if _, ok := s.styleIDs[tag.ID]; ok {
			styleIDs = append(styleIDs, tag.ID)
		}
	}

	return View{
		ID:             s.ID,
		CallName:       s.CallName,
		RegisteredName: s.RegisteredName,
		PreTitles:      s.PreTitles,
		PostTitles:     s.PostTitles,
		Breeder:        s.Breeder,
		Owner:          s.Owner,
		Stats:          append([]model.StatEntry(nil), s.Stats...),
		Images:         images,
		StyleIDs:       styleIDs,
		SizeID:         s.sizeID,
		State:          s.state,
	}
}
