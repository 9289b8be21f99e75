// Package catalog holds the static style and size catalogs. Tags are fixed at
// process start and not user-editable; only selection state lives in a session.
package catalog

// StyleTag is a selectable artistic treatment. Description is the text that
// gets injected into the composed prompt when the style is selected.
type StyleTag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SizeTag is a selectable output format. PromptText is copied verbatim into
// the prompt's orientation directive.
type SizeTag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PromptText string `json:"prompt_text"`
}

// Styles is the full style catalog, in display order. Multi-select.
var Styles = []StyleTag{
	{ID: "silhouette", Name: "Silhouette", Description: "Incorporate dramatic silhouettes of the main subject against a stylized background."},
	{ID: "grunge", Name: "Grunge", Description: "Apply a gritty, textured grunge overlay for a raw, edgy feel."},
	{ID: "smoke", Name: "Smoke Overlay", Description: "Add ethereal smoke or fog effects to create depth and mystery."},
	{ID: "spotlight", Name: "Focused Spotlight", Description: "Use a focused spotlight effect to draw attention to the main subject."},
	{ID: "shadows", Name: "Text Shadows", Description: "Cast long, dramatic shadows from the text to integrate it with the background."},
	{ID: "vibrant", Name: "Vibrant Colors", Description: "Use a bold, vibrant color palette to make the image pop."},
}

// Sizes is the full size catalog, in display order. Exactly one is selected
// at all times.
var Sizes = []SizeTag{
	{ID: "8.5x11-portrait", Name: `8.5" x 11" (Portrait)`, PromptText: "Orientation: Portrait. Aspect Ratio: 8.5:11. The image MUST be taller than it is wide. Do NOT generate a landscape image."},
	{ID: "11x8.5-landscape", Name: `11" x 8.5" (Landscape)`, PromptText: "Orientation: Landscape. Aspect Ratio: 11:8.5. The image MUST be wider than it is tall. Do NOT generate a portrait image."},
	{ID: "5x7-portrait", Name: `5" x 7" (Portrait)`, PromptText: "Orientation: Portrait. Aspect Ratio: 5:7. The image MUST be taller than it is wide. Do NOT generate a landscape image."},
	{ID: "7x5-landscape", Name: `7" x 5" (Landscape)`, PromptText: "Orientation: Landscape. Aspect Ratio: 7:5. The image MUST be wider than it is tall. Do NOT generate a portrait image."},
}

// StyleByID looks up a style tag. The second return value follows the
// "comma ok" idiom used by map lookups.
func StyleByID(id string) (StyleTag, bool) {
	for _, s := range Styles {
		if s.ID == id {
			return s, true
		}
	}
	return StyleTag{}, false
}

// SizeByID looks up a size tag.
func SizeByID(id string) (SizeTag, bool) {
	for _, s := range Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return SizeTag{}, false
}

// DefaultStyleIDs returns the styles pre-selected in a fresh session.
func DefaultStyleIDs() []string {
	return []string{Styles[0].ID, Styles[2].ID}
}

// DefaultSizeID returns the size selected in a fresh session.
func DefaultSizeID() string {
	return Sizes[0].ID
}
