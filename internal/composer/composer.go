// Package composer builds the natural-language instruction sent to the
// generative model. Compose is a pure function: no side effects, and identical
// inputs always yield an identical string — handlers and the CLI both rely on
// that determinism.
package composer

import (
	"strings"

	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

// Form is the snapshot of user-entered text the composer consumes. It is a
// value type on purpose: the composer never mutates (or holds onto) session
// state.
type Form struct {
	CallName       string
	RegisteredName string
	PreTitles      string
	PostTitles     string
	Breeder        string
	Owner          string
	Stats          []model.StatEntry
}

// Compose renders the full prompt. Structure, in fixed order: orientation
// directive (verbatim size text), scene objective, content-integrity rules,
// text layout, information block, styles sentence, compositional guidelines.
//
// Conditional lines: pre/post titles appear only when non-empty; breeder and
// owner appear only when individually non-empty; a stat appears only when both
// its label and value are non-empty. The whole information block is omitted —
// not rendered as an empty header — when nothing qualifies.
func Compose(form Form, styles []catalog.StyleTag, size catalog.SizeTag) string {
	var b strings.Builder

	b.WriteString("IMAGE SHAPE AND ORIENTATION (ABSOLUTE COMMAND):\n")
	b.WriteString(size.PromptText)
	b.WriteString("\nThis is the most important instruction. Failure to follow this specific orientation and aspect ratio will result in a failed generation. It is not a suggestion.\n\n")

	b.WriteString("Create a dynamic and professional collage suitable for a dog breeder's advertisement or an athlete's poster.\n\n")

	b.WriteString("Objective:\n")
	b.WriteString("Seamlessly meld the provided images into a single, cohesive artwork. Use advanced masking and blending techniques to create a smooth, unified composition without hard edges between images.\n\n")

	b.WriteString("Image Content Integrity (CRITICAL RULE):\n")
	b.WriteString("- You MUST only use the visual information present in the provided images.\n")
	b.WriteString("- You are permitted to mask, cut out, and blend parts of the images to create the collage.\n")
	b.WriteString("- You are STRICTLY PROHIBITED from altering the physical structure, conformation, or appearance of the dogs. Do not change their body shape, add or remove features, or modify them in any way that would misrepresent the animal. The dogs must look exactly as they do in the photos.\n\n")

	b.WriteString("Text Layout and Styling (VERY IMPORTANT - follow this structure precisely):\n")
	b.WriteString(`- Call Name (Most Prominent): "` + form.CallName + "\"\n")
	b.WriteString("  - Font: Use a large, bold, flashy, high-impact display font (e.g., Anton, Bebas Neue).\n")
	b.WriteString("  - Placement: This is the main textual focus. Make it the largest and most eye-catching text element on the collage.\n")
	b.WriteString("- Registered Name Group (This group should be less prominent and visually distinct from the Call Name):\n")
	if form.PreTitles != "" {
		b.WriteString(`  - Pre-Titles: "` + form.PreTitles + "\"\n")
		b.WriteString("    - Font: Use a small, elegant serif font (e.g., Lora, Times New Roman).\n")
	}
	b.WriteString(`  - Registered Name: "` + form.RegisteredName + "\"\n")
	b.WriteString("    - Font: Use a clean, modern sans-serif font (e.g., Inter, Helvetica). This should be larger than the titles, but significantly smaller than the Call Name.\n")
	if form.PostTitles != "" {
		b.WriteString(`  - Post-Titles: "` + form.PostTitles + "\"\n")
		b.WriteString("    - Font: Use the same small, elegant serif font as the Pre-Titles.\n")
	}
	b.WriteString("\n")

	if info := infoBlock(form); info != "" {
		b.WriteString(info)
		b.WriteString("\n")
	}

	b.WriteString("Artistic Styles to Apply:\n")
	b.WriteString("Incorporate the following styles: " + styleDescriptions(styles) + ". The overall mood should be dramatic and powerful.\n\n")

	b.WriteString("Compositional Guidelines:\n")
	b.WriteString("- The main subject(s) from the images should be the focal point.\n")
	b.WriteString("- Ensure all text is legible and artistically integrated into the design, including dramatic shadows or glows on the text to make it pop.\n")
	b.WriteString("- The final output must be a single, complete image.\n")

	return b.String()
}

// infoBlock renders breeder, owner, and the qualifying stats. Returns the
// empty string when no field qualifies, so the caller can skip the block
// entirely instead of emitting a header with no body.
func infoBlock(form Form) string {
	var lines []string
	if form.Breeder != "" {
		lines = append(lines, `- Breeder: "`+form.Breeder+`"`)
	}
	if form.Owner != "" {
		lines = append(lines, `- Owner: "`+form.Owner+`"`)
	}
	for _, stat := range form.Stats {
		if stat.Filled() {
			lines = append(lines, "- "+stat.Label+": "+stat.Value)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Additional Information Block (IMPORTANT):\n")
	b.WriteString("- Create a distinct, well-organized block of text for the following details. This block should be legible but significantly less prominent than the names. Use a clean, simple sans-serif font. Arrange it neatly, possibly in columns if space allows.\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(`- IMPORTANT RULE: For "Breeder", "Owner", and any other stats, ONLY display the label and content if text has been provided for them. If a field is empty (e.g., no breeder name was given), DO NOT include its label or any placeholder on the final image.` + "\n")
	return b.String()
}

// styleDescriptions comma-joins the descriptive text of the selected styles.
// Zero selected styles yields the empty string; the composer does not
// special-case that (downstream model behavior is the model's business).
func styleDescriptions(styles []catalog.StyleTag) string {
	descs := make([]string, 0, len(styles))
	for _, s := range styles {
		descs = append(descs, s.Description)
	}
	return strings.Join(descs, ", ")
}
