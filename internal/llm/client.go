// Package llm provides a provider-agnostic interface for using LLMs to refine
// the composed collage prompt before it is sent to the image model. Refinement
// is best-effort polish: the structural constraints and every quoted name must
// survive verbatim.
package llm

import "context"

// Client is the interface for LLM providers that can refine prompts.
// Both Anthropic (Claude) and OpenAI implement this interface, allowing
// the enhancer to fall back from one to the other.
//
// Go interface design tip: keep interfaces small. This has one method —
// that's ideal. Go proverb: "The bigger the interface, the weaker the
// abstraction."
type Client interface {
	RefinePrompt(ctx context.Context, prompt string) (string, error)
	ProviderName() string
	ModelName() string
}

// refineInstructions frames the task for either provider. The hard
// requirements mirror what the image model is told downstream: quoted text is
// untouchable and the orientation directive stays first.
const refineInstructions = `You are an expert at writing prompts for generative image models.
Rewrite the prompt below to be clearer and more effective for an image model, under these hard requirements:
- Keep every piece of quoted text (names, titles, stats) EXACTLY as written, character for character.
- Keep the orientation and aspect-ratio directive as the first instruction, unchanged in meaning.
- Keep all content-integrity rules: the depicted dogs must not be altered.
- Do not add new factual claims about the dog.
- Return ONLY the rewritten prompt, with no commentary before or after.

Prompt to rewrite:

`
