package llm

import (
	"context"
)

// Completer sends one prompt to a hosted model and returns its raw output.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// Completion is the unprocessed model output.
type Completion struct {
	// Text may contain prose or code fences around the JSON payload.
	Text string
	// Chunks holds grounding metadata in provider order. Nil when the provider
	// returned none.
	Chunks []GroundingChunk
	Model  string
}

// GroundingChunk is one citation record from search grounding. Web is nil for
// non-web chunks such as retrieved documents or map results.
type GroundingChunk struct {
	Kind string
	Web  *WebSource
}

// WebSource is a web page the model consulted.
type WebSource struct {
	Title string
	URI   string
}

// MissingKeyMessage is reported when no provider credential is configured.
const MissingKeyMessage = "INTERNAL_CONFIG_ERROR: API_KEY is missing. Please ensure it is set in your environment variables."

// UnconfiguredClient stands in for a provider client when no credential is set.
type UnconfiguredClient struct{}

// Complete always fails with a CONFIG_ERROR.
func (UnconfiguredClient) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	_ = ctx
	_ = prompt
	return Completion{}, NewError(KindConfig, MissingKeyMessage, nil)
}
