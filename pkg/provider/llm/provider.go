// Package llm defines the Provider interface for text-completion backends.
//
// A completion provider wraps a remote model API (e.g., OpenAI GPT-4o-mini or
// any backend supported by any-llm-go) and exposes a uniform blocking interface
// so the orchestrator and the field extractor can request completions without
// coupling to any specific SDK.
//
// The service performs strictly sequential, single-attempt calls — there is no
// streaming surface and no retry policy at this layer. Implementors must be
// safe for concurrent use.
package llm

import (
	"context"

	"github.com/littlejunkers/leadchat/pkg/types"
)

// Usage holds token accounting information returned by the model backend.
// All counts are in the model's native token unit and may differ between
// providers for the same textual content.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens. Some providers return it
	// directly rather than computing it from the parts.
	TotalTokens int
}

// CompletionRequest carries everything the model needs to produce a response.
// Callers should treat a zero-value request as invalid; at minimum Messages
// must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation history. Ordering is significant:
	// system-role entries placed before the transcript bias the completion and
	// take precedence over transcript recency.
	Messages []types.Message

	// SystemPrompt is an optional high-priority instruction injected before the
	// conversation history. Providers that do not natively support a dedicated
	// system prompt should prepend it as a "system"-role message.
	SystemPrompt string

	// Temperature controls output randomness in the range [0.0, 2.0]. The
	// conversational path uses a moderate value; the structured field-extraction
	// path uses 0.0 for deterministic output.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the model's reply. May be empty; callers are
	// expected to substitute a fallback rather than treat this as an error.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any completion backend.
//
// Implementations must be safe for concurrent use from multiple goroutines and
// must propagate context cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// It is a single-attempt call: implementations must not retry internally.
	// Returns an error if the request fails or ctx is cancelled before the
	// completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
