package resilience

import (
	"context"
	"strings"

	"github.com/littlejunkers/leadchat/pkg/provider/llm"
)

// LLMFallback wraps an ordered set of completion providers behind a
// [FallbackGroup] and exposes them as a single [llm.Provider]. A request is
// answered by the first healthy provider; later providers only see it when
// earlier ones fail. Providers carry no name of their own, so the caller
// supplies one per entry for breaker and log identification.
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback builds a fallback chain with primary tried first.
func NewLLMFallback(primary llm.Provider, primaryName string, cfg FallbackConfig) *LLMFallback {
	return &LLMFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback appends a provider tried after all earlier ones.
func (lf *LLMFallback) AddFallback(name string, p llm.Provider) {
	lf.group.AddFallback(name, p)
}

// Complete implements [llm.Provider].
func (lf *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return ExecuteWithResult(lf.group, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// Name joins the chain's provider names in try order, e.g.
// "extraction>completion".
func (lf *LLMFallback) Name() string {
	return strings.Join(lf.group.Names(), ">")
}
