// Package orchestrator turns an analyzed transcript and a routing decision
// into the assistant's reply. It owns the persona prompt, the fixed reply
// texts, the product catalog and the post-processing pipeline around the
// completion provider.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/littlejunkers/leadchat/internal/leadflow"
	"github.com/littlejunkers/leadchat/internal/transcript"
	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	"github.com/littlejunkers/leadchat/pkg/types"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 300
)

// Orchestrator generates replies through a completion provider.
type Orchestrator struct {
	provider    llm.Provider
	persona     Persona
	catalog     Catalog
	replies     Replies
	pipeline    *Pipeline
	prompt      string
	logger      *slog.Logger
	temperature float64
	maxTokens   int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Orchestrator) { o.temperature = t }
}

// WithMaxTokens overrides the completion token cap.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// New builds an orchestrator for the given provider, persona and catalog.
func New(provider llm.Provider, persona Persona, catalog Catalog, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	persona = persona.withDefaults()
	o := &Orchestrator{
		provider:    provider,
		persona:     persona,
		catalog:     catalog,
		replies:     NewReplies(persona, catalog),
		pipeline:    NewPipeline(catalog),
		prompt:      buildSystemPrompt(persona, catalog),
		logger:      logger,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Replies exposes the rendered fixed reply set for the handler.
func (o *Orchestrator) Replies() Replies { return o.replies }

// Generate produces the assistant reply for a Continue decision. Hints from
// the decision are injected as system messages ahead of the transcript, and
// the reply is run through the post-processing pipeline. A provider failure
// is returned to the caller; an empty completion degrades to a fixed
// clarification reply.
func (o *Orchestrator) Generate(ctx context.Context, msgs []types.Message, d leadflow.Decision) (string, error) {
	hints := buildHints(d.Hints)
	req := llm.CompletionRequest{
		Messages:     append(hints, msgs...),
		SystemPrompt: o.prompt,
		Temperature:  o.temperature,
		MaxTokens:    o.maxTokens,
	}

	resp, err := o.provider.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("orchestrator: completion: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		o.logger.Warn("empty completion, using clarification reply")
		return o.replies.DidNotCatch, nil
	}

	reply = o.pipeline.Run(reply, transcript.UserText(msgs))

	// Hard override: even with the hint injected, models keep finding new
	// phrasings for the contact ask, so pattern-matching the reply is not
	// enough. Once the customer has declined twice the answer is always the
	// self-serve path, whatever the model produced.
	if d.Hints.SuppressContactAsks {
		o.logger.Info("overriding completion with self-serve reply")
		return o.replies.SelfServe, nil
	}

	return reply, nil
}

// buildHints turns decision hints into system messages prepended to the
// transcript. Wording matters here: these steer the model turn by turn.
func buildHints(h leadflow.Hints) []types.Message {
	var hints []types.Message
	add := func(text string) {
		hints = append(hints, types.System(text))
	}
	if h.Condolence {
		add("The customer mentioned a loss or bereavement. Begin your reply with one brief, sincere sentence of condolence before helping.")
	}
	if h.SuppressContactAsks {
		add("The customer has declined to share contact information twice. Do NOT ask for it again. Offer the self-serve booking link instead.")
	}
	if h.SuppressAddressAsks {
		add("You have already asked for the delivery address once. Do not ask for it again.")
	}
	if h.AllowOneAddressAsk {
		add("You have the customer's name and contact info. If the delivery address hasn't come up yet, you may ask for it once.")
	}
	if h.EndOfChat {
		add("The customer is wrapping up and their contact details are captured. Thank them warmly, confirm the team will follow up, and keep it to one or two sentences.")
	}
	return hints
}
