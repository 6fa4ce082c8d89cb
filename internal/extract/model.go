package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/littlejunkers/leadchat/internal/transcript"
	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

const extractionPrompt = `Extract the customer's contact details from the chat transcript below.
Respond with ONLY a JSON object in exactly this shape, no prose and no code fences:
{"name": "", "phone": "", "email": "", "address": ""}
Rules:
- "name" is the customer's first name only.
- "phone" is digits and separators as the customer gave it.
- Use an empty string for anything the customer did not provide.
- Never invent details.`

// extractionMaxTokens caps the JSON response; the object is tiny.
const extractionMaxTokens = 150

// Model asks a completion provider for a strict JSON contact object.
// Extraction runs at temperature zero so the same transcript yields the
// same record.
type Model struct {
	provider llm.Provider
}

// NewModel returns a model-backed extractor.
func NewModel(provider llm.Provider) *Model {
	return &Model{provider: provider}
}

var _ Extractor = (*Model)(nil)

type contactJSON struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Extract implements Extractor. A provider failure or unparseable response
// is returned as an error; the caller decides how to degrade.
func (m *Model) Extract(ctx context.Context, msgs []types.Message) (Fields, error) {
	req := llm.CompletionRequest{
		Messages:     []types.Message{types.User(transcript.UserText(msgs))},
		SystemPrompt: extractionPrompt,
		Temperature:  0,
		MaxTokens:    extractionMaxTokens,
	}
	resp, err := m.provider.Complete(ctx, req)
	if err != nil {
		return Fields{}, fmt.Errorf("extract: completion: %w", err)
	}

	raw := stripFences(resp.Content)
	var c contactJSON
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Fields{}, fmt.Errorf("extract: parse response: %w", err)
	}

	return Fields{
		Name:       strings.TrimSpace(c.Name),
		Phone:      NormalizePhone(c.Phone),
		Email:      NormalizeEmail(c.Email),
		Address:    strings.TrimSpace(c.Address),
		Confidence: sink.ConfidenceHigh,
	}, nil
}

// stripFences removes a markdown code fence some models wrap JSON in,
// despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
