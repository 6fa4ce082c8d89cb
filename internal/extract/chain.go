package extract

import (
	"context"
	"log/slog"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// Chain runs the model extractor first and uses the regex pass either to
// repair individual missing fields (medium confidence) or as the whole
// result when the model call fails (low confidence).
type Chain struct {
	model  Extractor
	regex  Extractor
	logger *slog.Logger
}

// NewChain builds the standard extraction chain.
func NewChain(model, regex Extractor, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{model: model, regex: regex, logger: logger}
}

var _ Extractor = (*Chain)(nil)

// Extract implements Extractor. It never returns an error: extraction
// failures degrade confidence instead of aborting a dispatch.
func (c *Chain) Extract(ctx context.Context, msgs []types.Message) (Fields, error) {
	fromRegex, _ := c.regex.Extract(ctx, msgs)

	fromModel, err := c.model.Extract(ctx, msgs)
	if err != nil {
		c.logger.Warn("model extraction failed, using patterns only", "error", err)
		return fromRegex, nil
	}

	merged, repaired := merge(fromModel, fromRegex)
	if repaired {
		merged.Confidence = sink.ConfidenceMedium
	}
	return merged, nil
}

// merge fills empty model fields from the regex pass. repaired reports
// whether any field came from the patterns.
func merge(model, regex Fields) (Fields, bool) {
	repaired := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			repaired = true
		}
	}
	fill(&model.Name, regex.Name)
	fill(&model.Phone, regex.Phone)
	fill(&model.Email, regex.Email)
	fill(&model.Address, regex.Address)
	return model, repaired
}
