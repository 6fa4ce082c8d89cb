package extract

import (
	"context"

	"github.com/littlejunkers/leadchat/internal/analyzer"
	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// Regex extracts contact fields with the analyzer's patterns alone. It
// never fails; when nothing matches the fields are simply empty.
type Regex struct {
	a *analyzer.Analyzer
}

// NewRegex returns a pattern-based extractor. A nil analyzer uses the
// default pattern set.
func NewRegex(a *analyzer.Analyzer) *Regex {
	if a == nil {
		a = analyzer.New(nil)
	}
	return &Regex{a: a}
}

var _ Extractor = (*Regex)(nil)

// Extract implements Extractor.
func (r *Regex) Extract(_ context.Context, msgs []types.Message) (Fields, error) {
	sig := r.a.Analyze(msgs)
	return Fields{
		Name:       sig.Name,
		Phone:      sig.Phone,
		Email:      NormalizeEmail(sig.Email),
		Address:    sig.Address,
		Confidence: sink.ConfidenceLow,
	}, nil
}
