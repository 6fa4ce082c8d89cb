// Package extract pulls customer contact details out of a transcript.
//
// Two extractors cooperate: a model-backed one that asks the completion
// provider for a strict JSON object, and a regex one built on the analyzer
// patterns. The Chain prefers the model and falls back to (or repairs with)
// the regex pass, labeling the result with a confidence level the sinks
// carry along.
package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// Fields is the extracted contact record.
type Fields struct {
	Name    string
	Phone   string
	Email   string
	Address string

	// Confidence records how the fields were obtained: ConfidenceHigh for a
	// clean model extraction, ConfidenceMedium when regex repaired or filled
	// model output, ConfidenceLow for a pure regex pass.
	Confidence sink.Confidence
}

// HasMinimumContact reports whether the record is deliverable: a name plus
// at least one way to reach the customer.
func (f Fields) HasMinimumContact() bool {
	return f.Name != "" && (f.Phone != "" || f.Email != "")
}

// Extractor produces contact fields from a transcript.
type Extractor interface {
	Extract(ctx context.Context, msgs []types.Message) (Fields, error)
}

var (
	canonicalPhone = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	digitsOnly     = regexp.MustCompile(`\D+`)
	emailShape     = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// NormalizePhone canonicalizes a phone string to XXX-XXX-XXXX. It accepts
// already-canonical input, any 10-digit string with separators, and
// 11-digit numbers with a leading country 1. Anything else returns "".
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if canonicalPhone.MatchString(s) {
		return s
	}
	digits := digitsOnly.ReplaceAllString(s, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
}

// NormalizeEmail lowercases and validates an email address, returning ""
// when the shape is wrong.
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailShape.MatchString(s) {
		return ""
	}
	return s
}
