// Package transcript implements retention trimming and scan helpers over the
// client-replayed conversation history.
//
// The transcript is the only conversation state the service ever sees: the
// widget resends the full ordered turn list on every request, and every
// signal, counter, and idempotency check is re-derived from it. Helpers here
// are pure functions of the message slice.
package transcript

import (
	"regexp"
	"strings"

	"github.com/littlejunkers/leadchat/pkg/types"
)

// Default retention bounds. When a transcript exceeds MaxMessages turns it is
// trimmed to all system turns plus the most recent KeepRecent non-system
// turns, preserving the original relative order.
const (
	DefaultMaxMessages = 50
	DefaultKeepRecent  = 30
)

// Trim bounds the transcript length. When len(msgs) <= maxMessages the input
// slice is returned unchanged. Otherwise the result keeps every system turn
// and the last keepRecent non-system turns, in their original order — trimming
// never reorders turns and never drops system turns.
//
// Non-positive bounds fall back to the package defaults.
func Trim(msgs []types.Message, maxMessages, keepRecent int) []types.Message {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}
	if len(msgs) <= maxMessages {
		return msgs
	}

	nonSystem := 0
	for _, m := range msgs {
		if m.Role != types.RoleSystem {
			nonSystem++
		}
	}
	dropBefore := nonSystem - keepRecent

	out := make([]types.Message, 0, len(msgs))
	seen := 0
	for _, m := range msgs {
		if m.Role == types.RoleSystem {
			out = append(out, m)
			continue
		}
		seen++
		if seen > dropBefore {
			out = append(out, m)
		}
	}
	return out
}

// UserText concatenates the content of every user turn, space-joined in
// original order. This is the scan buffer for contact-signal extraction —
// assistant content is never inspected for PII.
func UserText(msgs []types.Message) string {
	var parts []string
	for _, m := range msgs {
		if m.Role == types.RoleUser {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, " ")
}

// LastUserMessage returns the trimmed content of the final turn when that
// turn is user-authored, and the empty string otherwise. Reaction cues
// (safety, escalation, closing) are tested against this value only.
func LastUserMessage(msgs []types.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	last := msgs[len(msgs)-1]
	if last.Role != types.RoleUser {
		return ""
	}
	return strings.TrimSpace(last.Content)
}

// CountMatching returns how many turns with the given role match re.
// Used for ask counters (assistant turns) and cumulative profanity counts
// (user turns). The count is monotonic non-decreasing in transcript length
// for a fixed pattern.
func CountMatching(msgs []types.Message, role string, re *regexp.Regexp) int {
	n := 0
	for _, m := range msgs {
		if m.Role == role && re.MatchString(m.Content) {
			n++
		}
	}
	return n
}

// AnyMatching reports whether any turn with the given role matches re.
func AnyMatching(msgs []types.Message, role string, re *regexp.Regexp) bool {
	for _, m := range msgs {
		if m.Role == role && re.MatchString(m.Content) {
			return true
		}
	}
	return false
}

// AllText concatenates the content of every turn regardless of role,
// space-joined in original order. Used for product-tier inference, which
// reads both sides of the conversation (the assistant names tiers the
// customer then agrees to).
func AllText(msgs []types.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, " ")
}
