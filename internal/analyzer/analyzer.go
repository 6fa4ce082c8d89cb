package analyzer

import (
	"fmt"
	"strings"

	"github.com/littlejunkers/leadchat/internal/transcript"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// Signals is the structured result of scanning a transcript. It is derived,
// never persisted, and recomputed on every request.
type Signals struct {
	// Contact presence flags. Extracted from user turns only.
	HasName    bool
	HasPhone   bool
	HasEmail   bool
	HasAddress bool

	// HasMinimumContact is HasName AND (HasPhone OR HasEmail) — the threshold
	// for a capturable lead.
	HasMinimumContact bool

	// Raw matched values. Phone is canonicalized to XXX-XXX-XXXX; the rest
	// are the first matching substrings as found.
	Name    string
	Phone   string
	Email   string
	Address string

	// Safety classification. Severe and mild are evaluated against the last
	// user turn; MildTurnCount is the number of user turns anywhere in the
	// transcript containing mild profanity.
	SevereLastTurn bool
	MildLastTurn   bool
	MildTurnCount  int

	// Reaction cues, evaluated against the last user turn only — they are
	// responses to the most recent utterance, not persistent conversation
	// properties.
	EscalationIntent bool
	ClosingIntent    bool
	BereavementCue   bool
}

// Counters holds how many times the assistant already asked for each piece of
// information. Inferred by scanning assistant turns — there is no session
// store. Monotonic non-decreasing in transcript length.
type Counters struct {
	// ContactAsks counts assistant requests for name/phone/email.
	ContactAsks int

	// AddressAsks counts assistant requests for a delivery address.
	AddressAsks int
}

// Analyzer extracts signals with a fixed pattern set.
type Analyzer struct {
	pats *PatternSet
}

// New creates an Analyzer. A nil pattern set selects [DefaultPatterns].
func New(pats *PatternSet) *Analyzer {
	if pats == nil {
		pats = DefaultPatterns()
	}
	return &Analyzer{pats: pats}
}

// Patterns returns the pattern set the analyzer was built with.
func (a *Analyzer) Patterns() *PatternSet { return a.pats }

// Analyze scans the transcript and returns its signals. A transcript with no
// user turns yields all-false signals: every pattern test against the empty
// string fails by construction.
func (a *Analyzer) Analyze(msgs []types.Message) Signals {
	userText := transcript.UserText(msgs)
	lastUser := transcript.LastUserMessage(msgs)

	var s Signals

	s.Name = a.firstName(userText)
	s.HasName = s.Name != ""

	if m := a.pats.Phone.FindStringSubmatch(userText); m != nil {
		s.Phone = FormatPhone(m)
		s.HasPhone = true
	}
	if m := a.pats.Email.FindString(userText); m != "" {
		s.Email = m
		s.HasEmail = true
	}
	if m := a.pats.Address.FindString(userText); m != "" {
		s.Address = strings.TrimSpace(m)
		s.HasAddress = true
	}
	s.HasMinimumContact = s.HasName && (s.HasPhone || s.HasEmail)

	s.SevereLastTurn = a.pats.Severe.MatchString(lastUser)
	s.MildLastTurn = a.pats.Mild.MatchString(lastUser)
	s.MildTurnCount = transcript.CountMatching(msgs, types.RoleUser, a.pats.Mild)

	s.EscalationIntent = a.pats.Escalation.MatchString(lastUser)
	s.ClosingIntent = a.pats.Closing.MatchString(lastUser)
	s.BereavementCue = a.pats.Bereavement.MatchString(lastUser)

	return s
}

// CountAsks derives the ask counters from assistant turns.
func (a *Analyzer) CountAsks(msgs []types.Message) Counters {
	return Counters{
		ContactAsks: transcript.CountMatching(msgs, types.RoleAssistant, a.pats.ContactAsk),
		AddressAsks: transcript.CountMatching(msgs, types.RoleAssistant, a.pats.AddressAsk),
	}
}

// AlreadyCaptured reports whether an assistant turn already confirmed a lead
// dispatch. This transcript-scan check is a soft at-most-once guarantee:
// concurrent requests replaying the same transcript can both pass it.
func (a *Analyzer) AlreadyCaptured(msgs []types.Message) bool {
	return transcript.AnyMatching(msgs, types.RoleAssistant, a.pats.LeadConfirmed)
}

// firstName returns the first capitalized token in text that is not on the
// exclusion list, or "" when none qualifies. First match only — a known
// precision tradeoff, compensated by the model extraction tier at dispatch.
func (a *Analyzer) firstName(text string) string {
	for _, tok := range nameToken.FindAllString(text, -1) {
		if _, excluded := a.pats.NameExclusions[strings.ToLower(tok)]; !excluded {
			return tok
		}
	}
	return ""
}

// FormatPhone renders the three digit groups of a phone submatch as the
// canonical XXX-XXX-XXXX form. m must be a match from [PatternSet.Phone].
func FormatPhone(m []string) string {
	if len(m) < 4 {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
}
