package leadflow

import (
	"github.com/littlejunkers/leadchat/internal/analyzer"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// EventChatClosed is the caller's explicit end-of-session signal. The legacy
// widget sends the camel-case form; both spellings are honoured.
const (
	EventChatClosed       = "chat-closed"
	EventChatClosedLegacy = "chatClosed"
)

// Caps on repeated asks. Once reached, the only legitimate behaviour is to
// stop asking and present the self-serve fallback.
const (
	ContactAskCap = 2
	AddressAskCap = 1
)

// Input bundles everything a rule may inspect.
type Input struct {
	// Signals is the analyzer output for the transcript.
	Signals analyzer.Signals

	// Counters holds the assistant ask counts.
	Counters analyzer.Counters

	// Transcript is the (already trimmed) conversation.
	Transcript []types.Message

	// Event is the caller-supplied event string, if any.
	Event string

	// PriorCapture reports whether an assistant turn already confirmed a
	// lead dispatch (the idempotency scan).
	PriorCapture bool
}

// closeEvent reports whether the caller explicitly ended the session.
func (in Input) closeEvent() bool {
	return in.Event == EventChatClosed || in.Event == EventChatClosedLegacy
}

// rule pairs a guard with the decision it produces. Rules are evaluated in
// order; the first guard that fires wins.
type rule struct {
	name   string
	guard  func(Input) bool
	decide func(Input) Decision
}

// rules is the priority-ordered cascade. Do not reorder: safety must dominate
// every business goal, the explicit close event must not be missed because of
// escalation noise, and escalation must not be absorbed into the generic
// continue path (it has an immediate human-notification side effect).
var rules = []rule{
	{
		name:  "severe-safety",
		guard: func(in Input) bool { return in.Signals.SevereLastTurn },
		decide: func(in Input) Decision {
			return Decision{Kind: KindBlocked, Reason: BlockSevere}
		},
	},
	{
		name:  "repeated-mild-safety",
		guard: func(in Input) bool { return in.Signals.MildTurnCount >= 2 },
		decide: func(in Input) Decision {
			return Decision{Kind: KindBlocked, Reason: BlockRepeatedMild}
		},
	},
	{
		name:  "mild-safety-once",
		guard: func(in Input) bool { return in.Signals.MildLastTurn },
		decide: func(in Input) Decision {
			return Decision{Kind: KindBlocked, Reason: BlockMildOnce}
		},
	},
	{
		name: "close-event-capture",
		guard: func(in Input) bool {
			return in.closeEvent() && in.Signals.HasMinimumContact && !in.PriorCapture
		},
		decide: func(in Input) Decision {
			return Decision{Kind: KindCloseCapture}
		},
	},
	{
		name:  "escalation",
		guard: func(in Input) bool { return in.Signals.EscalationIntent },
		decide: func(in Input) Decision {
			if in.Signals.HasPhone {
				return Decision{Kind: KindEscalate, Contact: in.Signals.Phone}
			}
			if in.Counters.ContactAsks >= 1 {
				return Decision{Kind: KindNudge, Nudge: NudgeContactRepeat}
			}
			return Decision{Kind: KindNudge, Nudge: NudgeContactFirst}
		},
	},
}

// Decide runs the rule cascade and returns exactly one decision. When no rule
// fires the result is a Continue decision carrying the hint flags derived
// from the signals and counters.
func Decide(in Input) Decision {
	for _, r := range rules {
		if r.guard(in) {
			d := r.decide(in)
			d.Rule = r.name
			return d
		}
	}

	s, c := in.Signals, in.Counters
	d := Decision{
		Kind: KindContinue,
		Rule: "continue",
		Hints: Hints{
			SuppressContactAsks: c.ContactAsks >= ContactAskCap && !s.HasMinimumContact,
			SuppressAddressAsks: s.HasMinimumContact && c.AddressAsks >= AddressAskCap,
			AllowOneAddressAsk:  s.HasMinimumContact && c.AddressAsks == 0,
			Condolence:          s.BereavementCue,
			EndOfChat:           s.ClosingIntent && s.HasMinimumContact,
		},
	}
	return d
}
