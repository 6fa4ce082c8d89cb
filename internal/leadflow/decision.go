// Package leadflow implements the lead-capture state machine: given the
// analyzer's signals, the ask counters, and the raw transcript, it decides the
// conversation's next action.
//
// The decision logic is an explicit ordered list of guard/decision rules
// evaluated top to bottom with early exit. The ordering is a contract, not an
// implementation detail: safety dominates everything, explicit close events
// outrank escalation noise, and escalation outranks the generic continue path.
package leadflow

// Kind is the decision discriminant. Exactly one decision is produced per
// request and it determines whether the completion provider is invoked at all.
type Kind int

const (
	// KindContinue proceeds to the completion provider, carrying hint flags.
	KindContinue Kind = iota

	// KindBlocked terminates the exchange with a fixed safety reply and no
	// provider call.
	KindBlocked

	// KindEscalate routes to a human: an escalation notification fires and a
	// fixed confirmation reply is returned.
	KindEscalate

	// KindNudge returns a fixed request for contact information without
	// invoking the provider. Deterministic by design.
	KindNudge

	// KindCloseCapture fires the lead notification and returns a fixed
	// close confirmation. Triggered by the caller's explicit close event.
	KindCloseCapture
)

// String returns the kind's name for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindBlocked:
		return "blocked"
	case KindEscalate:
		return "escalate"
	case KindNudge:
		return "nudge"
	case KindCloseCapture:
		return "close-capture"
	default:
		return "unknown"
	}
}

// BlockReason distinguishes the three safety-block severities; each maps to
// different reply wording.
type BlockReason string

const (
	// BlockSevere is an immediate hard close on a severe-safety match.
	BlockSevere BlockReason = "severe"

	// BlockRepeatedMild is a hard close after profanity in two or more user
	// turns across the conversation.
	BlockRepeatedMild BlockReason = "repeated-mild"

	// BlockMildOnce is a soft on-topic nudge for a single mild match on the
	// last turn.
	BlockMildOnce BlockReason = "mild-once"
)

// NudgeKind distinguishes the first contact request from the repeat wording.
type NudgeKind string

const (
	// NudgeContactFirst asks for a callback number for the first time.
	NudgeContactFirst NudgeKind = "contact-first"

	// NudgeContactRepeat re-asks once, offering the direct phone line as an
	// alternative.
	NudgeContactRepeat NudgeKind = "contact-repeat"
)

// Hints are auxiliary flags carried by a Continue decision. They are injected
// as system-role entries ahead of the transcript so they bias the completion,
// and the suppress flags are additionally enforced as hard post-processing
// overrides — the provider cannot be trusted to obey instructions reliably.
type Hints struct {
	// SuppressContactAsks is set once the assistant has asked for contact
	// information twice without obtaining it. The only legitimate behaviour
	// from here is to stop asking and present the self-serve fallback.
	SuppressContactAsks bool

	// SuppressAddressAsks is set once contact is captured and the address was
	// already asked for.
	SuppressAddressAsks bool

	// AllowOneAddressAsk permits a single polite address request after
	// contact capture.
	AllowOneAddressAsk bool

	// Condolence asks for a one-sentence condolence before helping.
	Condolence bool

	// EndOfChat signals the user is wrapping up with contact captured: thank
	// them and close; the handler fires the lead dispatch on this flag.
	EndOfChat bool
}

// Decision is the tagged variant produced by [Decide]. Kind selects which of
// the remaining fields are meaningful.
type Decision struct {
	Kind Kind

	// Reason is set when Kind is KindBlocked.
	Reason BlockReason

	// Nudge is set when Kind is KindNudge.
	Nudge NudgeKind

	// Contact is the canonical callback phone, set when Kind is KindEscalate
	// and a phone number is known.
	Contact string

	// Hints is set when Kind is KindContinue.
	Hints Hints

	// Rule names the rule that produced this decision, for logs and tests.
	Rule string
}
