// Package sink defines the Sink interface for lead and escalation delivery
// backends.
//
// A sink is a fire-and-forget notification target: a CRM (Odoo, Postgres) or
// an email relay (Resend). The dispatcher composes sinks into a
// primary/fallback chain — each delivery attempt is single-shot and sinks must
// not retry internally.
package sink

import (
	"context"

	"github.com/littlejunkers/leadchat/pkg/types"
)

// Kind distinguishes the two notification record shapes.
type Kind string

const (
	// KindLead is a captured prospect record destined for sales follow-up.
	KindLead Kind = "lead"

	// KindEscalation is an urgent callback request for a human agent.
	KindEscalation Kind = "escalation"
)

// Confidence is a coarse reliability label attached to extracted lead fields,
// reflecting which extraction tier produced them.
type Confidence string

const (
	// ConfidenceHigh means all fields came from structured model extraction.
	ConfidenceHigh Confidence = "high"

	// ConfidenceMedium means model extraction succeeded but one or more fields
	// were repaired from the regex tier during validation.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceLow means the model tier failed entirely and every field came
	// from regex extraction over the raw transcript.
	ConfidenceLow Confidence = "low"
)

// Lead is the transient record handed to sinks. It is built immediately
// before dispatch and never retained afterward.
type Lead struct {
	// ID is a per-dispatch identifier, useful for correlating the primary and
	// fallback delivery attempts of the same logical lead in sink records.
	ID string

	// Contact fields. Empty values are rendered as "Not provided" by sinks.
	Name    string
	Phone   string
	Email   string
	Address string

	// RecommendedTier is the product tier inferred from the conversation
	// (e.g., `16-yard Mighty Middler`). Empty when no tier was discussed.
	RecommendedTier string

	// Confidence labels the extraction tier that produced the fields.
	Confidence Confidence
}

// Notification is the payload delivered to a sink.
type Notification struct {
	Kind Kind

	// Lead carries the extracted contact fields.
	Lead Lead

	// Issue is the user utterance that triggered an escalation.
	// Empty for lead notifications.
	Issue string

	// Transcript is a snapshot of the conversation at dispatch time.
	Transcript []types.Message
}

// FormatTranscript renders a transcript as plain text with speaker labels,
// skipping system turns. agentName labels assistant turns (e.g., "Randy").
func FormatTranscript(msgs []types.Message, agentName string) string {
	if agentName == "" {
		agentName = "Agent"
	}
	out := ""
	for _, m := range msgs {
		switch m.Role {
		case types.RoleUser:
			out += "Customer: " + m.Content + "\n"
		case types.RoleAssistant:
			out += agentName + ": " + m.Content + "\n"
		}
	}
	return out
}

// Sink delivers notifications to an external system.
//
// Implementations must be safe for concurrent use and must attempt delivery
// exactly once per call — failover across sinks is the dispatcher's job.
type Sink interface {
	// Deliver sends the notification. A nil return means the external system
	// acknowledged the record.
	Deliver(ctx context.Context, n Notification) error

	// Name identifies the sink in logs and metrics (e.g., "odoo", "resend").
	Name() string
}
