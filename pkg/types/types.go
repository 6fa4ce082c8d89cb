// Package types defines the shared chat types used across all leadchat packages.
//
// These types form the lingua franca between the HTTP surface, the transcript
// analyzer, the completion orchestrator, and the notification sinks. They are
// intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

// Chat roles as they appear on the wire. The widget only ever sends user and
// assistant turns; system turns are injected server-side or replayed by the
// caller from a prior response.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in a chat conversation.
//
// The transcript is an ordered, append-only sequence of messages fully resent
// by the caller on every request — the service itself keeps no conversation
// state between requests.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the text content of the turn.
	Content string `json:"content"`
}

// System returns a system-role message with the given content.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user-role message with the given content.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant returns an assistant-role message with the given content.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
