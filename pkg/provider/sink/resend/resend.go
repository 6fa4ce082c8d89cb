// Package resend provides a Sink backed by the Resend transactional email API.
//
// It is normally configured as the fallback behind the CRM sink: when CRM
// delivery fails, the lead still reaches a human inbox. Escalations get a
// visually distinct alert layout so they stand out from routine lead mail.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// defaultBaseURL is the production Resend endpoint. Overridable for tests.
const defaultBaseURL = "https://api.resend.com"

const defaultTimeout = 15 * time.Second

// Config holds the email sink parameters.
type Config struct {
	// APIKey is the Resend API key.
	APIKey string

	// From is the sender address (e.g., "noreply@example.com").
	From string

	// To is the recipient address for lead and escalation mail.
	To string

	// BaseURL overrides the Resend API base URL. Empty means production.
	BaseURL string

	// AgentName labels assistant turns in the conversation dump.
	AgentName string
}

// Sink implements sink.Sink using the Resend email API.
type Sink struct {
	cfg    Config
	client *http.Client
}

// Compile-time interface assertion.
var _ sink.Sink = (*Sink)(nil)

// New creates a Resend email sink.
func New(cfg Config) (*Sink, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend: API key must not be empty")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("resend: from and to addresses are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Sink{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Name implements sink.Sink.
func (s *Sink) Name() string { return "resend" }

// emailPayload is the Resend /emails request body.
type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Deliver implements sink.Sink.
func (s *Sink) Deliver(ctx context.Context, n sink.Notification) error {
	payload := emailPayload{
		From: s.cfg.From,
		To:   s.cfg.To,
	}
	switch n.Kind {
	case sink.KindEscalation:
		payload.Subject = fmt.Sprintf("ESCALATION: %s needs callback - %s",
			displayName(n.Lead.Name), orNotProvided(n.Lead.Phone))
		payload.HTML = s.escalationHTML(n)
	default:
		payload.Subject = fmt.Sprintf("New Lead: %s - %s",
			displayName(n.Lead.Name), orNotProvided(n.Lead.Phone))
		payload.HTML = s.leadHTML(n)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("resend: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// leadHTML renders the routine lead-capture email body.
func (s *Sink) leadHTML(n sink.Notification) string {
	var b strings.Builder
	b.WriteString("<h2>New Lead Captured from Chat</h2>")
	writeField(&b, "Name", displayName(n.Lead.Name))
	writeField(&b, "Phone", orNotProvided(n.Lead.Phone))
	writeField(&b, "Email", orNotProvided(n.Lead.Email))
	writeField(&b, "Address", orNotProvided(n.Lead.Address))
	writeField(&b, "Recommended Size", orDefault(n.Lead.RecommendedTier, "Not yet determined"))
	writeField(&b, "Confidence", string(n.Lead.Confidence))
	b.WriteString("<hr><h3>Full Conversation:</h3>")
	writeTranscript(&b, n.Transcript, s.cfg.AgentName)
	return b.String()
}

// escalationHTML renders the urgent callback alert body.
func (s *Sink) escalationHTML(n sink.Notification) string {
	var b strings.Builder
	b.WriteString(`<h2 style="color:#d9534f;">Customer Escalation Alert</h2>`)
	writeField(&b, "Name", displayName(n.Lead.Name))
	writeField(&b, "Phone", orNotProvided(n.Lead.Phone))
	writeField(&b, "Issue", n.Issue)
	b.WriteString(`<p style="background:#fff3cd;padding:10px;border-left:4px solid #ffc107;">` +
		`<strong>Action Required:</strong> Please call the customer back within business hours.</p>`)
	b.WriteString("<hr><h3>Full Conversation:</h3>")
	writeTranscript(&b, n.Transcript, s.cfg.AgentName)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<p><strong>%s:</strong> %s</p>", label, html.EscapeString(value))
}

func writeTranscript(b *strings.Builder, msgs []types.Message, agentName string) {
	b.WriteString(`<pre style="background:#f5f5f5;padding:15px;border-radius:5px;white-space:pre-wrap;">`)
	b.WriteString(html.EscapeString(sink.FormatTranscript(msgs, agentName)))
	b.WriteString("</pre>")
}

func displayName(name string) string {
	if name == "" {
		return "Customer"
	}
	// First name only in subjects and headers.
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

func orNotProvided(s string) string {
	return orDefault(s, "Not provided")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
