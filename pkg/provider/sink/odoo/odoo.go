// Package odoo provides a Sink backed by the Odoo CRM JSON-RPC API.
//
// Leads are created as crm.lead records via the /xmlrpc/2/object endpoint
// using API-key authentication. The full conversation transcript is embedded
// in the lead description so sales can read the exchange without another tool.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
)

// defaultTimeout bounds a single delivery attempt. The dispatcher never
// retries, so a hung request would otherwise hold the whole reply path.
const defaultTimeout = 15 * time.Second

// Config holds the Odoo connection parameters.
type Config struct {
	// BaseURL is the Odoo instance root (e.g., "https://example.odoo.com").
	// Any trailing slash is stripped.
	BaseURL string

	// Database is the Odoo database name.
	Database string

	// UserID is the numeric Odoo user ID the API key belongs to.
	UserID int

	// APIKey is the Odoo API key, used as the RPC password.
	APIKey string

	// SourceID optionally maps created leads to an Odoo source record
	// (e.g., a custom "Chatbot" source). Zero means unset.
	SourceID int

	// AgentName labels assistant turns in the transcript dump.
	AgentName string
}

// Sink implements sink.Sink against an Odoo CRM instance.
type Sink struct {
	cfg    Config
	client *http.Client
}

// Compile-time interface assertion.
var _ sink.Sink = (*Sink)(nil)

// New creates an Odoo sink. Returns an error if required connection
// parameters are missing.
func New(cfg Config) (*Sink, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("odoo: base URL must not be empty")
	}
	if cfg.Database == "" || cfg.UserID == 0 || cfg.APIKey == "" {
		return nil, fmt.Errorf("odoo: database, user ID, and API key are all required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Sink{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Name implements sink.Sink.
func (s *Sink) Name() string { return "odoo" }

// rpcRequest is the JSON-RPC envelope Odoo expects on /xmlrpc/2/object.
type rpcRequest struct {
	Params rpcParams `json:"params"`
}

type rpcParams struct {
	Model    string         `json:"model"`
	Method   string         `json:"method"`
	Args     []any          `json:"args"`
	Kwargs   map[string]any `json:"kwargs"`
	Database string         `json:"db"`
	UserID   int            `json:"uid"`
	Password string         `json:"password"`
}

// rpcResponse is the subset of the Odoo response we inspect.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Deliver implements sink.Sink by creating a crm.lead record.
func (s *Sink) Deliver(ctx context.Context, n sink.Notification) error {
	record := s.buildRecord(n)

	body, err := json.Marshal(rpcRequest{Params: rpcParams{
		Model:    "crm.lead",
		Method:   "create",
		Args:     []any{[]any{record}},
		Kwargs:   map[string]any{},
		Database: s.cfg.Database,
		UserID:   s.cfg.UserID,
		Password: s.cfg.APIKey,
	}})
	if err != nil {
		return fmt.Errorf("odoo: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/xmlrpc/2/object", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("odoo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("odoo: send lead: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("odoo: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("odoo: read response: %w", err)
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("odoo: decode response: %w", err)
	}
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		return fmt.Errorf("odoo: rpc error: %s", rpcResp.Error)
	}
	return nil
}

// buildRecord assembles the crm.lead field map for the notification.
func (s *Sink) buildRecord(n sink.Notification) map[string]any {
	lead := n.Lead

	title := fmt.Sprintf("Chat Lead: %s", orNotProvided(lead.Name))
	if lead.RecommendedTier != "" {
		title += " - " + lead.RecommendedTier
	}
	if n.Kind == sink.KindEscalation {
		title = fmt.Sprintf("ESCALATION: %s needs callback - %s",
			orNotProvided(lead.Name), orNotProvided(lead.Phone))
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Source: %s chatbot (lead %s, confidence %s)\n",
		orDefault(s.cfg.AgentName, "Website"), lead.ID, lead.Confidence)
	if n.Kind == sink.KindEscalation {
		fmt.Fprintf(&desc, "Issue: %s\n", n.Issue)
	}
	fmt.Fprintf(&desc, "Recommended Size: %s\n", orDefault(lead.RecommendedTier, "Not yet determined"))
	fmt.Fprintf(&desc, "Delivery Address: %s\n\n", orNotProvided(lead.Address))
	desc.WriteString("--- CHAT TRANSCRIPT ---\n")
	desc.WriteString(sink.FormatTranscript(n.Transcript, s.cfg.AgentName))

	record := map[string]any{
		"name":         title,
		"contact_name": orNotProvided(lead.Name),
		"phone":        orNotProvided(lead.Phone),
		"email_from":   orNotProvided(lead.Email),
		"description":  desc.String(),
		"type":         "lead",
	}
	if s.cfg.SourceID != 0 {
		record["source_id"] = s.cfg.SourceID
	}
	return record
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
