// Package postgres provides a Sink that writes lead and escalation records to
// a PostgreSQL table.
//
// It serves self-hosted installs that want a structured CRM feed without an
// Odoo instance, and doubles as an audit trail when chained behind another
// sink. Records are insert-only; the service itself never reads them back —
// conversation state stays entirely in the client-replayed transcript.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
)

// schema is the insert-only lead feed. Run by [Migrate] on startup.
const schema = `
CREATE TABLE IF NOT EXISTS chat_leads (
    id               UUID PRIMARY KEY,
    kind             TEXT NOT NULL,
    name             TEXT NOT NULL DEFAULT '',
    phone            TEXT NOT NULL DEFAULT '',
    email            TEXT NOT NULL DEFAULT '',
    address          TEXT NOT NULL DEFAULT '',
    recommended_tier TEXT NOT NULL DEFAULT '',
    confidence       TEXT NOT NULL DEFAULT '',
    issue            TEXT NOT NULL DEFAULT '',
    transcript       TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Sink implements sink.Sink against a PostgreSQL database.
type Sink struct {
	pool      *pgxpool.Pool
	agentName string
}

// Compile-time interface assertion.
var _ sink.Sink = (*Sink)(nil)

// New establishes a connection pool to the database at dsn and ensures the
// chat_leads table exists. agentName labels assistant turns in the stored
// transcript text.
func New(ctx context.Context, dsn string, agentName string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres sink: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Sink{pool: pool, agentName: agentName}, nil
}

// Migrate ensures the chat_leads table exists.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres sink: migrate: %w", err)
	}
	return nil
}

// Name implements sink.Sink.
func (s *Sink) Name() string { return "postgres" }

// Deliver implements sink.Sink by inserting one row per notification.
func (s *Sink) Deliver(ctx context.Context, n sink.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_leads
			(id, kind, name, phone, email, address, recommended_tier, confidence, issue, transcript)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.Lead.ID,
		string(n.Kind),
		n.Lead.Name,
		n.Lead.Phone,
		n.Lead.Email,
		n.Lead.Address,
		n.Lead.RecommendedTier,
		string(n.Lead.Confidence),
		n.Issue,
		sink.FormatTranscript(n.Transcript, s.agentName),
	)
	if err != nil {
		return fmt.Errorf("postgres sink: insert lead: %w", err)
	}
	return nil
}

// Ping probes database connectivity. Intended for readiness checks.
func (s *Sink) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}
