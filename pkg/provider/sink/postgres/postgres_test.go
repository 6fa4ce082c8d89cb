package postgres_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/provider/sink/postgres"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if LEADCHAT_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("LEADCHAT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEADCHAT_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestSink creates a sink against a clean chat_leads table and registers
// cleanup.
func newTestSink(t *testing.T) *postgres.Sink {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS chat_leads"); err != nil {
		pool.Close()
		t.Fatalf("drop table: %v", err)
	}
	pool.Close()

	s, err := postgres.New(ctx, dsn, "Randy")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestDeliverInsertsRow(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	n := sink.Notification{
		Kind: sink.KindLead,
		Lead: sink.Lead{
			ID:              "00000000-0000-0000-0000-000000000001",
			Name:            "Jane Doe",
			Phone:           "404-555-0123",
			RecommendedTier: "16-yard Mighty Middler",
			Confidence:      sink.ConfidenceHigh,
		},
		Transcript: []types.Message{
			types.User("I need a dumpster."),
			types.Assistant("Happy to help!"),
		},
	}
	if err := s.Deliver(ctx, n); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	pool, err := pgxpool.New(ctx, testDSN(t))
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	var kind, name, transcript string
	err = pool.QueryRow(ctx,
		"SELECT kind, name, transcript FROM chat_leads WHERE id = $1", n.Lead.ID).
		Scan(&kind, &name, &transcript)
	if err != nil {
		t.Fatalf("query row: %v", err)
	}
	if kind != "lead" || name != "Jane Doe" {
		t.Errorf("kind/name = %q/%q", kind, name)
	}
	if !strings.Contains(transcript, "Randy: Happy to help!") {
		t.Errorf("transcript = %q, want the agent-labelled turn", transcript)
	}
}

func TestPing(t *testing.T) {
	s := newTestSink(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
