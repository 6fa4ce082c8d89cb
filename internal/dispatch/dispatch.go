// Package dispatch assembles and delivers lead and escalation notifications.
//
// The dispatcher is fire-and-forget from the handler's perspective: it
// reports whether delivery reached any sink so the handler can pick between
// the confirmation and the soft-failure reply, but it never retries and
// never blocks a chat turn on a slow sink beyond the configured timeouts.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/littlejunkers/leadchat/internal/extract"
	"github.com/littlejunkers/leadchat/internal/observe"
	"github.com/littlejunkers/leadchat/internal/orchestrator"
	"github.com/littlejunkers/leadchat/internal/transcript"
	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// Dispatcher extracts contact fields and delivers notifications through a
// sink chain.
type Dispatcher struct {
	sink      sink.Sink
	extractor extract.Extractor
	catalog   orchestrator.Catalog
	metrics   *observe.Metrics
	logger    *slog.Logger
}

// New creates a Dispatcher. The sink is usually a
// [resilience.SinkFallback] chain; metrics may be nil in tests.
func New(s sink.Sink, ex extract.Extractor, catalog orchestrator.Catalog, metrics *observe.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sink:      s,
		extractor: ex,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
	}
}

// Lead extracts contact fields from the transcript and delivers a lead
// notification. delivered reports whether any sink acknowledged the record;
// the returned lead is populated either way so the caller can log it.
func (d *Dispatcher) Lead(ctx context.Context, msgs []types.Message) (sink.Lead, bool) {
	lead := d.buildLead(ctx, msgs)
	delivered := d.deliver(ctx, sink.Notification{
		Kind:       sink.KindLead,
		Lead:       lead,
		Transcript: msgs,
	})
	if delivered && d.metrics != nil {
		d.metrics.RecordLeadCaptured(ctx, string(lead.Confidence))
	}
	return lead, delivered
}

// Escalate delivers an escalation notification with the triggering user
// utterance. The customer's phone, when known, rides along in the lead
// fields so a human can call back.
func (d *Dispatcher) Escalate(ctx context.Context, msgs []types.Message, issue string) (sink.Lead, bool) {
	lead := d.buildLead(ctx, msgs)
	delivered := d.deliver(ctx, sink.Notification{
		Kind:       sink.KindEscalation,
		Lead:       lead,
		Issue:      issue,
		Transcript: msgs,
	})
	return lead, delivered
}

func (d *Dispatcher) buildLead(ctx context.Context, msgs []types.Message) sink.Lead {
	start := time.Now()
	fields, err := d.extractor.Extract(ctx, msgs)
	if d.metrics != nil {
		d.metrics.ExtractionDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		// The chain extractor degrades instead of failing; a bare extractor
		// might not.
		d.logger.Warn("extraction failed, dispatching empty fields", "error", err)
		fields = extract.Fields{Confidence: sink.ConfidenceLow}
	}

	return sink.Lead{
		ID:              uuid.NewString(),
		Name:            fields.Name,
		Phone:           fields.Phone,
		Email:           fields.Email,
		Address:         fields.Address,
		RecommendedTier: d.catalog.RecommendLabel(transcript.AllText(msgs)),
		Confidence:      fields.Confidence,
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n sink.Notification) bool {
	start := time.Now()
	err := d.sink.Deliver(ctx, n)
	if d.metrics != nil {
		d.metrics.DispatchDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		d.metrics.RecordDispatchAttempt(ctx, d.sink.Name(), string(n.Kind), status)
	}
	if err != nil {
		d.logger.Error("delivery failed on all sinks",
			"kind", n.Kind, "lead_id", n.Lead.ID, "error", err)
		return false
	}
	d.logger.Info("notification delivered",
		"kind", n.Kind, "lead_id", n.Lead.ID, "sink", d.sink.Name(),
		"confidence", n.Lead.Confidence)
	return true
}
