// Package observe provides application-wide observability primitives for
// leadchat: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all leadchat metrics.
const meterName = "github.com/littlejunkers/leadchat"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// CompletionDuration tracks completion provider latency.
	CompletionDuration metric.Float64Histogram

	// ExtractionDuration tracks contact-extraction latency.
	ExtractionDuration metric.Float64Histogram

	// DispatchDuration tracks lead/escalation delivery latency.
	DispatchDuration metric.Float64Histogram

	// --- Counters ---

	// Decisions counts routing decisions. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("rule", ...)
	Decisions metric.Int64Counter

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// DispatchAttempts counts deliveries per sink. Use with attributes:
	//   attribute.String("sink", ...), attribute.String("kind", ...), attribute.String("status", ...)
	DispatchAttempts metric.Int64Counter

	// LeadsCaptured counts captured leads by confidence.
	LeadsCaptured metric.Int64Counter

	// SafetyBlocks counts transcripts blocked by the safety rules. Use with
	// attribute: attribute.String("reason", ...)
	SafetyBlocks metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// chat-turn latencies, which are dominated by the upstream model call.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.CompletionDuration, err = m.Float64Histogram("leadchat.completion.duration",
		metric.WithDescription("Latency of completion provider calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExtractionDuration, err = m.Float64Histogram("leadchat.extraction.duration",
		metric.WithDescription("Latency of contact extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DispatchDuration, err = m.Float64Histogram("leadchat.dispatch.duration",
		metric.WithDescription("Latency of lead and escalation delivery."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Decisions, err = m.Int64Counter("leadchat.decisions",
		metric.WithDescription("Total routing decisions by kind and rule."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("leadchat.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.DispatchAttempts, err = m.Int64Counter("leadchat.dispatch.attempts",
		metric.WithDescription("Total delivery attempts by sink, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.LeadsCaptured, err = m.Int64Counter("leadchat.leads.captured",
		metric.WithDescription("Total leads captured by confidence level."),
	); err != nil {
		return nil, err
	}
	if met.SafetyBlocks, err = m.Int64Counter("leadchat.safety.blocks",
		metric.WithDescription("Total safety blocks by reason."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("leadchat.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("leadchat.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordDecision records a routing decision counter increment.
func (m *Metrics) RecordDecision(ctx context.Context, kind, rule string) {
	m.Decisions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("rule", rule),
		),
	)
}

// RecordProviderRequest records a provider request counter increment with
// the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordDispatchAttempt records a delivery attempt counter increment.
func (m *Metrics) RecordDispatchAttempt(ctx context.Context, sinkName, kind, status string) {
	m.DispatchAttempts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("sink", sinkName),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordLeadCaptured records a captured lead counter increment.
func (m *Metrics) RecordLeadCaptured(ctx context.Context, confidence string) {
	m.LeadsCaptured.Add(ctx, 1,
		metric.WithAttributes(attribute.String("confidence", confidence)),
	)
}

// RecordSafetyBlock records a safety block counter increment.
func (m *Metrics) RecordSafetyBlock(ctx context.Context, reason string) {
	m.SafetyBlocks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
