package resilience

import (
	"context"
	"strings"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
)

// SinkFallback wraps an ordered set of delivery sinks behind a
// [FallbackGroup] and exposes them as a single [sink.Sink]. A notification
// is delivered to exactly one healthy sink; later sinks only see it when
// earlier ones fail.
type SinkFallback struct {
	group *FallbackGroup[sink.Sink]
}

var _ sink.Sink = (*SinkFallback)(nil)

// NewSinkFallback builds a fallback chain with primary tried first.
func NewSinkFallback(primary sink.Sink, cfg FallbackConfig, fallbacks ...sink.Sink) *SinkFallback {
	group := NewFallbackGroup(primary, primary.Name(), cfg)
	for _, s := range fallbacks {
		group.AddFallback(s.Name(), s)
	}
	return &SinkFallback{group: group}
}

// Deliver implements [sink.Sink].
func (sf *SinkFallback) Deliver(ctx context.Context, n sink.Notification) error {
	return sf.group.Execute(func(s sink.Sink) error {
		return s.Deliver(ctx, n)
	})
}

// Name implements [sink.Sink]. It joins the chain's sink names in try
// order, e.g. "odoo>resend".
func (sf *SinkFallback) Name() string {
	return strings.Join(sf.group.Names(), ">")
}
