// Package mock provides a test double for the sink.Sink interface.
//
// Use Sink in unit tests to assert dispatch behaviour (which sink was tried,
// with what payload) and to inject delivery failures without external systems.
package mock

import (
	"context"
	"sync"

	"github.com/littlejunkers/leadchat/pkg/provider/sink"
)

// DeliverCall records a single invocation of Deliver.
type DeliverCall struct {
	// Ctx is the context passed to Deliver.
	Ctx context.Context
	// Notification is the payload passed to Deliver.
	Notification sink.Notification
}

// Sink is a mock implementation of sink.Sink.
// The zero value delivers successfully; set DeliverErr to inject failures.
type Sink struct {
	mu sync.Mutex

	// NameValue is returned by Name. Defaults to "mock".
	NameValue string

	// DeliverErr, if non-nil, is returned from every Deliver call.
	DeliverErr error

	// DeliverCalls records every invocation of Deliver in order.
	DeliverCalls []DeliverCall
}

// Compile-time interface assertion.
var _ sink.Sink = (*Sink)(nil)

// Name implements sink.Sink.
func (s *Sink) Name() string {
	if s.NameValue == "" {
		return "mock"
	}
	return s.NameValue
}

// Deliver implements sink.Sink.
func (s *Sink) Deliver(ctx context.Context, n sink.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeliverCalls = append(s.DeliverCalls, DeliverCall{Ctx: ctx, Notification: n})
	return s.DeliverErr
}

// CallCount returns the number of times Deliver was invoked.
func (s *Sink) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.DeliverCalls)
}

// LastCall returns the most recent Deliver invocation, or a zero value when
// Deliver was never called.
func (s *Sink) LastCall() DeliverCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.DeliverCalls) == 0 {
		return DeliverCall{}
	}
	return s.DeliverCalls[len(s.DeliverCalls)-1]
}
