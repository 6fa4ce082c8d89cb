package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/littlejunkers/leadchat/pkg/provider/llm"
)

// ErrProviderNotRegistered is returned by [Registry.CreateCompletion] when
// no factory has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps completion provider names to their constructor functions.
// Both the conversational and the extraction provider are created through
// it. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	completion map[string]func(ProviderEntry) (llm.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		completion: make(map[string]func(ProviderEntry) (llm.Provider, error)),
	}
}

// RegisterCompletion registers a completion provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterCompletion(name string, factory func(ProviderEntry) (llm.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completion[name] = factory
}

// CreateCompletion instantiates a provider using the factory registered
// under entry.Name. Returns [ErrProviderNotRegistered] if no factory has
// been registered for that name.
func (r *Registry) CreateCompletion(entry ProviderEntry) (llm.Provider, error) {
	r.mu.RLock()
	factory, ok := r.completion[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: completion/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// Names returns the registered provider names, primarily for error messages
// and readiness reporting.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.completion))
	for name := range r.completion {
		names = append(names, name)
	}
	return names
}
