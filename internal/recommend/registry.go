// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"fmt"
	"sync"
)

// Registry holds the configured strategy instances and resolves them by
// name or kind. One instance per kind; registering a kind twice replaces
// the previous instance.
type Registry struct {
	mu     sync.RWMutex
	byKind map[StrategyKind]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[StrategyKind]Strategy),
	}
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[s.Kind()] = s
}

// Resolve returns the strategy registered under the canonical name.
func (r *Registry) Resolve(name string) (Strategy, error) {
	kind, ok := KindFromName(name)
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return r.ResolveKind(kind)
}

// ResolveKind returns the strategy registered for the kind.
func (r *Registry) ResolveKind(kind StrategyKind) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("strategy %q not registered", kind)
	}
	return s, nil
}

// Names returns the canonical names of all registered strategies.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byKind))
	for kind := range r.byKind {
		names = append(names, kind.String())
	}
	return names
}
