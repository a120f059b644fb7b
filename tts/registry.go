package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Factory builds the full provider set from the current configuration.
// Registry.Refresh calls it after configuration changes that may affect
// provider availability (new API keys and the like).
type Factory func(cfg Config) []Provider

// Registry owns the provider lifecycle: registration, lookup, the active
// selection, and teardown. All mutating access is serialized; lookups take
// a read lock.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	store     *Store
	factory   Factory
	logger    *log.Logger
}

// NewRegistry creates a registry populated from the factory.
func NewRegistry(store *Store, factory Factory, logger *log.Logger) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		store:     store,
		factory:   factory,
		logger:    logger,
	}
	if factory != nil {
		for _, p := range factory(store.Config()) {
			if err := r.Register(p); err != nil {
				logger.Warn("Skipping provider registration", "error", err)
			}
		}
	}
	return r
}

// Register adds a provider. Registering an id twice overwrites the earlier
// entry; the replaced provider is closed.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	id := p.ID()
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrNilProvider)
	}

	r.mu.Lock()
	old := r.providers[id]
	r.providers[id] = p
	r.mu.Unlock()

	if old != nil && old != p {
		if err := old.Close(); err != nil {
			r.logger.Debug("Closing replaced provider", "provider", id, "error", err)
		}
	}
	return nil
}

// Get returns the provider for id, or the configured active provider when
// id is empty. The boolean is false when nothing resolves.
func (r *Registry) Get(id string) (Provider, bool) {
	if id == "" {
		id = r.store.Config().ActiveProvider
	}
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	p, ok := r.providers[id]
	r.mu.RUnlock()
	return p, ok
}

// Active returns the configured active provider.
func (r *Registry) Active() (Provider, bool) {
	return r.Get("")
}

// IDs returns the registered provider ids, unordered.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// SetActive persists id as the active provider. The target must be
// registered but is intentionally not required to be available, so a
// provider can be configured before its credentials go live.
func (r *Registry) SetActive(id string) error {
	r.mu.RLock()
	_, ok := r.providers[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotRegistered, id)
	}
	return r.store.SetActiveProvider(id)
}

// Refresh discards every registration and rebuilds the set from the
// current configuration.
func (r *Registry) Refresh() {
	cfg := r.store.Config()

	var fresh []Provider
	if r.factory != nil {
		fresh = r.factory(cfg)
	}

	r.mu.Lock()
	old := r.providers
	r.providers = make(map[string]Provider, len(fresh))
	for _, p := range fresh {
		if p == nil || p.ID() == "" {
			continue
		}
		r.providers[p.ID()] = p
	}
	r.mu.Unlock()

	for id, p := range old {
		if err := p.Close(); err != nil {
			r.logger.Debug("Closing provider during refresh", "provider", id, "error", err)
		}
	}
	r.logger.Debug("Provider registry rebuilt", "providers", len(fresh))
}

// ValidateAll checks every registered provider's configuration. A panic or
// fault in one provider is captured as an Invalid result so it cannot
// abort validation of the others.
func (r *Registry) ValidateAll(ctx context.Context) map[string]Validation {
	r.mu.RLock()
	providers := make(map[string]Provider, len(r.providers))
	for id, p := range r.providers {
		providers[id] = p
	}
	r.mu.RUnlock()

	results := make(map[string]Validation, len(providers))
	for id, p := range providers {
		results[id] = safeValidate(ctx, p)
	}
	return results
}

func safeValidate(ctx context.Context, p Provider) (v Validation) {
	defer func() {
		if rec := recover(); rec != nil {
			v = Invalid(fmt.Sprintf("validation panicked: %v", rec))
		}
	}()
	return p.ValidateConfiguration(ctx)
}

// Close releases every registered provider and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	old := r.providers
	r.providers = make(map[string]Provider)
	r.mu.Unlock()

	var firstErr error
	for id, p := range old {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing provider %q: %w", id, err)
		}
	}
	return firstErr
}
