package tts

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// UsageRecorder receives consumption counters for successful calls. It is
// satisfied by the usage tracker; a nil recorder disables recording.
type UsageRecorder interface {
	Record(providerID string, characters, estimatedTokens int, duration time.Duration)
}

// Manager is the dispatch engine: it resolves a provider for each request,
// executes it with bounded retries and exponential backoff, falls back to
// a configured secondary provider on persistent failure, records usage on
// success, and publishes exactly one completed-or-failed event per call.
//
// Configuration is read from the store at call time, so changes made
// between calls take effect without restarting the engine.
type Manager struct {
	registry *Registry
	store    *Store
	usage    UsageRecorder
	notifier *Notifier
	logger   *log.Logger
}

// NewManager wires the dispatch engine. usage may be nil.
func NewManager(registry *Registry, store *Store, usage UsageRecorder, notifier *Notifier, logger *log.Logger) *Manager {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Manager{
		registry: registry,
		store:    store,
		usage:    usage,
		notifier: notifier,
		logger:   logger,
	}
}

// Notifier returns the event hub the manager publishes to.
func (m *Manager) Notifier() *Notifier {
	return m.notifier
}

// GenerateAudio runs the full dispatch cycle for one request. providerID
// selects an explicit provider; when empty, or when it names an
// unregistered provider, the configured active provider is used.
//
// Cancellation wins over everything: a cancelled context aborts the
// in-flight provider call or pending backoff, and the call returns the
// context error without recording usage or publishing any event.
func (m *Manager) GenerateAudio(ctx context.Context, req Request, providerID string) (*Synthesis, error) {
	cfg := m.store.Config()

	// A request may name a voice profile instead of a vendor voice id.
	req.VoiceID = cfg.ResolveVoice(req.VoiceID)

	provider, ok := m.registry.Get(providerID)
	if !ok && providerID != "" {
		// Unknown explicit id: fall back to the active provider.
		provider, ok = m.registry.Active()
	}
	if !ok {
		// Unresolvable: no retry, no fallback, no usage, no event.
		return nil, NewError(KindUnavailable, providerID, "no provider available for request")
	}

	result, err := m.executeWithRetry(ctx, provider, req, cfg)
	used := provider.ID()

	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err != nil {
		if fb, ok := m.fallbackFor(provider, cfg); ok {
			m.logger.Warn("Primary provider failed, trying fallback",
				"primary", used, "fallback", fb.ID(), "error", err)
			result, err = m.executeWithRetry(ctx, fb, req, cfg)
			used = fb.ID()

			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}

	if err != nil {
		perr := Classify(used, err)
		m.notifier.Publish(Event{
			Type:      EventFailed,
			Provider:  used,
			Request:   req,
			ErrorKind: perr.Kind,
			Message:   perr.Message,
		})
		return nil, perr
	}

	if cfg.TrackUsage && m.usage != nil {
		m.usage.Record(used, result.Characters, result.EstimatedTokens, result.AudioDuration)
	}
	m.notifier.Publish(Event{
		Type:     EventCompleted,
		Provider: used,
		Request:  req,
		Result:   result,
	})
	return result, nil
}

// fallbackFor decides whether a fallback execution should happen after the
// primary failed. All four gates must pass: fallback enabled, a fallback
// id configured and registered, available, and distinct from the primary.
func (m *Manager) fallbackFor(primary Provider, cfg Config) (Provider, bool) {
	if !cfg.FallbackEnabled || cfg.FallbackProvider == "" {
		return nil, false
	}
	fb, ok := m.registry.Get(cfg.FallbackProvider)
	if !ok || fb.ID() == primary.ID() || !fb.IsAvailable() {
		return nil, false
	}
	return fb, true
}

// executeWithRetry runs up to 1+MaxRetries attempts against a single
// provider with doubling delays between them. Retry state never carries
// over between providers; each invocation owns its own counter and delay.
func (m *Manager) executeWithRetry(ctx context.Context, p Provider, req Request, cfg Config) (*Synthesis, error) {
	delay := cfg.RetryDelay

	for attempt := 0; ; attempt++ {
		result, err := p.GenerateAudio(ctx, req)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		perr := Classify(p.ID(), err)
		if !perr.Kind.Retryable() {
			m.logger.Debug("Terminal failure, not retrying",
				"provider", p.ID(), "kind", perr.Kind)
			return nil, perr
		}
		if attempt >= cfg.MaxRetries {
			return nil, perr
		}

		m.logger.Warn("Attempt failed, retrying",
			"provider", p.ID(), "attempt", attempt+1, "kind", perr.Kind, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
