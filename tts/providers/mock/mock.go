// Package mock provides a scriptable TTS provider for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

// Provider implements tts.Provider with scriptable outcomes. Each call to
// GenerateAudio consumes the next scripted failure, or succeeds once the
// script is exhausted.
type Provider struct {
	mu sync.Mutex

	id         string
	configured bool
	available  bool
	delay      time.Duration

	// script holds per-call failures. nil entries succeed.
	script    []*tts.Error
	persist   *tts.Error // returned by every call once set
	calls     int
	callTimes []time.Time
	requests  []tts.Request

	voices []tts.Voice
}

// New creates a mock provider that succeeds on every call.
func New(id string) *Provider {
	return &Provider{
		id:         id,
		configured: true,
		available:  true,
		voices: []tts.Voice{
			{ID: id + "-voice-1", Name: "Mock Voice", Language: "en-US", Gender: "male"},
		},
	}
}

// FailWith makes every call fail with the given kind.
func (p *Provider) FailWith(kind tts.ErrorKind, message string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persist = tts.NewError(kind, p.id, message)
	return p
}

// FailTimes queues n failures of the given kind; later calls succeed.
func (p *Provider) FailTimes(n int, kind tts.ErrorKind, message string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		p.script = append(p.script, tts.NewError(kind, p.id, message))
	}
	return p
}

// SetAvailable controls IsAvailable.
func (p *Provider) SetAvailable(v bool) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = v
	return p
}

// SetConfigured controls IsConfigured.
func (p *Provider) SetConfigured(v bool) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configured = v
	return p
}

// SetDelay makes each call block for d (still cancellable).
func (p *Provider) SetDelay(d time.Duration) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
	return p
}

// Calls returns how many times GenerateAudio ran.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// CallTimes returns the start time of every GenerateAudio call.
func (p *Provider) CallTimes() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]time.Time, len(p.callTimes))
	copy(out, p.callTimes)
	return out
}

// Requests returns every request GenerateAudio received.
func (p *Provider) Requests() []tts.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tts.Request, len(p.requests))
	copy(out, p.requests)
	return out
}

// ID implements tts.Provider.
func (p *Provider) ID() string { return p.id }

// IsConfigured implements tts.Provider.
func (p *Provider) IsConfigured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configured
}

// IsAvailable implements tts.Provider.
func (p *Provider) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// GenerateAudio implements tts.Provider with the scripted outcome.
func (p *Provider) GenerateAudio(ctx context.Context, req tts.Request) (*tts.Synthesis, error) {
	p.mu.Lock()
	p.calls++
	p.callTimes = append(p.callTimes, time.Now())
	p.requests = append(p.requests, req)
	delay := p.delay
	var fail *tts.Error
	if p.persist != nil {
		fail = p.persist
	} else if len(p.script) > 0 {
		fail = p.script[0]
		p.script = p.script[1:]
	}
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail != nil {
		return nil, fail
	}
	if req.Text == "" {
		return nil, tts.NewError(tts.KindInvalidText, p.id, "text must not be empty")
	}

	return &tts.Synthesis{
		AudioPath:       req.OutputPath,
		Characters:      len(req.Text),
		EstimatedTokens: p.EstimateTokens(req.Text),
		Elapsed:         delay,
		AudioDuration:   time.Duration(len(req.Text)) * 60 * time.Millisecond,
	}, nil
}

// ValidateConfiguration implements tts.Provider.
func (p *Provider) ValidateConfiguration(context.Context) tts.Validation {
	if !p.IsConfigured() {
		return tts.Invalid("mock provider marked unconfigured")
	}
	return tts.Valid()
}

// ListVoices implements tts.Provider.
func (p *Provider) ListVoices(context.Context) ([]tts.Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tts.Voice, len(p.voices))
	copy(out, p.voices)
	return out, nil
}

// EstimateTokens implements tts.Provider with a chars/4 heuristic.
func (p *Provider) EstimateTokens(text string) int {
	return len(text) / 4
}

// Close implements tts.Provider.
func (p *Provider) Close() error { return nil }
