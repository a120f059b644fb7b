// Package claude is a placeholder provider. Anthropic offers no speech
// synthesis endpoint; the adapter registers so the id is reserved in
// configuration, but it never reports itself available.
package claude

import (
	"context"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers"
)

// ProviderID is the registry identifier for this adapter.
const ProviderID = "claude"

// Provider implements tts.Provider as an inert placeholder.
type Provider struct {
	cfg tts.ClaudeConfig
}

// New creates the placeholder.
func New(cfg tts.ClaudeConfig) *Provider {
	return &Provider{cfg: cfg}
}

// ID implements tts.Provider.
func (p *Provider) ID() string { return ProviderID }

// IsConfigured implements tts.Provider.
func (p *Provider) IsConfigured() bool { return p.cfg.APIKey != "" }

// IsAvailable implements tts.Provider. Always false: configured is not
// the same as able to serve.
func (p *Provider) IsAvailable() bool { return false }

// GenerateAudio implements tts.Provider.
func (p *Provider) GenerateAudio(context.Context, tts.Request) (*tts.Synthesis, error) {
	return nil, tts.NewError(tts.KindUnavailable, ProviderID, "Claude does not offer text-to-speech")
}

// ValidateConfiguration implements tts.Provider.
func (p *Provider) ValidateConfiguration(context.Context) tts.Validation {
	return tts.Invalid("Claude does not offer text-to-speech")
}

// ListVoices implements tts.Provider.
func (p *Provider) ListVoices(context.Context) ([]tts.Voice, error) {
	return nil, nil
}

// EstimateTokens implements tts.Provider.
func (p *Provider) EstimateTokens(text string) int {
	return providers.EstimateTokens(text)
}

// Close implements tts.Provider.
func (p *Provider) Close() error { return nil }
