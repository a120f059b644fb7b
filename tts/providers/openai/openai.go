// Package openai adapts the OpenAI speech API to the tts.Provider contract.
package openai

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers"
)

// ProviderID is the registry identifier for this adapter.
const ProviderID = "openai"

// maxTextLength is the documented input limit of the speech endpoint.
const maxTextLength = 4096

// voices is the fixed voice set offered by the speech API.
var voices = []tts.Voice{
	{ID: "alloy", Name: "Alloy", Language: "en-US", Gender: "female"},
	{ID: "echo", Name: "Echo", Language: "en-US", Gender: "male"},
	{ID: "fable", Name: "Fable", Language: "en-US", Gender: "male"},
	{ID: "onyx", Name: "Onyx", Language: "en-US", Gender: "male"},
	{ID: "nova", Name: "Nova", Language: "en-US", Gender: "female"},
	{ID: "shimmer", Name: "Shimmer", Language: "en-US", Gender: "female"},
}

// Provider implements tts.Provider over the OpenAI speech endpoint.
type Provider struct {
	cfg    tts.OpenAIConfig
	client *goopenai.Client
}

// New creates the adapter. The client is constructed even without an API
// key so IsConfigured can report the missing credential.
func New(cfg tts.OpenAIConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: goopenai.NewClient(cfg.APIKey),
	}
}

// ID implements tts.Provider.
func (p *Provider) ID() string { return ProviderID }

// IsConfigured implements tts.Provider.
func (p *Provider) IsConfigured() bool { return p.cfg.APIKey != "" }

// IsAvailable implements tts.Provider.
func (p *Provider) IsAvailable() bool { return p.IsConfigured() }

// GenerateAudio implements tts.Provider.
func (p *Provider) GenerateAudio(ctx context.Context, req tts.Request) (*tts.Synthesis, error) {
	if !p.IsConfigured() {
		return nil, tts.NewError(tts.KindAuthentication, ProviderID, "API key is not configured")
	}
	if err := providers.CheckText(ProviderID, req.Text, maxTextLength); err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := p.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(p.cfg.Model),
		Input:          req.Text,
		Voice:          goopenai.SpeechVoice(p.voiceFor(req)),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
		Speed:          p.cfg.Speed,
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Close() //nolint:errcheck

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, tts.WrapError(tts.KindNetwork, ProviderID, err)
	}

	path, err := providers.WriteAudio(req.OutputPath, data)
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}

	return &tts.Synthesis{
		AudioPath:       path,
		Characters:      len(req.Text),
		EstimatedTokens: p.EstimateTokens(req.Text),
		Elapsed:         time.Since(started),
		AudioDuration:   providers.EstimateAudioDuration(req.Text),
	}, nil
}

// voiceFor resolves the request's explicit voice, gender hint, or the
// configured default, in that order.
func (p *Provider) voiceFor(req tts.Request) string {
	if req.VoiceID != "" {
		return req.VoiceID
	}
	switch req.Gender {
	case tts.GenderFemale:
		return "nova"
	case tts.GenderMale:
		return "onyx"
	}
	return p.cfg.Voice
}

// ValidateConfiguration implements tts.Provider by listing models, which
// is free and exercises the credential.
func (p *Provider) ValidateConfiguration(ctx context.Context) tts.Validation {
	if !p.IsConfigured() {
		return tts.Invalid("API key is not configured")
	}
	if _, err := p.client.ListModels(ctx); err != nil {
		return tts.Invalid(classify(ctx, err).Error())
	}
	return tts.Valid()
}

// ListVoices implements tts.Provider with the API's fixed voice set.
func (p *Provider) ListVoices(context.Context) ([]tts.Voice, error) {
	out := make([]tts.Voice, len(voices))
	copy(out, voices)
	return out, nil
}

// EstimateTokens implements tts.Provider.
func (p *Provider) EstimateTokens(text string) int {
	return providers.EstimateTokens(text)
}

// Close implements tts.Provider.
func (p *Provider) Close() error { return nil }

// classify maps go-openai errors onto the shared taxonomy.
func classify(ctx context.Context, err error) *tts.Error {
	if ctx.Err() != nil {
		return tts.WrapError(tts.KindTimeout, ProviderID, err)
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return tts.WrapError(providers.KindFromStatus(apiErr.HTTPStatusCode), ProviderID, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return tts.WrapError(providers.KindFromStatus(reqErr.HTTPStatusCode), ProviderID, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return tts.WrapError(tts.KindTimeout, ProviderID, err)
		}
		return tts.WrapError(tts.KindNetwork, ProviderID, err)
	}
	return tts.Classify(ProviderID, err)
}
