// Package elevenlabs adapts the ElevenLabs HTTP API to the tts.Provider
// contract.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers"
)

// ProviderID is the registry identifier for this adapter.
const ProviderID = "elevenlabs"

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	maxTextLength  = 5000
)

// Provider implements tts.Provider over the ElevenLabs REST API.
type Provider struct {
	cfg     tts.ElevenLabsConfig
	baseURL string
	client  *http.Client
}

// New creates the adapter.
func New(cfg tts.ElevenLabsConfig) *Provider {
	return &Provider{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewWithBaseURL creates the adapter against a custom endpoint (tests).
func NewWithBaseURL(cfg tts.ElevenLabsConfig, baseURL string) *Provider {
	p := New(cfg)
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// ID implements tts.Provider.
func (p *Provider) ID() string { return ProviderID }

// IsConfigured implements tts.Provider.
func (p *Provider) IsConfigured() bool { return p.cfg.APIKey != "" }

// IsAvailable implements tts.Provider.
func (p *Provider) IsAvailable() bool { return p.IsConfigured() }

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// GenerateAudio implements tts.Provider.
func (p *Provider) GenerateAudio(ctx context.Context, req tts.Request) (*tts.Synthesis, error) {
	if !p.IsConfigured() {
		return nil, tts.NewError(tts.KindAuthentication, ProviderID, "API key is not configured")
	}
	if err := providers.CheckText(ProviderID, req.Text, maxTextLength); err != nil {
		return nil, err
	}

	voiceID, err := p.voiceFor(ctx, req)
	if err != nil {
		return nil, err
	}

	body := speechRequest{
		Text:    req.Text,
		ModelID: p.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       p.cfg.Stability,
			SimilarityBoost: p.cfg.SimilarityBoost,
		},
	}
	// Adapter-specific request options.
	if v, ok := req.Options["stability"].(float64); ok {
		body.VoiceSettings.Stability = v
	}
	if v, ok := req.Options["similarity_boost"].(float64); ok {
		body.VoiceSettings.SimilarityBoost = v
	}
	if v, ok := req.Options["model_id"].(string); ok {
		body.ModelID = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", p.baseURL, voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", p.cfg.APIKey)

	started := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.WrapError(tts.KindNetwork, ProviderID, err)
	}

	path, err := providers.WriteAudio(req.OutputPath, audio)
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

// voiceFor resolves the explicit voice, the gender hint (via the account's
// voice list), or the configured default.
func (p *Provider) voiceFor(ctx context.Context, req tts.Request) (string, error) {
	if req.VoiceID != "" {
		return req.VoiceID, nil
	}
	if req.Gender != "" {
		voices, err := p.ListVoices(ctx)
		if err == nil {
			for _, v := range voices {
				if strings.EqualFold(v.Gender, req.Gender) {
					return v.ID, nil
				}
			}
		}
	}
	if p.cfg.VoiceID == "" {
		return "", tts.NewError(tts.KindInvalidVoice, ProviderID, "no voice configured and no voice matched the request")
	}
	return p.cfg.VoiceID, nil
}

type subscriptionResponse struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

// ValidateConfiguration implements tts.Provider via the subscription
// endpoint, which is non-billable and reports the remaining character
// quota.
func (p *Provider) ValidateConfiguration(ctx context.Context) tts.Validation {
	if !p.IsConfigured() {
		return tts.Invalid("API key is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user/subscription", nil)
	if err != nil {
		return tts.Invalid(err.Error())
	}
	httpReq.Header.Set("xi-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return tts.Invalid(classifyTransport(ctx, err).Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return tts.Invalid(statusError(resp).Error())
	}

	var sub subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return tts.Invalid(fmt.Sprintf("decoding subscription response: %v", err))
	}

	remaining := sub.CharacterLimit - sub.CharacterCount
	if remaining < 0 {
		remaining = 0
	}
	v := tts.Valid()
	v.RemainingChars = &remaining
	return v
}

type voicesResponse struct {
	Voices []struct {
		VoiceID string            `json:"voice_id"`
		Name    string            `json:"name"`
		Labels  map[string]string `json:"labels"`
	} `json:"voices"`
}

// ListVoices implements tts.Provider via GET /v1/voices.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/voices", nil)
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}
	httpReq.Header.Set("xi-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, tts.WrapError(tts.KindServer, ProviderID, err)
	}

	out := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		out = append(out, tts.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Language: v.Labels["language"],
			Gender:   v.Labels["gender"],
		})
	}
	return out, nil
}

// EstimateTokens implements tts.Provider. ElevenLabs bills per character.
func (p *Provider) EstimateTokens(text string) int {
	return len(text)
}

// Close implements tts.Provider.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func statusError(resp *http.Response) *tts.Error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	kind := providers.KindFromStatus(resp.StatusCode)
	// The API reports exhausted character quota as 401 with a detail body;
	// surface it as quota rather than bad credentials when recognizable.
	if strings.Contains(string(msg), "quota_exceeded") {
		kind = tts.KindQuota
	}
	return tts.NewError(kind, ProviderID,
		fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
}

func classifyTransport(ctx context.Context, err error) *tts.Error {
	if ctx.Err() != nil {
		return tts.WrapError(tts.KindTimeout, ProviderID, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return tts.WrapError(tts.KindTimeout, ProviderID, err)
	}
	return tts.WrapError(tts.KindNetwork, ProviderID, err)
}
