// Package google adapts the Google Cloud Text-to-Speech REST API to the
// tts.Provider contract. Authentication uses a service-account key file
// and a locally cached OAuth2 token (see token.go).
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	goauth "golang.org/x/oauth2/google"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers"
)

// ProviderID is the registry identifier for this adapter.
const ProviderID = "google"

const (
	baseURL       = "https://texttospeech.googleapis.com/v1"
	scope         = "https://www.googleapis.com/auth/cloud-platform"
	maxTextLength = 5000
)

// Provider implements tts.Provider over the Google Cloud TTS REST API.
type Provider struct {
	cfg    tts.GoogleConfig
	client *http.Client

	// mu guards the lazy tokens init; concurrent synthesis and voice
	// listing calls must share one token cache.
	mu     sync.Mutex
	tokens *cachedTokenSource
}

// New creates the adapter. Loading the service-account key is deferred to
// the first request so a missing file shows up as a classified failure,
// not a constructor error.
func New(cfg tts.GoogleConfig) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// ID implements tts.Provider.
func (p *Provider) ID() string { return ProviderID }

// IsConfigured implements tts.Provider.
func (p *Provider) IsConfigured() bool { return p.cfg.CredentialsFile != "" }

// IsAvailable implements tts.Provider.
func (p *Provider) IsAvailable() bool { return p.IsConfigured() }

func (p *Provider) tokenSource(ctx context.Context) (*cachedTokenSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokens != nil {
		return p.tokens, nil
	}
	data, err := os.ReadFile(p.cfg.CredentialsFile)
	if err != nil {
		return nil, tts.WrapError(tts.KindAuthentication, ProviderID, err)
	}
	jwtCfg, err := goauth.JWTConfigFromJSON(data, scope)
	if err != nil {
		return nil, tts.WrapError(tts.KindAuthentication, ProviderID,
			fmt.Errorf("parsing service account key: %w", err))
	}
	p.tokens = newCachedTokenSource(jwtCfg.TokenSource(ctx))
	return p.tokens, nil
}

func (p *Provider) authedRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	src, err := p.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := src.Token()
	if err != nil {
		return nil, tts.WrapError(tts.KindAuthentication, ProviderID, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
		SSMLGender   string `json:"ssmlGender,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
		Pitch         float64 `json:"pitch,omitempty"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// GenerateAudio implements tts.Provider.
func (p *Provider) GenerateAudio(ctx context.Context, req tts.Request) (*tts.Synthesis, error) {
	if !p.IsConfigured() {
		return nil, tts.NewError(tts.KindAuthentication, ProviderID, "credentials file is not configured")
	}
	if err := providers.CheckText(ProviderID, req.Text, maxTextLength); err != nil {
		return nil, err
	}

	var body synthesizeRequest
	body.Input.Text = req.Text
	body.Voice.LanguageCode = req.Language
	if body.Voice.LanguageCode == "" {
		body.Voice.LanguageCode = "en-US"
	}
	if req.VoiceID != "" {
		body.Voice.Name = req.VoiceID
	} else if req.Gender != "" {
		body.Voice.SSMLGender = strings.ToUpper(req.Gender)
	} else {
		body.Voice.Name = p.cfg.VoiceName
	}
	body.AudioConfig.AudioEncoding = encodingFor(req.Format)
	body.AudioConfig.SpeakingRate = p.cfg.SpeakingRate
	body.AudioConfig.Pitch = p.cfg.Pitch

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, tts.WrapError(tts.KindUnknown, ProviderID, err)
	}

	started := time.Now()
	httpReq, err := p.authedRequest(ctx, http.MethodPost, baseURL+"/text:synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var sr synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, tts.WrapError(tts.KindServer, ProviderID, err)
	}
	audio, err := base64.StdEncoding.DecodeString(sr.AudioContent)
	if err != nil {
		return nil, tts.WrapError(tts.KindServer, ProviderID, err)
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

func encodingFor(format string) string {
	switch strings.ToLower(format) {
	case "ogg":
		return "OGG_OPUS"
	case "wav":
		return "LINEAR16"
	default:
		return "MP3"
	}
}

// ValidateConfiguration implements tts.Provider by listing voices, which
// is non-billable and exercises both the key file and the OAuth exchange.
func (p *Provider) ValidateConfiguration(ctx context.Context) tts.Validation {
	if !p.IsConfigured() {
		return tts.Invalid("credentials file is not configured")
	}
	if _, err := p.ListVoices(ctx); err != nil {
		return tts.Invalid(err.Error())
	}
	return tts.Valid()
}

type voicesResponse struct {
	Voices []struct {
		Name          string   `json:"name"`
		LanguageCodes []string `json:"languageCodes"`
		SSMLGender    string   `json:"ssmlGender"`
	} `json:"voices"`
}

// ListVoices implements tts.Provider via GET /v1/voices.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	httpReq, err := p.authedRequest(ctx, http.MethodGet, baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
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
		lang := ""
		if len(v.LanguageCodes) > 0 {
			lang = v.LanguageCodes[0]
		}
		out = append(out, tts.Voice{
			ID:       v.Name,
			Name:     v.Name,
			Language: lang,
			Gender:   strings.ToLower(v.SSMLGender),
		})
	}
	return out, nil
}

// EstimateTokens implements tts.Provider.
func (p *Provider) EstimateTokens(text string) int {
	return providers.EstimateTokens(text)
}

// Close implements tts.Provider.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func statusError(resp *http.Response) *tts.Error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return tts.NewError(providers.KindFromStatus(resp.StatusCode), ProviderID,
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
