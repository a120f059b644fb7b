package elevenlabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

func testConfig() tts.ElevenLabsConfig {
	return tts.ElevenLabsConfig{
		APIKey:          "test-key",
		ModelID:         "eleven_multilingual_v2",
		VoiceID:         "voice-1",
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}

func TestGenerateAudioWritesFile(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := NewWithBaseURL(testConfig(), srv.URL)
	out := filepath.Join(t.TempDir(), "quest_1.mp3")

	result, err := p.GenerateAudio(context.Background(), tts.Request{
		Text:       "Hello adventurer",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if gotPath != "/text-to-speech/voice-1" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("API key header = %q", gotKey)
	}
	if result.AudioPath != out {
		t.Errorf("audio path = %q, want %q", result.AudioPath, out)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "mp3-bytes" {
		t.Errorf("audio content = %q err=%v", data, err)
	}
	if result.Characters != len("Hello adventurer") {
		t.Errorf("characters = %d", result.Characters)
	}
}

func TestGenerateAudioClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   tts.ErrorKind
	}{
		{http.StatusUnauthorized, `{"detail":"invalid api key"}`, tts.KindAuthentication},
		{http.StatusTooManyRequests, `{"detail":"busy"}`, tts.KindRateLimit},
		{http.StatusUnauthorized, `{"detail":{"status":"quota_exceeded"}}`, tts.KindQuota},
		{http.StatusInternalServerError, "oops", tts.KindServer},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		p := NewWithBaseURL(testConfig(), srv.URL)

		_, err := p.GenerateAudio(context.Background(), tts.Request{Text: "hi"})
		if got := tts.KindOf(err); got != tc.want {
			t.Errorf("status %d body %q: kind = %s, want %s", tc.status, tc.body, got, tc.want)
		}
		srv.Close()
	}
}

func TestGenerateAudioRejectsEmptyText(t *testing.T) {
	p := New(testConfig())
	_, err := p.GenerateAudio(context.Background(), tts.Request{Text: "   "})
	if tts.KindOf(err) != tts.KindInvalidText {
		t.Errorf("expected invalid-text error, got %v", err)
	}
}

func TestGenerateAudioUnconfigured(t *testing.T) {
	p := New(tts.ElevenLabsConfig{})
	_, err := p.GenerateAudio(context.Background(), tts.Request{Text: "hi"})
	if tts.KindOf(err) != tts.KindAuthentication {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestValidateConfigurationReportsRemaining(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/subscription" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"character_count":4000,"character_limit":10000}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(testConfig(), srv.URL)
	v := p.ValidateConfiguration(context.Background())
	if !v.Valid {
		t.Fatalf("expected valid, got %q", v.Message)
	}
	if v.RemainingChars == nil || *v.RemainingChars != 6000 {
		t.Errorf("remaining chars = %v, want 6000", v.RemainingChars)
	}
}

func TestValidateConfigurationBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewWithBaseURL(testConfig(), srv.URL)
	if v := p.ValidateConfiguration(context.Background()); v.Valid {
		t.Error("expected invalid for 401")
	}
}

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"voices":[
			{"voice_id":"v1","name":"Adam","labels":{"gender":"male","language":"en"}},
			{"voice_id":"v2","name":"Bella","labels":{"gender":"female","language":"en"}}
		]}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(testConfig(), srv.URL)
	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}
	if len(voices) != 2 || voices[0].ID != "v1" || voices[1].Gender != "female" {
		t.Errorf("unexpected voices %+v", voices)
	}
}

func TestVoiceForGenderHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/voices" {
			_, _ = w.Write([]byte(`{"voices":[{"voice_id":"v2","name":"Bella","labels":{"gender":"female"}}]}`))
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/text-to-speech/v2") {
			t.Errorf("expected synthesis against v2, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.VoiceID = ""
	p := NewWithBaseURL(cfg, srv.URL)
	out := filepath.Join(t.TempDir(), "out.mp3")

	if _, err := p.GenerateAudio(context.Background(), tts.Request{Text: "hi", Gender: "female", OutputPath: out}); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
}

func TestEstimateTokensPerCharacter(t *testing.T) {
	p := New(testConfig())
	if got := p.EstimateTokens("hello"); got != 5 {
		t.Errorf("EstimateTokens = %d, want 5 (billed per character)", got)
	}
}
