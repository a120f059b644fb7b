package providers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

func TestKindFromStatus(t *testing.T) {
	cases := map[int]tts.ErrorKind{
		http.StatusUnauthorized:        tts.KindAuthentication,
		http.StatusForbidden:           tts.KindAuthentication,
		http.StatusTooManyRequests:     tts.KindRateLimit,
		http.StatusPaymentRequired:     tts.KindQuota,
		http.StatusRequestTimeout:      tts.KindTimeout,
		http.StatusGatewayTimeout:      tts.KindTimeout,
		http.StatusNotFound:            tts.KindInvalidVoice,
		http.StatusBadRequest:          tts.KindInvalidText,
		http.StatusUnprocessableEntity: tts.KindInvalidText,
		http.StatusInternalServerError: tts.KindServer,
		http.StatusBadGateway:          tts.KindServer,
		http.StatusTeapot:              tts.KindUnknown,
	}
	for status, want := range cases {
		if got := KindFromStatus(status); got != want {
			t.Errorf("KindFromStatus(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text should cost 0 tokens, got %d", got)
	}
	short := EstimateTokens("Hello there")
	long := EstimateTokens("Hello there, brave adventurer of the Eastern Kingdoms")
	if short >= long {
		t.Errorf("estimate should grow with text length: %d >= %d", short, long)
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	if got := EstimateAudioDuration(""); got != 0 {
		t.Errorf("empty text should have no duration, got %s", got)
	}
	// 150 words at 150 wpm is one minute.
	words := ""
	for i := 0; i < 150; i++ {
		words += "word "
	}
	if got := EstimateAudioDuration(words); got != time.Minute {
		t.Errorf("150 words = %s, want 1m", got)
	}
}

func TestCheckText(t *testing.T) {
	if err := CheckText("openai", "fine", 100); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckText("openai", "   ", 100); tts.KindOf(err) != tts.KindInvalidText {
		t.Errorf("blank text: expected invalid-text error, got %v", err)
	}
	if err := CheckText("openai", "toolong", 3); tts.KindOf(err) != tts.KindInvalidText {
		t.Errorf("over maximum: expected invalid-text error, got %v", err)
	}
	if err := CheckText("openai", "unbounded", 0); err != nil {
		t.Errorf("maxLen 0 disables the cap: %v", err)
	}
}

func TestWriteAudioCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "quest_1.mp3")

	path, err := WriteAudio(target, []byte("audio"))
	if err != nil {
		t.Fatalf("WriteAudio failed: %v", err)
	}
	if path != target {
		t.Errorf("path = %q, want %q", path, target)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "audio" {
		t.Errorf("file content = %q err=%v", data, err)
	}
}

func TestWriteAudioTempFallback(t *testing.T) {
	path, err := WriteAudio("", []byte("audio"))
	if err != nil {
		t.Fatalf("WriteAudio failed: %v", err)
	}
	defer os.Remove(path)
	if path == "" {
		t.Fatal("expected a temp path")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("temp file missing: %v", err)
	}
}
