// Package providers contains helpers shared by the TTS vendor adapters.
package providers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

// wordsPerMinute is the speaking-rate assumption used to estimate audio
// length when a vendor does not report one.
const wordsPerMinute = 150

// WriteAudio writes audio bytes to path, creating parent directories. When
// path is empty a temporary file is used instead. Returns the path written.
func WriteAudio(path string, data []byte) (string, error) {
	if path == "" {
		f, err := os.CreateTemp("", "wowquest-*.audio")
		if err != nil {
			return "", fmt.Errorf("creating temp audio file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		if _, err := f.Write(data); err != nil {
			return "", fmt.Errorf("writing temp audio file: %w", err)
		}
		return f.Name(), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating audio directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing audio file: %w", err)
	}
	return path, nil
}

// KindFromStatus maps an HTTP status code onto the shared error taxonomy.
func KindFromStatus(status int) tts.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return tts.KindAuthentication
	case status == http.StatusTooManyRequests:
		return tts.KindRateLimit
	case status == http.StatusPaymentRequired:
		return tts.KindQuota
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return tts.KindTimeout
	case status == http.StatusNotFound:
		return tts.KindInvalidVoice
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return tts.KindInvalidText
	case status >= 500:
		return tts.KindServer
	default:
		return tts.KindUnknown
	}
}

// EstimateTokens approximates vendor token cost as one token per four
// characters. Cheap, offline, and monotonic in text length.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateAudioDuration guesses how long the spoken audio will be.
func EstimateAudioDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return time.Duration(float64(words) / wordsPerMinute * float64(time.Minute))
}

// CheckText enforces the shared non-empty invariant plus an optional
// provider maximum.
func CheckText(providerID, text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return tts.NewError(tts.KindInvalidText, providerID, "text must not be empty")
	}
	if maxLen > 0 && len(text) > maxLen {
		return tts.NewError(tts.KindInvalidText, providerID,
			fmt.Sprintf("text length %d exceeds provider maximum %d", len(text), maxLen))
	}
	return nil
}
