package tts

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindRetryable(t *testing.T) {
	retryable := map[ErrorKind]bool{
		KindUnknown:        false,
		KindAuthentication: false,
		KindRateLimit:      true,
		KindQuota:          false,
		KindNetwork:        true,
		KindTimeout:        true,
		KindInvalidVoice:   false,
		KindInvalidText:    false,
		KindServer:         true,
		KindUnavailable:    false,
	}
	for kind, want := range retryable {
		if got := kind.Retryable(); got != want {
			t.Errorf("%s.Retryable() = %v, want %v", kind, got, want)
		}
	}
}

func TestClassifyPassesThroughTypedErrors(t *testing.T) {
	orig := NewError(KindRateLimit, "openai", "slow down")
	wrapped := fmt.Errorf("generating audio: %w", orig)

	got := Classify("other", wrapped)
	if got.Kind != KindRateLimit || got.Provider != "openai" {
		t.Errorf("expected original classification to survive wrapping, got %+v", got)
	}
}

func TestClassifyCoercesUnknownErrors(t *testing.T) {
	got := Classify("google", errors.New("something odd"))
	if got.Kind != KindUnknown {
		t.Errorf("expected unknown kind, got %s", got.Kind)
	}
	if got.Provider != "google" {
		t.Errorf("expected provider to be attributed, got %q", got.Provider)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapError(KindNetwork, "elevenlabs", cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindNetwork)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %s, want %s", got, KindUnknown)
	}
}
