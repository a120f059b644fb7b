// Package tts contains the provider contract and the dispatch engine that
// turns World of Warcraft quest text into speech through interchangeable
// cloud TTS backends.
package tts

import (
	"context"
	"time"
)

// Gender hints used when a request names no explicit voice.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Request describes a single synthesis job. It is treated as an immutable
// value: the engine passes it through to providers and notifications
// without modifying it.
type Request struct {
	// Text is the content to synthesize. Must be non-empty; providers may
	// additionally impose a maximum length.
	Text string
	// VoiceID selects an explicit provider voice. When empty, Gender is
	// used as a hint to pick a default voice.
	VoiceID string
	// Gender is "male" or "female"; only consulted when VoiceID is empty.
	Gender string
	// Language is a BCP-47 code such as "en-US" or "de-DE".
	Language string
	// OutputPath is where the provider writes the resulting audio file.
	// Providers may substitute a temporary location and report it in the
	// Synthesis.
	OutputPath string
	// Format is the requested audio container ("mp3", "ogg", "wav").
	Format string
	// Options carries provider-specific settings (string, number or bool
	// values). The engine never inspects its contents; each adapter
	// validates the keys it understands.
	Options map[string]any
}

// Synthesis is the success outcome of a generate call.
type Synthesis struct {
	// AudioPath is where the audio was actually written.
	AudioPath string
	// Characters is the number of input characters synthesized.
	Characters int
	// EstimatedTokens is the provider's cost heuristic for the input.
	EstimatedTokens int
	// Elapsed is the wall-clock duration of the successful attempt.
	Elapsed time.Duration
	// AudioDuration is the (possibly estimated) length of the audio.
	AudioDuration time.Duration
}

// Validation is the outcome of a configuration check.
type Validation struct {
	Valid   bool
	Message string
	// RemainingChars is the character quota left on the account, when the
	// vendor reports one. Nil when unknown.
	RemainingChars *int64
}

// Valid returns a passing validation.
func Valid() Validation {
	return Validation{Valid: true}
}

// Invalid returns a failing validation with a reason.
func Invalid(message string) Validation {
	return Validation{Valid: false, Message: message}
}

// Voice represents a TTS voice offered by a provider.
type Voice struct {
	ID       string // Voice identifier
	Name     string // Human-readable name
	Language string // Language code (e.g., "en-US")
	Gender   string // Voice gender
}

// Provider is the capability contract every TTS backend implements. All
// expected failure conditions surface as a classified *Error from
// GenerateAudio, never as a panic or an unwrapped vendor fault.
//
// Implementations must be safe for concurrent use; adapters holding shared
// state (such as a cached access token) document and serialize it
// themselves.
type Provider interface {
	// ID returns the stable registry identifier ("openai", "google", ...).
	ID() string

	// IsConfigured reports whether the minimum required credentials are
	// present. No network call.
	IsConfigured() bool

	// IsAvailable reports whether the provider can currently serve
	// requests. Distinct from IsConfigured: a placeholder backend may be
	// configured yet permanently unavailable.
	IsAvailable() bool

	// GenerateAudio synthesizes the request and writes an audio file on
	// success. Expected failures return a *Error carrying an ErrorKind.
	GenerateAudio(ctx context.Context, req Request) (*Synthesis, error)

	// ValidateConfiguration performs a lightweight (ideally non-billable)
	// check that the credentials work.
	ValidateConfiguration(ctx context.Context) Validation

	// ListVoices returns the available voices. An empty list is valid.
	ListVoices(ctx context.Context) ([]Voice, error)

	// EstimateTokens is a cheap cost heuristic: 0 for empty text,
	// non-decreasing in text length, no network call.
	EstimateTokens(text string) int

	// Close releases any held resources (connections, cached clients).
	Close() error
}
