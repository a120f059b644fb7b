package tts

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a synthesis or validation call failed. It is the
// only failure vocabulary shared between providers and the dispatch engine;
// adapters map vendor-specific responses onto it.
type ErrorKind int

const (
	// KindUnknown is the catch-all for faults no adapter could classify.
	KindUnknown ErrorKind = iota
	// KindAuthentication means credentials are missing, wrong, or expired.
	KindAuthentication
	// KindRateLimit means the vendor asked us to slow down.
	KindRateLimit
	// KindQuota means the account's quota or balance is exhausted.
	KindQuota
	// KindNetwork means the request never reached the vendor.
	KindNetwork
	// KindTimeout means the request gave up waiting.
	KindTimeout
	// KindInvalidVoice means the requested voice does not exist.
	KindInvalidVoice
	// KindInvalidText means the input text was rejected (empty, too long).
	KindInvalidText
	// KindServer means the vendor failed on its side (5xx).
	KindServer
	// KindUnavailable means the provider cannot currently serve requests.
	KindUnavailable
)

// String returns a stable identifier for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindQuota:
		return "quota"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindInvalidVoice:
		return "invalid_voice"
	case KindInvalidText:
		return "invalid_text"
	case KindServer:
		return "server"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Retryable reports whether retrying a failure of this kind can succeed
// without external intervention. Auth, quota and invalid-input failures
// stay broken until the user fixes something, so the engine fails fast
// on them instead of burning quota and time.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimit, KindTimeout, KindNetwork, KindServer:
		return true
	}
	return false
}

// Error is a classified provider failure. Providers return it from
// GenerateAudio for every expected failure condition; the engine's retry
// and fallback decisions are driven entirely by Kind.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified provider error.
func NewError(kind ErrorKind, provider, message string) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message}
}

// WrapError classifies an underlying error, keeping it for Unwrap.
func WrapError(kind ErrorKind, provider string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Provider: provider, Message: err.Error(), Err: err}
}

// Classify coerces any error into a *Error. Already-classified errors pass
// through unchanged; anything else becomes KindUnknown so the engine never
// has to reason about adapter-specific fault types.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindUnknown, Provider: provider, Message: err.Error(), Err: err}
}

// KindOf extracts the ErrorKind from an error, or KindUnknown for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Structural errors reported synchronously to the caller. These indicate
// caller misuse rather than a runtime synthesis outcome and never travel
// through the Result path.
var (
	ErrProviderNotRegistered = errors.New("provider is not registered")
	ErrNilProvider           = errors.New("provider must not be nil")
	ErrNoActiveProvider      = errors.New("no active provider configured")
)
