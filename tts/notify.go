package tts

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType distinguishes the two notification streams.
type EventType int

const (
	// EventCompleted fires once per top-level call that ends in success.
	EventCompleted EventType = iota
	// EventFailed fires once per top-level call that ends in failure.
	EventFailed
)

// Event describes the final outcome of a top-level generate call. Exactly
// one event is published per call; cancelled calls publish nothing.
type Event struct {
	ID       string
	Type     EventType
	Provider string    // the provider that actually served (or last failed)
	Request  Request   // the original request
	Time     time.Time // when the call resolved

	// Success fields (EventCompleted only)
	Result *Synthesis

	// Failure fields (EventFailed only)
	ErrorKind ErrorKind
	Message   string
}

// Subscriber receives events. Callbacks run synchronously on the calling
// goroutine, so delivery order matches call completion order; slow
// subscribers should hand off to their own goroutine.
type Subscriber func(Event)

// Notifier is a minimal in-process publish/subscribe hub for synthesis
// outcomes. Zero subscribers is fine; delivery is best-effort.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]Subscriber)}
}

// Subscribe registers a callback and returns a token for Unsubscribe.
func (n *Notifier) Subscribe(fn Subscriber) string {
	token := uuid.NewString()
	n.mu.Lock()
	n.subs[token] = fn
	n.mu.Unlock()
	return token
}

// Unsubscribe removes a previously registered callback.
func (n *Notifier) Unsubscribe(token string) {
	n.mu.Lock()
	delete(n.subs, token)
	n.mu.Unlock()
}

// Publish delivers the event to all current subscribers.
func (n *Notifier) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	n.mu.RLock()
	subs := make([]Subscriber, 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
