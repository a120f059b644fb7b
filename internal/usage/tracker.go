// Package usage accumulates per-provider consumption counters and
// persists them across runs.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Counters is one set of accumulated consumption numbers.
type Counters struct {
	Characters      int64         `json:"characters"`
	EstimatedTokens int64         `json:"estimated_tokens"`
	Requests        int64         `json:"requests"`
	AudioDuration   time.Duration `json:"audio_duration"`
}

func (c *Counters) add(characters, tokens int, duration time.Duration) {
	c.Characters += int64(characters)
	c.EstimatedTokens += int64(tokens)
	c.Requests++
	c.AudioDuration += duration
}

// Entry holds the lifetime and session counters for one provider. Session
// counters reset independently and are never persisted.
type Entry struct {
	Provider string    `json:"provider"`
	Lifetime Counters  `json:"lifetime"`
	Session  Counters  `json:"-"`
	LastUsed time.Time `json:"last_used"`
}

// SessionReport aggregates session counters across all providers.
type SessionReport struct {
	Started time.Time
	Total   Counters
}

// Tracker records usage per provider id. All mutating access is
// serialized; every mutation is written through to the JSON file, gated
// by a dirty flag so redundant saves are no-ops.
type Tracker struct {
	mu           sync.Mutex
	entries      map[string]*Entry
	path         string
	dirty        bool
	sessionStart time.Time
	logger       *log.Logger
	now          func() time.Time // test hook
}

// NewTracker loads existing usage from path. A missing or corrupt file is
// never fatal: the tracker starts empty and logs the problem.
func NewTracker(path string, logger *log.Logger) *Tracker {
	t := &Tracker{
		entries:      make(map[string]*Entry),
		path:         path,
		sessionStart: time.Now(),
		logger:       logger,
		now:          time.Now,
	}
	t.load()
	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("Could not read usage file, starting empty", "path", t.path, "error", err)
		}
		return
	}
	var entries map[string]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.logger.Warn("Usage file is corrupt, starting empty", "path", t.path, "error", err)
		return
	}
	t.entries = entries
}

// save writes the lifetime entries to disk. Caller holds the lock.
func (t *Tracker) save() {
	if !t.dirty {
		return
	}
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		t.logger.Error("Could not encode usage data", "error", err)
		return
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.logger.Error("Could not create usage directory", "path", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		t.logger.Error("Could not write usage file", "path", t.path, "error", err)
		return
	}
	t.dirty = false
}

// Record adds one successful request to the provider's lifetime and
// session counters and persists immediately. An empty provider id is a
// silent no-op.
func (t *Tracker) Record(providerID string, characters, estimatedTokens int, duration time.Duration) {
	if providerID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[providerID]
	if !ok {
		e = &Entry{Provider: providerID}
		t.entries[providerID] = e
	}
	e.Lifetime.add(characters, estimatedTokens, duration)
	e.Session.add(characters, estimatedTokens, duration)
	e.LastUsed = t.now()

	t.dirty = true
	t.save()
}

// Entries returns a copy of all usage entries.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	return out
}

// SessionUsage sums the session counters across all providers.
func (t *Tracker) SessionUsage() SessionReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := SessionReport{Started: t.sessionStart}
	for _, e := range t.entries {
		report.Total.Characters += e.Session.Characters
		report.Total.EstimatedTokens += e.Session.EstimatedTokens
		report.Total.Requests += e.Session.Requests
		report.Total.AudioDuration += e.Session.AudioDuration
	}
	return report
}

// ResetSession zeroes every provider's session counters and restarts the
// session clock. Lifetime counters and the on-disk file are untouched;
// session data is never durable.
func (t *Tracker) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		e.Session = Counters{}
	}
	t.sessionStart = t.now()
}

// ResetAll clears every entry and persists the empty state.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string]*Entry)
	t.sessionStart = t.now()
	t.dirty = true
	t.save()
}

// Flush forces a save when dirty. Mutating calls already write through,
// so this only matters after a failed write.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.save()
	if t.dirty {
		return fmt.Errorf("usage data could not be written to %s", t.path)
	}
	return nil
}
