package usage

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.json")
	return NewTracker(path, log.New(io.Discard)), path
}

func TestRecordCreatesEntry(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.Record("openai", 100, 25, 4*time.Second)
	tr.Record("openai", 50, 12, 2*time.Second)

	entries := tr.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Lifetime.Characters != 150 || e.Lifetime.Requests != 2 {
		t.Errorf("lifetime counters wrong: %+v", e.Lifetime)
	}
	if e.Session.Characters != 150 {
		t.Errorf("session counters wrong: %+v", e.Session)
	}
	if e.LastUsed.IsZero() {
		t.Error("last used not set")
	}
}

func TestRecordEmptyProviderIsNoOp(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record("", 100, 25, time.Second)
	if got := len(tr.Entries()); got != 0 {
		t.Errorf("empty provider id must not create an entry, got %d", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	tr, path := newTestTracker(t)
	tr.Record("google", 200, 50, 8*time.Second)

	reloaded := NewTracker(path, log.New(io.Discard))
	entries := reloaded.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one reloaded entry, got %d", len(entries))
	}
	if entries[0].Lifetime.Characters != 200 {
		t.Errorf("lifetime did not survive reload: %+v", entries[0].Lifetime)
	}
	// Session counters are never durable.
	if entries[0].Session.Characters != 0 {
		t.Errorf("session counters must not persist: %+v", entries[0].Session)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker(path, log.New(io.Discard))
	if got := len(tr.Entries()); got != 0 {
		t.Errorf("corrupt file should yield an empty tracker, got %d entries", got)
	}
	// And it must still be able to record afterwards.
	tr.Record("openai", 10, 2, time.Second)
	if got := len(tr.Entries()); got != 1 {
		t.Errorf("tracker unusable after corrupt load, got %d entries", got)
	}
}

func TestResetSessionKeepsLifetime(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record("openai", 100, 25, time.Second)

	tr.ResetSession()

	e := tr.Entries()[0]
	if e.Session.Characters != 0 {
		t.Errorf("session not reset: %+v", e.Session)
	}
	if e.Lifetime.Characters != 100 {
		t.Errorf("lifetime must survive session reset: %+v", e.Lifetime)
	}
	if got := tr.SessionUsage().Total.Characters; got != 0 {
		t.Errorf("session report should be empty after reset, got %d", got)
	}
}

func TestResetAllPersistsEmpty(t *testing.T) {
	tr, path := newTestTracker(t)
	tr.Record("openai", 100, 25, time.Second)

	tr.ResetAll()
	if got := len(tr.Entries()); got != 0 {
		t.Errorf("expected no entries after reset, got %d", got)
	}

	reloaded := NewTracker(path, log.New(io.Discard))
	if got := len(reloaded.Entries()); got != 0 {
		t.Errorf("reset must persist, reload found %d entries", got)
	}
}

func TestSessionUsageAggregates(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record("openai", 100, 25, time.Second)
	tr.Record("google", 200, 50, 2*time.Second)

	report := tr.SessionUsage()
	if report.Total.Characters != 300 || report.Total.Requests != 2 {
		t.Errorf("unexpected session totals: %+v", report.Total)
	}
	if report.Started.IsZero() {
		t.Error("session start not set")
	}
}

func TestExportCSVSortedByCharacters(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record("small", 10, 2, time.Second)
	tr.Record("big", 1000, 250, time.Minute)

	var buf bytes.Buffer
	if err := tr.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading exported CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "provider" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "big" || rows[2][0] != "small" {
		t.Errorf("expected descending character order, got %v then %v", rows[1][0], rows[2][0])
	}
}

func TestExportJSON(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record("openai", 100, 25, time.Second)

	var buf bytes.Buffer
	if err := tr.ExportJSON(&buf); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"provider": "openai"`)) {
		t.Errorf("export missing provider field: %s", buf.String())
	}
}
