package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenIndexesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"quest_1.mp3", "quest_42.wav", "readme.txt", "quest_bad.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := s.Count(); got != 2 {
		t.Errorf("expected 2 indexed quests, got %d", got)
	}
	if !s.Has(1) || !s.Has(42) {
		t.Error("expected quests 1 and 42 to be indexed")
	}
	if s.Has(99) {
		t.Error("quest 99 should not be indexed")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio", "output")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("fresh directory should index nothing, got %d", s.Count())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestAddAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	name := "quest_7.mp3"
	if err := os.WriteFile(s.Path(name), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Add(7, name)
	if !s.Has(7) {
		t.Fatal("added quest not found")
	}

	if err := s.Remove(7); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Has(7) {
		t.Error("removed quest still indexed")
	}
	if _, err := os.Stat(s.Path(name)); !os.IsNotExist(err) {
		t.Error("audio file should be deleted")
	}

	// Removing again is a no-op.
	if err := s.Remove(7); err != nil {
		t.Errorf("second Remove should succeed: %v", err)
	}
}

func TestQuestIDParsing(t *testing.T) {
	cases := []struct {
		name string
		id   int
		ok   bool
	}{
		{"quest_15.mp3", 15, true},
		{"quest_0.ogg", 0, true},
		{"quest_x.mp3", 0, false},
		{"npc_15.mp3", 0, false},
		{"quest_.mp3", 0, false},
	}
	for _, tc := range cases {
		id, ok := questID(tc.name)
		if id != tc.id || ok != tc.ok {
			t.Errorf("questID(%q) = (%d, %v), want (%d, %v)", tc.name, id, ok, tc.id, tc.ok)
		}
	}
}
