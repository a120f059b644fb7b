// Package store indexes generated quest audio files on disk so batch runs
// can skip quests that already have audio.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// AudioStore scans an output directory once and answers "does quest N
// already have audio?" lookups. New writes are recorded through Add so
// the index stays current within a run.
type AudioStore struct {
	mu  sync.RWMutex
	dir string
	// quest id -> file name
	files map[int]string
}

// Open creates the store for dir, creating the directory and indexing any
// existing quest_<id>.<ext> files.
func Open(dir string) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	s := &AudioStore{dir: dir, files: make(map[int]string)}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AudioStore) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scanning audio directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := questID(e.Name()); ok {
			s.files[id] = e.Name()
		}
	}
	return nil
}

// questID parses quest_<id>.<ext> file names.
func questID(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	rest, ok := strings.CutPrefix(base, "quest_")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Dir returns the output directory.
func (s *AudioStore) Dir() string { return s.dir }

// Path returns the full output path for a quest audio file name.
func (s *AudioStore) Path(fileName string) string {
	return filepath.Join(s.dir, fileName)
}

// Has reports whether audio for the quest already exists.
func (s *AudioStore) Has(questID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[questID]
	return ok
}

// Add records a freshly generated audio file.
func (s *AudioStore) Add(questID int, fileName string) {
	s.mu.Lock()
	s.files[questID] = fileName
	s.mu.Unlock()
}

// Remove deletes a quest's audio file and drops it from the index. A
// missing file is not an error.
func (s *AudioStore) Remove(questID int) error {
	s.mu.Lock()
	name, ok := s.files[questID]
	delete(s.files, questID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing audio file: %w", err)
	}
	return nil
}

// Count returns how many quests have audio.
func (s *AudioStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
