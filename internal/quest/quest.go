// Package quest models World of Warcraft quest text and its import from a
// game-server database.
package quest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Quest is one quest's text as read from the game server or a JSON export.
type Quest struct {
	ID          int    `json:"quest_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Objectives  string `json:"objectives"`
	Completion  string `json:"completion"`
	Zone        string `json:"zone"`
	MainStory   bool   `json:"is_main_story"`
}

// TTSText builds the text handed to the synthesis engine: the title as a
// spoken lead-in, then the description.
func (q Quest) TTSText() string {
	title := strings.TrimSpace(q.Title)
	desc := strings.TrimSpace(q.Description)
	if title == "" {
		return desc
	}
	if desc == "" {
		return title
	}
	return fmt.Sprintf("%s. %s", title, desc)
}

// AudioFileName returns the canonical audio file name for the quest.
func (q Quest) AudioFileName(format string) string {
	if format == "" {
		format = "mp3"
	}
	return fmt.Sprintf("quest_%d.%s", q.ID, format)
}

// Load reads quests from a JSON file (either the local quest store or a
// batch export from the desktop UI; both share the same shape).
func Load(path string) ([]Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quest file: %w", err)
	}
	var quests []Quest
	if err := json.Unmarshal(data, &quests); err != nil {
		return nil, fmt.Errorf("parsing quest file %s: %w", path, err)
	}
	return quests, nil
}

// Save writes quests to a JSON file, creating parent directories.
func Save(path string, quests []Quest) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating quest directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(quests, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding quests: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing quest file: %w", err)
	}
	return nil
}

// Filter returns the quests matching the given ids. An empty id list
// matches everything.
func Filter(quests []Quest, ids []int) []Quest {
	if len(ids) == 0 {
		return quests
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]Quest, 0, len(ids))
	for _, q := range quests {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out
}
