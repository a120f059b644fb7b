package usage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// ExportCSV writes all lifetime entries as CSV, sorted by total character
// count descending.
func (t *Tracker) ExportCSV(w io.Writer) error {
	entries := t.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Lifetime.Characters > entries[j].Lifetime.Characters
	})

	cw := csv.NewWriter(w)
	header := []string{"provider", "characters", "estimated_tokens", "requests", "audio_duration", "last_used"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		lastUsed := ""
		if !e.LastUsed.IsZero() {
			lastUsed = e.LastUsed.Format(time.RFC3339)
		}
		row := []string{
			e.Provider,
			strconv.FormatInt(e.Lifetime.Characters, 10),
			strconv.FormatInt(e.Lifetime.EstimatedTokens, 10),
			strconv.FormatInt(e.Lifetime.Requests, 10),
			e.Lifetime.AudioDuration.String(),
			lastUsed,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes all lifetime entries as indented JSON.
func (t *Tracker) ExportJSON(w io.Writer) error {
	entries := t.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Provider < entries[j].Provider
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
