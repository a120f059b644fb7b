// Package update implements the self-update flow: fetch a JSON manifest,
// compare versions, download and verify the release archive, extract it,
// and hand off to the bundled updater binary.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// Manifest is the release descriptor published alongside each build.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256"`
	Notes   string `json:"notes"`
}

// Checker fetches the release manifest and decides whether an update
// applies.
type Checker struct {
	manifestURL string
	current     string
	client      *http.Client
}

// NewChecker creates a checker for the given manifest URL and the running
// binary's version string.
func NewChecker(manifestURL, currentVersion string) *Checker {
	return &Checker{
		manifestURL: manifestURL,
		current:     currentVersion,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Check fetches the manifest and returns it together with whether it is
// newer than the running version.
func (c *Checker) Check(ctx context.Context) (*Manifest, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building manifest request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching update manifest: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("update manifest returned HTTP %d", resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, false, fmt.Errorf("parsing update manifest: %w", err)
	}
	if m.Version == "" || m.URL == "" || m.SHA256 == "" {
		return nil, false, fmt.Errorf("update manifest is incomplete")
	}

	newer, err := IsNewer(c.current, m.Version)
	if err != nil {
		return nil, false, err
	}
	return &m, newer, nil
}

// IsNewer reports whether candidate is a strictly newer semantic version
// than current. An empty or unparsable current version (dev builds) is
// treated as older than any release.
func IsNewer(current, candidate string) (bool, error) {
	cand, err := goversion.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("invalid manifest version %q: %w", candidate, err)
	}
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return true, nil
	}
	return cand.GreaterThan(cur), nil
}
