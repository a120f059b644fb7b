package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Download fetches the release archive to a temporary file and verifies
// its SHA-256 against the manifest. Returns the archive path.
func (c *Checker) Download(ctx context.Context, m *Manifest) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading update: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update download returned HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "wowquest-update-*.zip")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer tmp.Close() //nolint:errcheck

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", fmt.Errorf("writing download: %w", err)
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	if !strings.EqualFold(sum, m.SHA256) {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", fmt.Errorf("checksum mismatch: manifest %s, downloaded %s", m.SHA256, sum)
	}
	return tmp.Name(), nil
}

// Extract unpacks the verified archive into destDir. Entry paths are
// checked against the destination to block zip-slip.
func Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening update archive: %w", err)
	}
	defer r.Close() //nolint:errcheck

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name) //nolint:gosec // checked below
		if rel, err := filepath.Rel(destDir, target); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("archive entry escapes extraction directory: %q", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", target, err)
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	defer dst.Close() //nolint:errcheck

	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // update archive is hash-verified
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return nil
}

// updaterName is the helper binary shipped inside the release archive. It
// replaces the running executable after this process exits.
func updaterName() string {
	if runtime.GOOS == "windows" {
		return "updater.exe"
	}
	return "updater"
}

// Launch starts the extracted updater, pointing it at the running binary,
// and returns without waiting. The caller is expected to exit promptly so
// the updater can swap the executable.
func Launch(stageDir string) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating running binary: %w", err)
	}
	updater := filepath.Join(stageDir, updaterName())
	if _, err := os.Stat(updater); err != nil {
		return fmt.Errorf("update archive is missing the updater binary: %w", err)
	}

	cmd := exec.Command(updater, "--target", self, "--source", stageDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting updater: %w", err)
	}
	return nil
}
