// Package logging persists per-case detail to disk so a failing run leaves
// evidence behind after the process exits.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/broadcastkit/conform/types"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileLogger writes one log file per executed case under
// <baseDir>/<runID>/.
type FileLogger struct {
	dir string
}

// NewFileLogger creates the run's log directory.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &FileLogger{dir: dir}, nil
}

// Dir returns the run's log directory.
func (fl *FileLogger) Dir() string {
	return fl.dir
}

// WriteCaseLog records one case's result. Detail text may contain ANSI
// escapes captured from the implementation under test; they are stripped so
// the files are grep-friendly.
func (fl *FileLogger) WriteCaseLog(r types.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", r.Name)
	fmt.Fprintf(&b, "description: %s\n", r.Description)
	fmt.Fprintf(&b, "outcome: %s\n", r.Outcome)
	fmt.Fprintf(&b, "started: %s\n", r.StartTime.Format("2006-01-02T15:04:05.000Z07:00"))
	fmt.Fprintf(&b, "duration: %s\n", r.Duration())
	if r.Link != "" {
		fmt.Fprintf(&b, "link: %s\n", r.Link)
	}
	if r.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", stripansi.Strip(r.Detail))
	}

	path := filepath.Join(fl.dir, safeFilename(r.Name)+".log")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing case log %s: %w", path, err)
	}
	return nil
}

func safeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "unnamed"
	}
	return cleaned
}
