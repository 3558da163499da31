package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akave-ai/protokoll/internal/model"
)

// ErrNotFound is returned by Read when no file exists for the requested day.
var ErrNotFound = errors.New("log file not found")

// ReadResult is the decoded content of one day file, in file order.
type ReadResult struct {
	Count   int           `json:"count"`
	Entries []model.Entry `json:"logs"`
}

// Reader decodes day files written by Writer, and older plain-text files.
type Reader struct {
	dir string
}

// NewReader returns a Reader rooted at dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Path returns the file that holds the given day.
func (r *Reader) Path(day time.Time) string {
	return filepath.Join(r.dir, FileName(day))
}

// Read loads and decodes the file for day. A missing file yields an error
// wrapping ErrNotFound; every other failure is an I/O error.
func (r *Reader) Read(day time.Time) (ReadResult, error) {
	path := r.Path(day)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ReadResult{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return ReadResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	entries := Decode(string(content))
	return ReadResult{Count: len(entries), Entries: entries}, nil
}

// Decode splits content on line boundaries, skips blank lines and decodes
// the rest. Every non-blank line yields exactly one entry.
func Decode(content string) []model.Entry {
	lines := strings.Split(content, "\n")
	entries := make([]model.Entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, DecodeLine(line))
	}
	return entries
}
