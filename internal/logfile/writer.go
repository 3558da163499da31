package logfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akave-ai/protokoll/internal/model"
)

const (
	filePrefix = "protokoll_"
	fileExt    = ".log"
	dayLayout  = "2006-01-02"
)

// FileName returns the day file name for the UTC calendar day of t,
// e.g. protokoll_2024-01-15.log.
func FileName(t time.Time) string {
	return filePrefix + t.UTC().Format(dayLayout) + fileExt
}

// ParseDay parses a YYYY-MM-DD string as a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}

// Writer appends records as JSON lines to the file of the current day.
// The day comes from the writer's clock, not from the record timestamp.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir. now defaults to time.Now.
func NewWriter(dir string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{dir: dir, now: now}
}

// Path returns the file the next Append will write to.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, FileName(w.now()))
}

// Append writes rec as one line. The directory is created when missing.
// Concurrent appends are not coordinated; each one is a single write on an
// O_APPEND descriptor.
func (w *Writer) Append(rec model.Record) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	out := model.Record{
		Level:     rec.Level,
		Timestamp: rec.Timestamp,
		Message:   rec.Message,
		Data:      model.NormalizeData(rec.Data),
	}
	if out.Level == "" {
		out.Level = model.DefaultLevel
	}

	var line bytes.Buffer
	enc := json.NewEncoder(&line)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	path := w.Path()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(line.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}
