package logfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/akave-ai/protokoll/internal/model"
)

// Follower streams entries appended to the current day file. When the day
// changes it moves on to the new file from its first line.
type Follower struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
	fsw    *fsnotify.Watcher

	name    string
	offset  int64
	partial string
}

// NewFollower starts watching dir. Lines already present in today's file
// are skipped; only later appends are emitted by Run.
func NewFollower(dir string, now func() time.Time, logger zerolog.Logger) (*Follower, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	f := &Follower{dir: dir, now: now, logger: logger, fsw: fsw, name: FileName(now())}
	if fi, err := os.Stat(filepath.Join(dir, f.name)); err == nil {
		f.offset = fi.Size()
	}
	return f, nil
}

// Run emits decoded entries until ctx is cancelled. It closes the watcher
// on return.
func (f *Follower) Run(ctx context.Context, emit func(model.Entry)) error {
	defer f.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-f.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if today := FileName(f.now()); today != f.name {
				f.name, f.offset, f.partial = today, 0, ""
			}
			if filepath.Base(ev.Name) != f.name {
				continue
			}
			if err := f.drain(emit); err != nil {
				f.logger.Warn().Err(err).Str("file", f.name).Msg("follow read failed")
			}
		case err, ok := <-f.fsw.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (f *Follower) drain(emit func(model.Entry)) error {
	file, err := os.Open(filepath.Join(f.dir, f.name))
	if err != nil {
		return err
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return err
	}
	if fi.Size() < f.offset {
		// truncated
		f.offset, f.partial = 0, ""
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	chunk, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.offset += int64(len(chunk))

	buf := f.partial + string(chunk)
	lines := strings.Split(buf, "\n")
	f.partial = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		emit(DecodeLine(line))
	}
	return nil
}
