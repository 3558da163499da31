package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ListDays returns the days that have a file in dir, oldest first.
// Files whose name does not carry a valid date are ignored.
func ListDays(dir string) ([]time.Time, error) {
	// Globbing inside an fs.FS rooted at dir keeps dir itself out of the
	// pattern, so its name needs no escaping.
	matches, err := doublestar.Glob(os.DirFS(dir), filePrefix+"*"+fileExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list day files: %w", err)
	}

	days := make([]time.Time, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), filePrefix), fileExt)
		day, err := ParseDay(name)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
