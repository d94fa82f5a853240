package serial

import (
	"os"
	"path/filepath"
	"sort"
)

// Discover globs the candidate path patterns and returns matches ordered
// by modification time, most recent first. The most recently touched
// device path is the best guess for the currently active link when
// stale entries from earlier sessions are still present.
func Discover(patterns []string) ([]string, error) {
	var candidates []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, matches...)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	type entry struct {
		path  string
		mtime int64
	}
	entries := make([]entry, 0, len(candidates))
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		entries = append(entries, entry{path: p, mtime: info.ModTime().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime > entries[j].mtime })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.path
	}
	return out, nil
}
