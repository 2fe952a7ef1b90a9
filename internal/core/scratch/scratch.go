// Package scratch sweeps aged files out of the working directories.
// Downloads, frames, and clips are request-scoped artifacts; anything a
// client never collected gets reclaimed after a configured age.
package scratch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Janitor removes files older than MaxAge from Dirs. Directories that do
// not exist are skipped, not errors.
type Janitor struct {
	Dirs   []string
	MaxAge time.Duration

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)

	// now is overridable for tests.
	now func() time.Time
}

func (j *Janitor) logf(format string, args ...any) {
	if j.Logf != nil {
		j.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Sweep walks each directory once and deletes expired regular files.
// Per-file failures are collected and never stop the sweep. Returns the
// number of files removed.
func (j *Janitor) Sweep() (int, []error) {
	cutoff := time.Now()
	if j.now != nil {
		cutoff = j.now()
	}
	cutoff = cutoff.Add(-j.MaxAge)

	var (
		removed int
		errs    []error
	)
	for _, dir := range j.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("scan %s: %w", dir, err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				errs = append(errs, fmt.Errorf("stat %s: %w", entry.Name(), err))
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		j.logf("[scratch] removed %d expired files", removed)
	}
	return removed, errs
}

// Run sweeps on a fixed interval until stop is closed. Interval defaults
// to one hour.
func (j *Janitor) Run(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, errs := j.Sweep(); len(errs) > 0 {
				for _, err := range errs {
					j.logf("[scratch] %v", err)
				}
			}
		case <-stop:
			return
		}
	}
}
