// Package retention caps how many upload and output files are kept on disk,
// removing the oldest by modification time.
package retention

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
)

// Rule keeps the newest Keep files in Dir whose names match Pattern
// (filepath.Match syntax). Hidden files are never counted or removed; the
// pipeline uses them for in-flight writes.
type Rule struct {
	Dir     string
	Pattern string
	Keep    int
}

// Sweeper applies a set of rules.
type Sweeper struct {
	Rules []Rule
	Log   zerolog.Logger
}

// ForSettings returns the sweeper for the web service's directories: uploads
// per extension, and annotated outputs and reports as separate kinds.
func ForSettings(s config.Settings, log zerolog.Logger) *Sweeper {
	keep := s.RetainFiles
	return &Sweeper{
		Log: log,
		Rules: []Rule{
			{Dir: s.UploadDir, Pattern: "*_*.xlsx", Keep: keep},
			{Dir: s.UploadDir, Pattern: "*_*.xls", Keep: keep},
			{Dir: s.UploadDir, Pattern: "*_*.csv", Keep: keep},
			{Dir: s.DownloadDir, Pattern: "*_Validated_Output_*.xlsx", Keep: keep},
			{Dir: s.DownloadDir, Pattern: "*_Validation_Report_*", Keep: keep},
		},
	}
}

type entry struct {
	path string
	mod  time.Time
}

// Sweep applies every rule and returns the removed paths. A failure to list
// or remove one file does not stop the sweep; all such errors are joined.
func (s *Sweeper) Sweep() ([]string, error) {
	var (
		removed []string
		errs    []error
	)
	for _, r := range s.Rules {
		rm, err := s.apply(r)
		removed = append(removed, rm...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

func (s *Sweeper) apply(r Rule) ([]string, error) {
	if r.Keep < 0 {
		return nil, fmt.Errorf("retention: keep must not be negative for %s", r.Pattern)
	}
	matches, err := filepath.Glob(filepath.Join(r.Dir, r.Pattern))
	if err != nil {
		return nil, fmt.Errorf("retention: pattern %q: %w", r.Pattern, err)
	}

	var files []entry
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".") {
			continue
		}
		st, err := os.Stat(m)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		files = append(files, entry{path: m, mod: st.ModTime()})
	}
	if len(files) <= r.Keep {
		return nil, nil
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.Before(files[j].mod)
		}
		return files[i].path < files[j].path
	})

	var (
		removed []string
		errs    []error
	)
	for _, f := range files[:len(files)-r.Keep] {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.Log.Error().Err(err).Str("path", f.path).Msg("retention: remove failed")
			errs = append(errs, err)
			continue
		}
		s.Log.Info().Str("path", f.path).Msg("retention: removed old file")
		removed = append(removed, f.path)
	}
	return removed, errors.Join(errs...)
}
