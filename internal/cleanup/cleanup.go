// Package cleanup prunes the working tree after runs: scratch files go,
// old final bundles and logs are rotated, and stale cache entries expire.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Policy controls what survives a cleanup pass.
type Policy struct {
	KeepBundles int           // newest final bundles kept per channel
	KeepLogs    int           // newest log files kept
	CacheMaxAge time.Duration // cache entries older than this are removed
}

// DefaultPolicy keeps a week of dailies and three days of cache.
var DefaultPolicy = Policy{
	KeepBundles: 7,
	KeepLogs:    14,
	CacheMaxAge: 72 * time.Hour,
}

// Report summarizes one cleanup pass.
type Report struct {
	ScratchRemoved int
	BundlesRemoved int
	LogsRemoved    int
	CacheRemoved   int
	BytesFreed     int64
}

func (r Report) String() string {
	return fmt.Sprintf("removed %d scratch, %d bundles, %d logs, %d cache entries (%.1f MB freed)",
		r.ScratchRemoved, r.BundlesRemoved, r.LogsRemoved, r.CacheRemoved,
		float64(r.BytesFreed)/(1024*1024))
}

// Runner executes cleanup over the configured directories.
type Runner struct {
	OutputDir string
	CacheDir  string
	LogDir    string
	Policy    Policy
	Logf      func(format string, v ...any)

	// now is swapped in tests.
	now func() time.Time
}

// New returns a Runner with the default policy.
func New(outputDir, cacheDir, logDir string) *Runner {
	return &Runner{
		OutputDir: outputDir,
		CacheDir:  cacheDir,
		LogDir:    logDir,
		Policy:    DefaultPolicy,
		now:       time.Now,
	}
}

// Run performs the full pass. Missing directories are skipped, not errors.
func (r *Runner) Run() (Report, error) {
	var rep Report
	if err := r.purgeScratch(&rep); err != nil {
		return rep, err
	}
	if err := r.rotateBundles(&rep); err != nil {
		return rep, err
	}
	if err := r.rotateLogs(&rep); err != nil {
		return rep, err
	}
	if err := r.expireCache(&rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// purgeScratch removes per-run scratch directories under output/.
func (r *Runner) purgeScratch(rep *Report) error {
	entries, err := os.ReadDir(r.OutputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cleanup: read output dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "scratch-") {
			continue
		}
		path := filepath.Join(r.OutputDir, e.Name())
		rep.BytesFreed += dirSize(path)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("cleanup: remove %s: %w", path, err)
		}
		rep.ScratchRemoved++
	}
	return nil
}

// rotateBundles keeps the newest KeepBundles run directories per channel.
// Bundle directories are named <channel>-<runid>.
func (r *Runner) rotateBundles(rep *Report) error {
	entries, err := os.ReadDir(r.OutputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cleanup: read output dir: %w", err)
	}
	byChannel := make(map[string][]os.DirEntry)
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), "scratch-") {
			continue
		}
		channel, _, ok := strings.Cut(e.Name(), "-")
		if !ok {
			continue
		}
		byChannel[channel] = append(byChannel[channel], e)
	}
	for _, group := range byChannel {
		sort.Slice(group, func(i, j int) bool {
			return modTime(group[i]).After(modTime(group[j]))
		})
		if len(group) <= r.Policy.KeepBundles {
			continue
		}
		for _, e := range group[r.Policy.KeepBundles:] {
			path := filepath.Join(r.OutputDir, e.Name())
			rep.BytesFreed += dirSize(path)
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("cleanup: remove bundle %s: %w", path, err)
			}
			rep.BundlesRemoved++
			r.logf("rotated out bundle %s", e.Name())
		}
	}
	return nil
}

func (r *Runner) rotateLogs(rep *Report) error {
	entries, err := os.ReadDir(r.LogDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cleanup: read log dir: %w", err)
	}
	var logs []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return modTime(logs[i]).After(modTime(logs[j]))
	})
	if len(logs) <= r.Policy.KeepLogs {
		return nil
	}
	for _, e := range logs[r.Policy.KeepLogs:] {
		path := filepath.Join(r.LogDir, e.Name())
		if info, err := e.Info(); err == nil {
			rep.BytesFreed += info.Size()
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("cleanup: remove log %s: %w", path, err)
		}
		rep.LogsRemoved++
	}
	return nil
}

func (r *Runner) expireCache(rep *Report) error {
	entries, err := os.ReadDir(r.CacheDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cleanup: read cache dir: %w", err)
	}
	cutoff := r.now().Add(-r.Policy.CacheMaxAge)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(r.CacheDir, e.Name())
		rep.BytesFreed += info.Size()
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("cleanup: remove cache %s: %w", path, err)
		}
		rep.CacheRemoved++
	}
	return nil
}

func modTime(e os.DirEntry) time.Time {
	info, err := e.Info()
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func dirSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func (r *Runner) logf(format string, v ...any) {
	if r.Logf != nil {
		r.Logf(format, v...)
	}
}
