package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mkdirWithFile(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data"), []byte("xxxx"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func TestScratchPurged(t *testing.T) {
	out := t.TempDir()
	mkdirWithFile(t, filepath.Join(out, "scratch-abc"))
	mkdirWithFile(t, filepath.Join(out, "tech-run1"))

	r := New(out, t.TempDir(), t.TempDir())
	rep, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.ScratchRemoved != 1 {
		t.Errorf("ScratchRemoved = %d, want 1", rep.ScratchRemoved)
	}
	if _, err := os.Stat(filepath.Join(out, "scratch-abc")); !os.IsNotExist(err) {
		t.Error("scratch dir survived")
	}
	if _, err := os.Stat(filepath.Join(out, "tech-run1")); err != nil {
		t.Error("bundle dir should survive")
	}
	if rep.BytesFreed == 0 {
		t.Error("BytesFreed not counted")
	}
}

func TestBundleRotationPerChannel(t *testing.T) {
	out := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		dir := filepath.Join(out, "tech-run"+string(rune('a'+i)))
		mkdirWithFile(t, dir)
		at := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(dir, at, at); err != nil {
			t.Fatal(err)
		}
	}
	mkdirWithFile(t, filepath.Join(out, "funny-run1"))

	r := New(out, t.TempDir(), t.TempDir())
	r.Policy.KeepBundles = 2
	rep, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if rep.BundlesRemoved != 2 {
		t.Errorf("BundlesRemoved = %d, want 2", rep.BundlesRemoved)
	}
	// The two newest tech bundles and the lone funny bundle remain.
	for _, name := range []string{"tech-runc", "tech-rund", "funny-run1"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s should survive", name)
		}
	}
	for _, name := range []string{"tech-runa", "tech-runb"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s should be rotated out", name)
		}
	}
}

func TestLogRotation(t *testing.T) {
	logs := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		touch(t, filepath.Join(logs, "run"+string(rune('a'+i))+".log"), base.Add(time.Duration(i)*time.Minute))
	}
	touch(t, filepath.Join(logs, "notes.txt"), base)

	r := New(t.TempDir(), t.TempDir(), logs)
	r.Policy.KeepLogs = 3
	rep, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if rep.LogsRemoved != 2 {
		t.Errorf("LogsRemoved = %d, want 2", rep.LogsRemoved)
	}
	if _, err := os.Stat(filepath.Join(logs, "notes.txt")); err != nil {
		t.Error("non-log files must not be touched")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := t.TempDir()
	old := time.Now().Add(-100 * time.Hour)
	touch(t, filepath.Join(cache, "old.mp4"), old)
	touch(t, filepath.Join(cache, "fresh.mp4"), time.Now())

	r := New(t.TempDir(), cache, t.TempDir())
	rep, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if rep.CacheRemoved != 1 {
		t.Errorf("CacheRemoved = %d, want 1", rep.CacheRemoved)
	}
	if _, err := os.Stat(filepath.Join(cache, "fresh.mp4")); err != nil {
		t.Error("fresh cache entry removed")
	}
}

func TestMissingDirsAreFine(t *testing.T) {
	r := New("/nonexistent/out", "/nonexistent/cache", "/nonexistent/logs")
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run on missing dirs: %v", err)
	}
}
