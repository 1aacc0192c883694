package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsFITS(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"m42.fits", true},
		{"M42.FITS", true},
		{"frame.fit", true},
		{"frame.fts", true},
		{"frame.png", false},
		{"fits", false},
		{"dir/frame.fits", true},
	}
	for _, tt := range tests {
		if got := IsFITS(tt.path); got != tt.want {
			t.Errorf("IsFITS(%q): want %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestExistingSortsByModTime(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.fits")
	mid := filepath.Join(dir, "sub", "mid.fit")
	newest := filepath.Join(dir, "new.fts")
	ignored := filepath.Join(dir, "notes.txt")

	if err := os.MkdirAll(filepath.Dir(mid), 0o755); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	for i, spec := range []struct {
		path string
		age  time.Duration
	}{
		{old, 3 * time.Hour},
		{mid, 2 * time.Hour},
		{newest, time.Hour},
		{ignored, 0},
	} {
		if err := os.WriteFile(spec.path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		mtime := now.Add(-spec.age)
		if err := os.Chtimes(spec.path, mtime, mtime); err != nil {
			t.Fatalf("Chtimes %d: %v", i, err)
		}
	}

	got, err := Existing(dir)
	if err != nil {
		t.Fatalf("Existing: %v", err)
	}
	want := []string{old, mid, newest}
	if len(got) != len(want) {
		t.Fatalf("files: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: want %v, got %v", want, got)
		}
	}
}

func TestWatchReportsNewFITSOnce(t *testing.T) {
	dir := t.TempDir()

	found := make(chan string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(path string) { found <- path })
	}()

	// Give the watcher a moment to install.
	time.Sleep(100 * time.Millisecond)

	frame := filepath.Join(dir, "m42.fits")
	if err := os.WriteFile(frame, []byte("SIMPLE"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-found:
		if got != frame {
			t.Errorf("reported path: want %s, got %s", frame, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// The non-FITS file must not have been reported.
	select {
	case got := <-found:
		t.Errorf("unexpected extra report: %s", got)
	default:
	}
}
