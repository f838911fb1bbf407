package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/hsmod/lang"
)

func TestWatcher_HandleFlush(t *testing.T) {
	ctx, root, out := setup(t, lang.EncodingText)

	p, err := openProject(ctx)
	if err != nil {
		t.Fatal(err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer fsw.Close()

	w := &watcher{project: p, fsw: fsw, pending: map[string]struct{}{}}

	mapFile := filepath.Join(root, "lib", "Data", "Map.hs")
	writeFiles(t, root, map[string]string{"lib/Data/Map.hs": "module Data.Map where\n"})

	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: mapFile, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(root, "lib"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: mapFile, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: mapFile, Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		if got := w.handle(tt.ev); got != tt.want {
			t.Errorf("handle(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}

	if len(w.pending) != 1 {
		t.Fatalf("expected one pending file, got %v", w.pending)
	}

	if !slices.Contains(fsw.WatchList(), filepath.Join(root, "lib", "Data")) {
		t.Errorf("new directory not watched: %v", fsw.WatchList())
	}

	if err := w.flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(w.pending) != 0 {
		t.Error("pending files not cleared")
	}

	if _, ok := p.Tree(mapFile); !ok {
		t.Error("new file not loaded")
	}

	if !strings.Contains(out.String(), "4 files: 1 unresolved, 0 unparsable") {
		t.Errorf("unexpected report:\n%s", out)
	}

	out.Reset()

	if err := w.flush(ctx); err != nil || out.Len() != 0 {
		t.Errorf("flush without changes reported %q, %v", out, err)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestWatch_Run(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, queueFiles)

	var out syncBuffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ctx = WithOptions(ctx, Options{Roots: []string{root}, Stdout: &out})

	done := make(chan error, 1)

	go func() { done <- (&Watch{Debounce: 20 * time.Millisecond}).Run(ctx) }()

	waitFor := func(want string) {
		t.Helper()

		for !strings.Contains(out.String(), want) {
			select {
			case err := <-done:
				t.Fatalf("watch stopped early: %v\n%s", err, out.String())
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q in:\n%s", want, out.String())
			case <-time.After(10 * time.Millisecond):
			}
		}
	}

	waitFor("3 files: 2 unresolved")

	writeFiles(t, root, map[string]string{"src/Data/Map.hs": "module Data.Map where\n"})
	waitFor("4 files: 1 unresolved")

	cancel()

	if err := <-done; err != nil {
		t.Errorf("canceled watch returned %v", err)
	}
}
