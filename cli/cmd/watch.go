package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// Watch re-runs check whenever Haskell sources under the roots change.
// It runs until interrupted.
type Watch struct {
	Debounce time.Duration `default:"250ms" help:"Quiet period after the last change before checking."`
}

// Run executes the watch command.
func (c *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer fsw.Close()

	w := &watcher{project: p, fsw: fsw, pending: map[string]struct{}{}}

	for _, root := range optionsFrom(ctx).Roots {
		if err := w.addTree(root); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("root", root))
		}
	}

	if err := w.report(ctx); err != nil {
		return err
	}

	return w.run(ctx, c.Debounce)
}

// watcher batches file events and reloads the changed files.
type watcher struct {
	project *project.Project
	fsw     *fsnotify.Watcher
	pending map[string]struct{}
}

// addTree watches root and every searched directory below it. A root that
// names a file is watched through its directory.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			if path == root {
				return w.fsw.Add(filepath.Dir(path))
			}

			return nil
		}

		if path != root && project.SkipDir(entry.Name()) {
			return filepath.SkipDir
		}

		return w.fsw.Add(path)
	})
}

func (w *watcher) run(ctx context.Context, debounce time.Duration) error {
	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), context.Canceled) {
				return nil
			}

			return context.Cause(ctx)

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if w.handle(ev) {
				timer.Reset(debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			if err := w.flush(ctx); err != nil {
				return err
			}
		}
	}
}

// handle records a file event and reports whether a check is due. New
// directories are watched as they appear.
func (w *watcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if base := filepath.Base(ev.Name); !project.SkipDir(base) {
			// Not a directory, or already gone: nothing to add.
			_ = w.addDir(ev.Name)
		}
	}

	if filepath.Ext(ev.Name) != project.Extension || ev.Op == fsnotify.Chmod {
		return false
	}

	w.pending[filepath.Clean(ev.Name)] = struct{}{}

	return true
}

func (w *watcher) addDir(path string) error {
	return filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return err
		}

		if p != path && project.SkipDir(entry.Name()) {
			return filepath.SkipDir
		}

		return w.fsw.Add(p)
	})
}

// flush reloads every pending file and reports the check result.
func (w *watcher) flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}

	slices.Sort(paths)
	clear(w.pending)

	for _, path := range paths {
		if err := w.project.Reload(ctx, path); err != nil {
			log.WarnContext(ctx, "reload failed", slog.String("path", path), slog.Any("error", err))
		}
	}

	log.DebugContext(ctx, "files changed", slog.Any("paths", paths))

	return w.report(ctx)
}

func (w *watcher) report(ctx context.Context) error {
	result, err := check(ctx, w.project)
	if err != nil {
		return err
	}

	return emit(ctx, result)
}
