package project

import (
	"context"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/log"
)

// Extension is the file extension of Haskell sources loaded from disk.
const Extension = ".hs"

// Project is a set of parsed Haskell files that resolve module references
// against each other. It implements [lang.Scope].
//
// The file set is guarded by its own lock. A tree lock is never acquired
// while that lock is held, so trees may call back into the project while
// locked for writing.
type Project struct {
	mu       sync.RWMutex
	trees    map[string]*lang.Tree
	failures map[string]error

	// edits counts changes to the file set. Together with the generations of
	// the member trees it forms the project generation.
	edits atomic.Uint64

	indexMu sync.Mutex
	index   declIndex

	logger    log.Logger
	presenter lang.Presenter
}

// Option configures a [Project].
type Option func(*Project)

// WithLogger sets the structured logger. The logger is also handed to every
// tree the project parses.
func WithLogger(logger log.Logger) Option {
	return func(p *Project) {
		p.logger = logger
	}
}

// WithPresenter overrides the presentation of module identifiers in every
// tree of the project.
func WithPresenter(presenter lang.Presenter) Option {
	return func(p *Project) {
		p.presenter = presenter
	}
}

// New creates an empty project.
func New(opts ...Option) *Project {
	p := &Project{
		trees:    make(map[string]*lang.Tree),
		failures: make(map[string]error),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Load walks each root for Haskell sources and adds them to the project.
// A root may also name a single file. Files that fail to parse are recorded
// in [Project.Failures] and do not stop the walk.
func (p *Project) Load(ctx context.Context, roots ...string) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			if entry.IsDir() {
				if path != root && SkipDir(entry.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if filepath.Ext(path) != Extension {
				return nil
			}

			return p.loadFile(ctx, path)
		})
		if err != nil {
			return lang.ErrReadInput.Wrap(err).With(slog.String("root", root))
		}
	}

	p.logger.DebugContext(ctx, "project loaded",
		slog.Int("files", p.Len()),
		slog.Int("failures", len(p.Failures())),
	)

	return nil
}

// SkipDir reports whether a directory named name is never searched for
// sources: build output, vendored code and hidden directories.
func SkipDir(name string) bool {
	switch name {
	case "dist", "dist-newstyle", ".stack-work", "node_modules", "vendor":
		return true
	}

	return strings.HasPrefix(name, ".")
}

func (p *Project) loadFile(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tree, err := lang.ParseReader(ctx, f, p.treeOptions(path)...)
	if err != nil {
		p.fail(ctx, path, err)

		return nil
	}

	p.add(path, tree)

	return nil
}

// AddSource parses src as the file at path. An existing tree for path is
// reparsed in place, which invalidates its node handles.
func (p *Project) AddSource(ctx context.Context, path, src string) (*lang.Tree, error) {
	path = filepath.Clean(path)

	if tree, ok := p.Tree(path); ok {
		if err := tree.Reparse(ctx, src); err != nil {
			p.fail(ctx, path, err)

			return nil, err
		}

		p.mu.Lock()
		delete(p.failures, path)
		p.mu.Unlock()

		return tree, nil
	}

	tree, err := lang.ParseString(ctx, src, p.treeOptions(path)...)
	if err != nil {
		p.fail(ctx, path, err)

		return nil, err
	}

	p.add(path, tree)

	return tree, nil
}

// Reload re-reads the file at path from disk. A file that no longer exists
// is removed from the project.
func (p *Project) Reload(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		p.Remove(path)

		return nil
	}

	if err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	_, err = p.AddSource(ctx, path, string(data))

	return err
}

// Remove drops the file at path and closes its tree. It reports whether the
// file was part of the project.
func (p *Project) Remove(path string) bool {
	path = filepath.Clean(path)

	p.mu.Lock()
	tree, ok := p.trees[path]
	delete(p.trees, path)
	delete(p.failures, path)

	if ok {
		// Keep the generation monotonic once the tree leaves the sum.
		p.edits.Add(tree.Generation() + 1)
	}
	p.mu.Unlock()

	if ok {
		tree.Close()
	}

	return ok
}

// Tree returns the tree of the file at path.
func (p *Project) Tree(path string) (*lang.Tree, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, ok := p.trees[filepath.Clean(path)]

	return tree, ok
}

// Trees returns every tree ordered by path.
func (p *Project) Trees() []*lang.Tree {
	p.mu.RLock()
	defer p.mu.RUnlock()

	paths := slices.Sorted(maps.Keys(p.trees))
	trees := make([]*lang.Tree, len(paths))

	for i, path := range paths {
		trees[i] = p.trees[path]
	}

	return trees
}

// Len returns the number of files in the project.
func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.trees)
}

// Failures returns the parse errors of files that could not be added,
// keyed by path.
func (p *Project) Failures() map[string]error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return maps.Clone(p.failures)
}

// Generation returns a counter that increases whenever a file is added,
// removed, reparsed or edited.
func (p *Project) Generation() uint64 {
	p.mu.RLock()
	gen := p.edits.Load()

	for _, tree := range p.trees {
		gen += tree.Generation()
	}
	p.mu.RUnlock()

	return gen
}

func (p *Project) treeOptions(path string) []lang.Option {
	opts := []lang.Option{
		lang.WithPath(path),
		lang.WithScope(p),
		lang.WithLogger(p.logger),
	}

	if p.presenter != nil {
		opts = append(opts, lang.WithPresenter(p.presenter))
	}

	return opts
}

func (p *Project) add(path string, tree *lang.Tree) {
	p.mu.Lock()
	old, replaced := p.trees[path]
	p.trees[path] = tree
	delete(p.failures, path)
	p.edits.Add(1)

	if replaced {
		p.edits.Add(old.Generation())
	}
	p.mu.Unlock()

	if replaced {
		old.Close()
	}
}

func (p *Project) fail(ctx context.Context, path string, err error) {
	p.mu.Lock()
	p.failures[path] = err
	p.mu.Unlock()

	p.logger.WarnContext(ctx, "skipping file",
		slog.String("path", path),
		slog.Any("error", err),
	)
}
