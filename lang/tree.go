package lang

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ardnew/hsmod/log"
)

// Tree is the syntax tree of one Haskell source file.
//
// The tree is the sole owner of node storage. Nodes live in an arena and
// refer to their parent and children by index. Reads take the tree's read
// lock; renames take the write lock.
type Tree struct {
	mu    sync.RWMutex
	seq   uint64 // creation order, breaks lock-order ties between equal paths
	path  string
	src   []byte
	lines lineIndex
	nodes []node

	closed  bool
	epoch   atomic.Uint64 // advanced by Reparse and Close
	version atomic.Uint64 // advanced by in-place edits

	scope     Scope
	presenter Presenter
	logger    log.Logger

	refMu sync.Mutex
	refs  map[NodeID]cachedResolution
}

// Option configures a [Tree].
type Option func(*Tree)

// WithPath sets the file path reported in presentations and errors.
func WithPath(path string) Option {
	return func(t *Tree) {
		t.path = path
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithScope sets the scope used to resolve references across files.
// Without a scope, references resolve within the tree only.
func WithScope(scope Scope) Option {
	return func(t *Tree) {
		t.scope = scope
	}
}

// WithPresenter overrides the default presentation of module identifiers.
func WithPresenter(p Presenter) Option {
	return func(t *Tree) {
		t.presenter = p
	}
}

// applyOptions applies functional options to a tree.
func applyOptions(t *Tree, opts ...Option) {
	for _, opt := range opts {
		opt(t)
	}
}

// treeSeq numbers trees in creation order.
var treeSeq atomic.Uint64

// newTree wraps a parsed arena. The arena is owned by the new tree.
func newTree(src []byte, nodes []node, opts ...Option) *Tree {
	t := &Tree{
		seq:   treeSeq.Add(1),
		src:   src,
		lines: makeLineIndex(src),
		nodes: nodes,
	}

	t.epoch.Store(1)
	applyOptions(t, opts...)

	return t
}

// Path returns the file path of the tree.
func (t *Tree) Path() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.path
}

// SetScope attaches the tree to a scope.
func (t *Tree) SetScope(scope Scope) {
	t.mu.Lock()
	t.scope = scope
	t.mu.Unlock()

	t.clearReferences()
}

// Source returns a copy of the current source text.
func (t *Tree) Source() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return string(t.src)
}

// Epoch returns the structural generation of the tree.
func (t *Tree) Epoch() uint64 { return t.epoch.Load() }

// Version returns the number of in-place edits applied to the tree.
func (t *Tree) Version() uint64 { return t.version.Load() }

// Generation combines epoch and version into a monotonic change counter.
func (t *Tree) Generation() uint64 { return t.epoch.Load() + t.version.Load() }

// Closed reports whether the tree has been closed.
func (t *Tree) Closed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.closed
}

// Root returns the file node.
func (t *Tree) Root() Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.handle(0)
}

// Position converts a byte offset into a line/column position.
func (t *Tree) Position(offset int) Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.positionLocked(offset)
}

// Offset converts a 1-based line and column into a byte offset.
func (t *Tree) Offset(line, column int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lines.offset(t.src, line, column)
}

// Reparse replaces the source text and rebuilds the tree.
// Every handle obtained before the call becomes stale. On a parse error the
// tree is left unchanged.
func (t *Tree) Reparse(ctx context.Context, src string) error {
	nodes, err := parseArena(ctx, []byte(src), t.Path(), t.logger)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.src = []byte(src)
	t.lines = makeLineIndex(t.src)
	t.nodes = nodes
	t.epoch.Add(1)
	t.mu.Unlock()

	t.clearReferences()

	t.logger.TraceContext(ctx, "tree reparsed",
		slog.String("path", t.path),
		slog.Uint64("epoch", t.epoch.Load()),
		slog.Int("node_count", len(nodes)),
	)

	return nil
}

// Close detaches every node from the tree. Subsequent access through any
// handle fails with [ErrStaleNode].
func (t *Tree) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	t.closed = true
	t.epoch.Add(1)
}

// All returns an iterator over all live nodes in depth-first source order.
func (t *Tree) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		t.mu.RLock()
		handles := t.walkLocked(0, nil)
		t.mu.RUnlock()

		for _, n := range handles {
			if !yield(n) {
				return
			}
		}
	}
}

// ModuleIdentifiers returns every module identifier of the tree in source
// order.
func (t *Tree) ModuleIdentifiers() []ModuleIdentifier {
	var out []ModuleIdentifier

	for n := range t.All() {
		if m, ok := asModuleIdentifier(n); ok {
			out = append(out, m)
		}
	}

	return out
}

// Declaration returns the identifier of the "module M where" header.
// Files without a header have no declaration.
func (t *Tree) Declaration() (ModuleIdentifier, bool) {
	for _, m := range t.ModuleIdentifiers() {
		if m.Role() == RoleDeclaration {
			return m, true
		}
	}

	return ModuleIdentifier{}, false
}

// ModuleName returns the declared module name, or "Main" for files without
// a module header.
func (t *Tree) ModuleName() string {
	if decl, ok := t.Declaration(); ok {
		if name, err := decl.Name(); err == nil {
			return name
		}
	}

	return implicitModuleName
}

// Imports returns the imported module identifiers in source order.
func (t *Tree) Imports() []ModuleIdentifier {
	var out []ModuleIdentifier

	for _, m := range t.ModuleIdentifiers() {
		if m.Role() == RoleImport {
			out = append(out, m)
		}
	}

	return out
}

// ModuleIdentifierAt returns the module identifier whose name covers the
// given byte offset.
func (t *Tree) ModuleIdentifierAt(offset int) (ModuleIdentifier, bool) {
	for _, m := range t.ModuleIdentifiers() {
		span, err := m.Span()
		if err != nil {
			continue
		}

		if span.Start <= offset && offset < span.End {
			return m, true
		}
	}

	return ModuleIdentifier{}, false
}

// implicitModuleName is the module name of a file without a header.
const implicitModuleName = "Main"

func (t *Tree) handle(id NodeID) Node {
	return Node{tree: t, id: id, epoch: t.epoch.Load()}
}

// checkLocked validates a handle. The caller holds t.mu.
func (t *Tree) checkLocked(n Node) error {
	if n.tree != t || t.closed || n.epoch != t.epoch.Load() ||
		n.id < 0 || int(n.id) >= len(t.nodes) {
		return ErrStaleNode.With(
			slog.String("path", t.path),
			slog.Int("node", int(n.id)),
		)
	}

	return nil
}

func (t *Tree) textLocked(id NodeID) string {
	span := t.nodes[id].span

	return string(t.src[span.Start:span.End])
}

func (t *Tree) positionLocked(offset int) Position {
	return t.lines.position(t.src, offset)
}

func (t *Tree) walkLocked(id NodeID, out []Node) []Node {
	if t.closed || int(id) >= len(t.nodes) {
		return out
	}

	out = append(out, t.handle(id))

	for _, child := range t.nodes[id].children {
		out = t.walkLocked(child, out)
	}

	return out
}

// childOfKindLocked returns the first child of id with the given kind.
func (t *Tree) childOfKindLocked(id NodeID, kind Kind) (NodeID, bool) {
	for _, child := range t.nodes[id].children {
		if t.nodes[child].kind == kind {
			return child, true
		}
	}

	return NoNode, false
}

// replaceLocked replaces the text of span with text and shifts every span
// at or after the edit. Nodes enclosing the edit grow or shrink with it.
// The caller holds the write lock.
func (t *Tree) replaceLocked(span Span, text string) {
	delta := len(text) - span.Len()

	src := make([]byte, 0, len(t.src)+delta)
	src = append(src, t.src[:span.Start]...)
	src = append(src, text...)
	src = append(src, t.src[span.End:]...)

	for i := range t.nodes {
		s := &t.nodes[i].span

		switch {
		case s.Start >= span.End && s.Start > span.Start:
			s.Start += delta
			s.End += delta

		case s.End >= span.End:
			s.End += delta
		}
	}

	t.src = src
	t.lines = makeLineIndex(src)
	t.version.Add(1)
}
