package lang

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
)

// Batch holds the write locks of a set of trees so that edits spanning
// several files are applied atomically.
type Batch struct {
	trees  []*Tree
	edited map[*Tree]bool
	done   bool
}

// LockTrees acquires the write lock of every tree in path order and returns
// the batch holding them. Trees sharing a path are ordered by creation.
// Duplicates are locked once. The caller must call [Batch.Unlock].
func LockTrees(trees ...*Tree) *Batch {
	sorted := slices.Clone(trees)
	slices.SortFunc(sorted, func(a, b *Tree) int {
		return cmp.Or(cmp.Compare(a.path, b.path), cmp.Compare(a.seq, b.seq))
	})
	sorted = slices.Compact(sorted)

	for _, t := range sorted {
		t.mu.Lock()
	}

	return &Batch{trees: sorted, edited: make(map[*Tree]bool)}
}

// Check fails with [ErrStaleNode] unless every identifier is live and
// belongs to a tree of the batch.
func (b *Batch) Check(ids ...ModuleIdentifier) error {
	for _, m := range ids {
		if !b.holds(m.tree) {
			return ErrStaleNode.With(slog.String("issue", "tree not locked"))
		}

		if _, err := m.tree.nameIdentifierLocked(m.Node); err != nil {
			return err
		}
	}

	return nil
}

// Rename renames a module identifier whose tree is held by the batch. The
// name must already be valid.
func (b *Batch) Rename(ctx context.Context, m ModuleIdentifier, name string) error {
	if err := ValidateModuleName(name); err != nil {
		return err
	}

	if err := b.Check(m); err != nil {
		return err
	}

	old, err := m.tree.renameLocked(m.Node, name)
	if err != nil {
		return err
	}

	b.edited[m.tree] = true

	m.tree.logger.TraceContext(ctx, "batch rename",
		slog.String("path", m.tree.path),
		slog.String("old", old),
		slog.String("new", name),
	)

	return nil
}

// Unlock releases every lock held by the batch and drops the cached
// resolutions of edited trees. Calling Unlock twice is a no-op.
func (b *Batch) Unlock() {
	if b.done {
		return
	}

	b.done = true

	for i := len(b.trees) - 1; i >= 0; i-- {
		b.trees[i].mu.Unlock()
	}

	for t := range b.edited {
		t.clearReferences()
	}
}

func (b *Batch) holds(t *Tree) bool {
	return t != nil && slices.Contains(b.trees, t)
}
