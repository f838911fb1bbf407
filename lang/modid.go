package lang

import (
	"context"
	"log/slog"
)

// ModuleIdentifier is the module-name variant of [Node]: the name in a
// module header, a "module M" export, an import target or an import alias.
//
// Its name always equals the text of its name identifier, the single
// [KindModuleName] child that spans the same source text.
type ModuleIdentifier struct {
	Node
}

// As converts a generic node handle to a module identifier.
func As(n Node) (ModuleIdentifier, error) {
	if n.tree == nil {
		return ModuleIdentifier{}, ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return ModuleIdentifier{}, err
	}

	if kind := n.tree.nodes[n.id].kind; kind != KindModid {
		return ModuleIdentifier{}, ErrNotModuleIdentifier.With(
			slog.String("kind", kind.String()),
		)
	}

	return ModuleIdentifier{n}, nil
}

func asModuleIdentifier(n Node) (ModuleIdentifier, bool) {
	m, err := As(n)

	return m, err == nil
}

// Role returns the syntactic role of the identifier, or [RoleNone] for a
// stale handle.
func (m ModuleIdentifier) Role() Role {
	t := m.tree
	if t == nil {
		return RoleNone
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.checkLocked(m.Node) != nil {
		return RoleNone
	}

	return t.nodes[m.id].role
}

// Name returns the module name. It fails with [ErrStaleNode] once the tree
// has been reparsed or closed.
func (m ModuleIdentifier) Name() (string, error) {
	t := m.tree
	if t == nil {
		return "", ErrStaleNode
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	id, err := t.nameIdentifierLocked(m.Node)
	if err != nil {
		return "", err
	}

	return t.textLocked(id), nil
}

// NameIdentifier returns the node anchoring the name text.
func (m ModuleIdentifier) NameIdentifier() (Node, error) {
	t := m.tree
	if t == nil {
		return Node{}, ErrStaleNode
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	id, err := t.nameIdentifierLocked(m.Node)
	if err != nil {
		return Node{}, err
	}

	return t.handle(id), nil
}

// SetName renames the identifier in place. Invalid names fail with
// [ErrMalformedIdentifier] and leave the tree unchanged. Only this node is
// edited; use the project rename to update every reference.
func (m ModuleIdentifier) SetName(ctx context.Context, name string) (Node, error) {
	renamed, err := m.Rename(ctx, name)
	if err != nil {
		return Node{}, err
	}

	return renamed.Node, nil
}

// Rename is the typed form of [ModuleIdentifier.SetName].
func (m ModuleIdentifier) Rename(ctx context.Context, name string) (ModuleIdentifier, error) {
	if err := ValidateModuleName(name); err != nil {
		return ModuleIdentifier{}, err
	}

	t := m.tree
	if t == nil {
		return ModuleIdentifier{}, ErrStaleNode
	}

	t.mu.Lock()
	old, err := t.renameLocked(m.Node, name)
	t.mu.Unlock()

	if err != nil {
		return ModuleIdentifier{}, err
	}

	t.clearReferences()

	t.logger.TraceContext(ctx, "module identifier renamed",
		slog.String("path", t.path),
		slog.String("old", old),
		slog.String("new", name),
		slog.Uint64("version", t.version.Load()),
	)

	return m, nil
}

// Reference returns the lazily resolved link to the module declaration the
// identifier denotes.
func (m ModuleIdentifier) Reference() *Reference {
	return &Reference{source: m}
}

// Presentation returns the display projection of the identifier.
func (m ModuleIdentifier) Presentation() (Presentation, error) {
	t := m.tree
	if t == nil {
		return Presentation{}, ErrStaleNode
	}

	t.mu.RLock()

	id, err := t.nameIdentifierLocked(m.Node)
	if err != nil {
		t.mu.RUnlock()

		return Presentation{}, err
	}

	def := Presentation{
		Label: t.textLocked(id),
		Icon:  iconOf(t.nodes[m.id].role),
	}

	if t.path != "" {
		def.Location = t.path + ":" + t.positionLocked(t.nodes[id].span.Start).String()
	}

	presenter := t.presenter
	t.mu.RUnlock()

	if presenter != nil {
		return presenter(m, def), nil
	}

	return def, nil
}

// nameIdentifierLocked returns the ModuleName child of a module identifier.
func (t *Tree) nameIdentifierLocked(n Node) (NodeID, error) {
	if err := t.checkLocked(n); err != nil {
		return NoNode, err
	}

	if t.nodes[n.id].kind != KindModid {
		return NoNode, ErrNotModuleIdentifier
	}

	id, ok := t.childOfKindLocked(n.id, KindModuleName)
	if !ok {
		return NoNode, ErrNoNameIdentifier.With(
			slog.String("path", t.path),
			slog.Int("node", int(n.id)),
		)
	}

	return id, nil
}

// renameLocked replaces the name text of a module identifier and returns
// the previous name. The caller holds the write lock and has validated name.
func (t *Tree) renameLocked(n Node, name string) (string, error) {
	id, err := t.nameIdentifierLocked(n)
	if err != nil {
		return "", err
	}

	old := t.textLocked(id)
	if old != name {
		t.replaceLocked(t.nodes[id].span, name)
	}

	return old, nil
}
