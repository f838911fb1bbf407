package lang

import (
	"context"
	"log/slog"
)

// Reasons reported for unresolved references.
const (
	ReasonNotFound  = "not found"
	ReasonAmbiguous = "ambiguous"
	ReasonStale     = "stale"
)

// Scope supplies module declarations for reference resolution.
type Scope interface {
	// Declarations returns the declaration identifiers of every module named
	// name, in a deterministic order.
	Declarations(ctx context.Context, name string) ([]ModuleIdentifier, error)

	// Generation returns a counter that increases whenever any declaration
	// the scope can return may have changed.
	Generation() uint64
}

// Resolution is the outcome of resolving a [Reference].
type Resolution struct {
	Target     ModuleIdentifier
	Resolved   bool
	Reason     string // set when unresolved
	Candidates int
	Generation uint64
}

// Reference links a module identifier to the declaration it denotes.
// Resolution is computed on demand and cached until the scope's generation
// changes.
type Reference struct {
	source ModuleIdentifier
}

// Source returns the identifier the reference originates from.
func (r *Reference) Source() ModuleIdentifier { return r.source }

// Resolve returns the declaration the reference denotes. The second result
// is false when the reference is unresolved or its source is stale.
func (r *Reference) Resolve(ctx context.Context) (ModuleIdentifier, bool) {
	res, err := r.Resolution(ctx)
	if err != nil || !res.Resolved {
		return ModuleIdentifier{}, false
	}

	return res.Target, true
}

// Resolution returns the full resolution outcome. Unresolved references are
// reported through [Resolution.Resolved], not as errors; the error is
// non-nil only when the source node is stale or the scope fails.
func (r *Reference) Resolution(ctx context.Context) (Resolution, error) {
	t := r.source.tree
	if t == nil {
		return Resolution{}, ErrStaleNode
	}

	t.mu.RLock()
	err := t.checkLocked(r.source.Node)
	scope := t.scope
	t.mu.RUnlock()

	if err != nil {
		return Resolution{}, err
	}

	if scope == nil {
		scope = localScope{t}
	}

	gen := scope.Generation()

	if res, ok := t.cachedReference(r.source.Node, gen); ok {
		return res, nil
	}

	res, err := resolve(ctx, r.source, scope)
	if err != nil {
		return Resolution{}, err
	}

	res.Generation = gen
	t.storeReference(r.source.Node, res)

	t.logger.TraceContext(ctx, "reference resolved",
		slog.String("path", t.Path()),
		slog.Int("node", int(r.source.id)),
		slog.Bool("resolved", res.Resolved),
		slog.String("reason", res.Reason),
		slog.Uint64("generation", gen),
	)

	return res, nil
}

// resolve computes a resolution without consulting the cache. The caller
// must not hold any tree lock.
func resolve(ctx context.Context, m ModuleIdentifier, scope Scope) (Resolution, error) {
	name, err := m.Name()
	if err != nil {
		return Resolution{}, err
	}

	switch m.Role() {
	case RoleDeclaration, RoleAlias:
		return Resolution{Target: m, Resolved: true, Candidates: 1}, nil

	case RoleImport:
		return lookup(ctx, scope, name)

	case RoleExport:
		if decl, ok := m.tree.Declaration(); ok {
			if declName, err := decl.Name(); err == nil && declName == name {
				return Resolution{Target: decl, Resolved: true, Candidates: 1}, nil
			}
		}

		targets := importedAs(m.tree, name)

		switch len(targets) {
		case 0:
			return lookup(ctx, scope, name)

		case 1:
			return lookup(ctx, scope, targets[0])

		default:
			return Resolution{Reason: ReasonAmbiguous, Candidates: len(targets)}, nil
		}

	default:
		return Resolution{}, ErrNotModuleIdentifier
	}
}

func lookup(ctx context.Context, scope Scope, name string) (Resolution, error) {
	decls, err := scope.Declarations(ctx, name)
	if err != nil {
		return Resolution{}, err
	}

	switch len(decls) {
	case 0:
		return Resolution{Reason: ReasonNotFound}, nil

	case 1:
		return Resolution{Target: decls[0], Resolved: true, Candidates: 1}, nil

	default:
		return Resolution{Reason: ReasonAmbiguous, Candidates: len(decls)}, nil
	}
}

// importedAs returns the distinct target names of the imports in t whose
// target or alias equals name.
func importedAs(t *Tree, name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var (
		out  []string
		seen = map[string]bool{}
	)

	for _, decl := range t.nodes {
		if decl.kind != KindImportDecl {
			continue
		}

		var target, alias string

		for _, child := range decl.children {
			switch t.nodes[child].role {
			case RoleImport:
				target = t.textLocked(child)

			case RoleAlias:
				alias = t.textLocked(child)
			}
		}

		if (target == name || alias == name) && !seen[target] {
			seen[target] = true
			out = append(out, target)
		}
	}

	return out
}

// cachedResolution is a resolution stamped with the node epoch it was
// computed for.
type cachedResolution struct {
	epoch uint64
	res   Resolution
}

func (t *Tree) cachedReference(n Node, gen uint64) (Resolution, bool) {
	t.refMu.Lock()
	defer t.refMu.Unlock()

	c, ok := t.refs[n.id]
	if !ok || c.epoch != n.epoch || c.res.Generation != gen {
		return Resolution{}, false
	}

	return c.res, true
}

func (t *Tree) storeReference(n Node, res Resolution) {
	t.refMu.Lock()
	defer t.refMu.Unlock()

	if t.refs == nil {
		t.refs = make(map[NodeID]cachedResolution)
	}

	t.refs[n.id] = cachedResolution{epoch: n.epoch, res: res}
}

// clearReferences drops every cached resolution of the tree.
func (t *Tree) clearReferences() {
	t.refMu.Lock()
	clear(t.refs)
	t.refMu.Unlock()
}

// localScope resolves against the declaration of a single tree.
type localScope struct {
	tree *Tree
}

func (s localScope) Declarations(_ context.Context, name string) ([]ModuleIdentifier, error) {
	decl, ok := s.tree.Declaration()
	if !ok {
		return nil, nil
	}

	declName, err := decl.Name()
	if err != nil || declName != name {
		return nil, nil //nolint:nilerr // stale declarations do not match
	}

	return []ModuleIdentifier{decl}, nil
}

func (s localScope) Generation() uint64 { return s.tree.Generation() }
