package project

import (
	"context"
	"log/slog"

	"github.com/ardnew/hsmod/lang"
)

// declIndex maps module names to their declarations. It is valid only for
// the project generation it was built at.
type declIndex struct {
	generation uint64
	built      bool
	byName     map[string][]lang.ModuleIdentifier
}

// Declarations returns the declaration identifiers of every file declaring
// the module name, ordered by path.
func (p *Project) Declarations(ctx context.Context, name string) ([]lang.ModuleIdentifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := p.declarations(ctx)

	return idx.byName[name], nil
}

// Modules returns the declared module names of the project mapped to their
// declarations.
func (p *Project) Modules(ctx context.Context) map[string][]lang.ModuleIdentifier {
	return p.declarations(ctx).byName
}

// declarations returns the index for the current generation, rebuilding it
// when stale. The returned index must not be modified.
func (p *Project) declarations(ctx context.Context) declIndex {
	gen := p.Generation()

	p.indexMu.Lock()
	idx := p.index
	p.indexMu.Unlock()

	if idx.built && idx.generation == gen {
		return idx
	}

	idx = declIndex{
		generation: gen,
		built:      true,
		byName:     make(map[string][]lang.ModuleIdentifier),
	}

	for _, tree := range p.Trees() {
		decl, ok := tree.Declaration()
		if !ok {
			continue
		}

		name, err := decl.Name()
		if err != nil {
			continue
		}

		idx.byName[name] = append(idx.byName[name], decl)
	}

	p.indexMu.Lock()
	p.index = idx
	p.indexMu.Unlock()

	p.logger.TraceContext(ctx, "declaration index rebuilt",
		slog.Uint64("generation", gen),
		slog.Int("modules", len(idx.byName)),
	)

	return idx
}

// Lookup returns the unique declaration of the module name.
func (p *Project) Lookup(ctx context.Context, name string) (lang.ModuleIdentifier, error) {
	decls, err := p.Declarations(ctx, name)
	if err != nil {
		return lang.ModuleIdentifier{}, err
	}

	switch len(decls) {
	case 0:
		return lang.ModuleIdentifier{}, ErrModuleNotFound.With(slog.String("name", name))

	case 1:
		return decls[0], nil

	default:
		return lang.ModuleIdentifier{}, ErrAmbiguousModule.With(
			slog.String("name", name),
			slog.Int("candidates", len(decls)),
		)
	}
}

// At returns the module identifier covering the 1-based line and column of
// the file at path.
func (p *Project) At(path string, line, column int) (lang.ModuleIdentifier, error) {
	tree, ok := p.Tree(path)
	if !ok {
		return lang.ModuleIdentifier{}, ErrUnknownFile.With(slog.String("path", path))
	}

	offset, ok := tree.Offset(line, column)
	if !ok {
		return lang.ModuleIdentifier{}, ErrNoIdentifierAt.With(
			slog.String("path", path),
			slog.Int("line", line),
			slog.Int("column", column),
		)
	}

	m, ok := tree.ModuleIdentifierAt(offset)
	if !ok {
		return lang.ModuleIdentifier{}, ErrNoIdentifierAt.With(
			slog.String("path", path),
			slog.Int("line", line),
			slog.Int("column", column),
		)
	}

	return m, nil
}

// Usages returns every module identifier other than decl that resolves to
// decl, in path and source order.
func (p *Project) Usages(ctx context.Context, decl lang.ModuleIdentifier) ([]lang.ModuleIdentifier, error) {
	if err := requireDeclaration(decl); err != nil {
		return nil, err
	}

	var out []lang.ModuleIdentifier

	for _, tree := range p.Trees() {
		for _, m := range tree.ModuleIdentifiers() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if m.Equal(decl.Node) {
				continue
			}

			target, ok := m.Reference().Resolve(ctx)
			if ok && target.Equal(decl.Node) {
				out = append(out, m)
			}
		}
	}

	return out, nil
}

// requireDeclaration fails with [lang.ErrStaleNode] for a stale handle and
// with [ErrNotDeclaration] for a live identifier of any other role.
func requireDeclaration(decl lang.ModuleIdentifier) error {
	if _, err := decl.Name(); err != nil {
		return err
	}

	if role := decl.Role(); role != lang.RoleDeclaration {
		return ErrNotDeclaration.With(slog.String("role", role.String()))
	}

	return nil
}
