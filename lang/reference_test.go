package lang

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

// treeScope is a minimal multi-file scope over a fixed set of trees.
type treeScope struct {
	mu      sync.Mutex
	trees   []*Tree
	lookups atomic.Int64
}

func (s *treeScope) add(t testing.TB, path, src string) *Tree {
	t.Helper()

	tree := mustParse(t, src, WithPath(path), WithScope(s))

	s.mu.Lock()
	s.trees = append(s.trees, tree)
	s.mu.Unlock()

	return tree
}

func (s *treeScope) Declarations(_ context.Context, name string) ([]ModuleIdentifier, error) {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ModuleIdentifier

	for _, tree := range s.trees {
		if decl, ok := tree.Declaration(); ok {
			if n, _ := decl.Name(); n == name {
				out = append(out, decl)
			}
		}
	}

	return out, nil
}

func (s *treeScope) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gen uint64
	for _, tree := range s.trees {
		gen += tree.Generation()
	}

	return gen
}

func TestReference_Resolve(t *testing.T) {
	ctx := context.Background()
	scope := &treeScope{}

	a := scope.add(t, "A.hs", "module A (module B, module X) where\nimport B\nimport C\nimport D\nimport qualified E as X\n")
	b := scope.add(t, "B.hs", "module B where\n")
	scope.add(t, "C1.hs", "module C where\n")
	scope.add(t, "C2.hs", "module C where\n")
	e := scope.add(t, "E.hs", "module E where\n")

	bDecl, _ := b.Declaration()
	eDecl, _ := e.Declaration()
	aDecl, _ := a.Declaration()

	tests := []struct {
		name     string
		index    int
		target   ModuleIdentifier
		resolved bool
		reason   string
	}{
		{name: "declaration resolves to itself", index: 0, target: aDecl, resolved: true},
		{name: "export via import", index: 1, target: bDecl, resolved: true},
		{name: "export via alias", index: 2, target: eDecl, resolved: true},
		{name: "unique import", index: 3, target: bDecl, resolved: true},
		{name: "ambiguous import", index: 4, reason: ReasonAmbiguous},
		{name: "missing import", index: 5, reason: ReasonNotFound},
		{name: "imported module", index: 6, target: eDecl, resolved: true},
	}

	ids := a.ModuleIdentifiers()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ids[tt.index].Reference().Resolution(ctx)
			if err != nil {
				t.Fatalf("Resolution failed: %v", err)
			}

			if res.Resolved != tt.resolved {
				t.Fatalf("expected resolved=%v, got %+v", tt.resolved, res)
			}

			if res.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, res.Reason)
			}

			if tt.resolved && !res.Target.Equal(tt.target.Node) {
				name, _ := res.Target.Name()
				t.Errorf("resolved to wrong target %q", name)
			}
		})
	}

	alias := ids[7]
	if target, ok := alias.Reference().Resolve(ctx); !ok || !target.Equal(alias.Node) {
		t.Error("expected alias to resolve to itself")
	}
}

func TestReference_StableAndCached(t *testing.T) {
	ctx := context.Background()
	scope := &treeScope{}

	a := scope.add(t, "A.hs", "module A where\nimport B\n")
	scope.add(t, "B.hs", "module B where\n")

	imp := a.Imports()[0]

	first, ok := imp.Reference().Resolve(ctx)
	if !ok {
		t.Fatal("expected import to resolve")
	}

	lookups := scope.lookups.Load()

	for range 5 {
		again, ok := imp.Reference().Resolve(ctx)
		if !ok || !again.Equal(first.Node) {
			t.Fatal("resolution changed without tree changes")
		}
	}

	if got := scope.lookups.Load(); got != lookups {
		t.Errorf("expected cached resolution, scope consulted %d more times", got-lookups)
	}
}

func TestReference_InvalidatedByRename(t *testing.T) {
	ctx := context.Background()
	scope := &treeScope{}

	a := scope.add(t, "A.hs", "module A where\nimport B\nimport B2\n")
	b := scope.add(t, "B.hs", "module B where\n")

	oldImport, newImport := a.Imports()[0], a.Imports()[1]

	if _, ok := oldImport.Reference().Resolve(ctx); !ok {
		t.Fatal("expected import B to resolve before rename")
	}

	if _, ok := newImport.Reference().Resolve(ctx); ok {
		t.Fatal("expected import B2 to be unresolved before rename")
	}

	decl, _ := b.Declaration()
	if _, err := decl.Rename(ctx, "B2"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	res, err := oldImport.Reference().Resolution(ctx)
	if err != nil {
		t.Fatalf("Resolution failed: %v", err)
	}

	if res.Resolved || res.Reason != ReasonNotFound {
		t.Errorf("expected stale link to be dropped, got %+v", res)
	}

	target, ok := newImport.Reference().Resolve(ctx)
	if !ok || !target.Equal(decl.Node) {
		t.Error("expected import B2 to resolve to the renamed declaration")
	}
}

func TestReference_LocalScope(t *testing.T) {
	ctx := context.Background()
	tree := mustParse(t, "module A (module A, module B) where\nimport B\n")

	ids := tree.ModuleIdentifiers()

	if target, ok := ids[1].Reference().Resolve(ctx); !ok || !target.Equal(ids[0].Node) {
		t.Error("expected export of own module to resolve to the declaration")
	}

	res, err := ids[2].Reference().Resolution(ctx)
	if err != nil {
		t.Fatalf("Resolution failed: %v", err)
	}

	if res.Resolved || res.Reason != ReasonNotFound {
		t.Errorf("expected unresolved export without scope, got %+v", res)
	}

	if src := ids[2].Reference().Source(); !src.Equal(ids[2].Node) {
		t.Error("reference source mismatch")
	}
}
