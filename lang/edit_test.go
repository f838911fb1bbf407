package lang

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBatch_Rename(t *testing.T) {
	ctx := context.Background()

	a := mustParse(t, "module A where\nimport Lib.Util (f)\nimport qualified Lib.Util as U\n", WithPath("A.hs"))
	lib := mustParse(t, "module Lib.Util where\n", WithPath("Lib/Util.hs"))

	decl, _ := lib.Declaration()
	imports := a.Imports()

	batch := LockTrees(lib, a, lib)

	if err := batch.Check(decl, imports[0], imports[1]); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	for _, m := range []ModuleIdentifier{decl, imports[0], imports[1]} {
		if err := batch.Rename(ctx, m, "Lib.Helpers"); err != nil {
			batch.Unlock()
			t.Fatalf("Rename failed: %v", err)
		}
	}

	batch.Unlock()
	batch.Unlock()

	want := "module A where\nimport Lib.Helpers (f)\nimport qualified Lib.Helpers as U\n"
	if got := a.Source(); got != want {
		t.Errorf("unexpected source:\nwant: %q\ngot:  %q", want, got)
	}

	if got := lib.ModuleName(); got != "Lib.Helpers" {
		t.Errorf("expected Lib.Helpers, got %q", got)
	}

	// The alias span moved with the edit.
	alias := a.ModuleIdentifiers()[3]
	if name, _ := alias.Name(); name != "U" {
		t.Errorf("expected alias U, got %q", name)
	}
}

func TestBatch_RenameRejects(t *testing.T) {
	ctx := context.Background()

	a := mustParse(t, "module A where\n", WithPath("A.hs"))
	b := mustParse(t, "module B where\n", WithPath("B.hs"))

	aDecl, _ := a.Declaration()
	bDecl, _ := b.Declaration()

	batch := LockTrees(a)
	defer batch.Unlock()

	if err := batch.Rename(ctx, bDecl, "C"); !errors.Is(err, ErrStaleNode) {
		t.Errorf("expected ErrStaleNode for unlocked tree, got %v", err)
	}

	if err := batch.Rename(ctx, aDecl, "not valid"); !errors.Is(err, ErrMalformedIdentifier) {
		t.Errorf("expected ErrMalformedIdentifier, got %v", err)
	}
}

func TestLockTrees_SamePath(t *testing.T) {
	x := mustParse(t, "module X where\n")
	y := mustParse(t, "module Y where\n")

	done := make(chan *Batch, 1)

	go func() {
		done <- LockTrees(x, y, x, y)
	}()

	select {
	case batch := <-done:
		if len(batch.trees) != 2 {
			t.Errorf("expected 2 locked trees, got %d", len(batch.trees))
		}

		batch.Unlock()

	case <-time.After(5 * time.Second):
		t.Fatal("LockTrees deadlocked on trees sharing a path")
	}

	// Both locks were released.
	if got := x.ModuleName(); got != "X" {
		t.Errorf("expected X, got %q", got)
	}

	if got := y.ModuleName(); got != "Y" {
		t.Errorf("expected Y, got %q", got)
	}
}
