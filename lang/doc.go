// Package lang models the module structure of Haskell source files.
//
// A [Tree] holds the syntax tree of one file's module header: the module
// declaration, its export list and the import declarations. Everything after
// the imports is kept as one opaque body node. Nodes live in an arena owned
// by the tree and are addressed through [Node] handles; parent links are
// indices, never owning pointers.
//
// # Grammar
//
// Informal EBNF:
//
//	File    → [ 'module' Modid [ Exports ] 'where' ] { ';' | Import } Body
//	Exports → '(' [ Export { ',' Export } [','] ] ')'
//	Export  → 'module' Modid | <balanced tokens>
//	Import  → 'import' ['qualified'] [String] Modid ['qualified']
//	          ['as' Modid] ['hiding'] [ '(' <balanced> ')' ]
//	Modid   → Conid { '.' Conid }
//
// Line comments, nested block comments and pragmas are skipped. A file
// without a header is module Main.
//
// # Module identifiers
//
// Every Modid node is exposed as a [ModuleIdentifier], which implements the
// [Named], [Referencing] and [Presentable] capabilities:
//
//	tree, _ := lang.ParseString(ctx, src, lang.WithPath("src/Foo.hs"))
//	for _, m := range tree.ModuleIdentifiers() {
//		name, _ := m.Name()
//		target, ok := m.Reference().Resolve(ctx)
//		...
//	}
//
// Renames edit the tree in place and keep handles valid. [Tree.Reparse] and
// [Tree.Close] invalidate every handle; operations on such handles fail with
// [ErrStaleNode].
//
// # Resolution
//
// References resolve through a [Scope]. Without one, only the tree's own
// declaration is visible. Results are cached per node and discarded when the
// scope's generation changes, so a rename anywhere in the scope invalidates
// every cached link.
package lang
