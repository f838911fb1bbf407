// Package project groups the parsed files of a Haskell code base and
// resolves module references across them.
//
// A [Project] implements [lang.Scope]: every tree it parses resolves its
// imports and exports against the declarations of the other files. The
// declaration index is rebuilt lazily whenever the project generation
// changes, so renames and reloads never leave stale links behind.
//
// On top of resolution the package provides find-usages, the multi-file
// [Project.RenameModule] refactoring, outline records filtered with
// expr-lang expressions, and fuzzy search over declared module names.
package project
