package project

import "github.com/ardnew/hsmod/lang"

// Predefined errors (sentinel values).
var (
	ErrUnknownFile            = lang.NewError("file not in project")
	ErrNotDeclaration         = lang.NewError("not a module declaration")
	ErrModuleExists           = lang.NewError("module already declared")
	ErrModuleNotFound         = lang.NewError("module not found")
	ErrAmbiguousModule        = lang.NewError("module declared more than once")
	ErrNoIdentifierAt         = lang.NewError("no module identifier at position")
	ErrConcurrentModification = lang.NewError("project changed during rename")
	ErrWriteFile              = lang.NewError("failed to write file")
	ErrInvalidFilter          = lang.NewError("invalid filter expression")
)
