package cmd

import "github.com/ardnew/hsmod/lang"

var (
	ErrUnresolved      = lang.NewError("unresolved module identifiers")
	ErrInvalidPosition = lang.NewError("invalid position (want FILE:LINE:COLUMN)")
	ErrMissingTarget   = lang.NewError("give a module name or --at FILE:LINE:COLUMN")
	ErrNoMatch         = lang.NewError("no module matches")
	ErrWatch           = lang.NewError("watch project")
	ErrWriteConfig     = lang.NewError("write configuration file")
	ErrFileExists      = lang.NewError("file exists (use --force to overwrite)")
)
