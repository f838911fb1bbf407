package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// Rename renames a module declaration and every identifier that refers to
// it. Without --write the edits are only reported.
type Rename struct {
	Old   string `arg:"" help:"Module to rename, by name or FILE:LINE:COLUMN of any identifier referring to it."`
	New   string `arg:"" help:"New module name."`
	Write bool   `       help:"Save the changed files."                                    short:"w"`
	Force bool   `       help:"Rename even when another file already declares the new name." short:"f"`
}

// Run executes the rename command.
func (r *Rename) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	decl, err := r.declaration(ctx, p)
	if err != nil {
		return err
	}

	report, err := p.RenameModule(ctx, decl, r.New, project.RenameOptions{
		Force: r.Force,
		Write: r.Write,
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "rename",
		slog.String("old", report.OldName),
		slog.String("new", report.NewName),
		slog.Int("edits", report.AppliedEdits),
		slog.Int("files", len(report.ChangedFiles)),
		slog.Bool("write", report.Write),
	)

	return emit(ctx, report)
}

func (r *Rename) declaration(ctx context.Context, p *project.Project) (lang.ModuleIdentifier, error) {
	// Module names never contain colons.
	if strings.Contains(r.Old, ":") {
		id, err := identifierAt(p, r.Old)
		if err != nil {
			return lang.ModuleIdentifier{}, err
		}

		return declarationOf(ctx, id)
	}

	return p.Lookup(ctx, r.Old)
}
