package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/project"
)

// Resolve finds the declaration of a module, by name or from any
// identifier that refers to it.
type Resolve struct {
	Module string `arg:"" help:"Module name to look up." optional:""`
	At     string `       help:"Resolve the identifier at a source position." placeholder:"FILE:LINE:COLUMN" short:"a"`
	Usages bool   `       help:"Also list every identifier that refers to the declaration."                short:"u"`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if (r.Module == "") == (r.At == "") {
		return ErrMissingTarget
	}

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	var decl lang.ModuleIdentifier

	if r.At != "" {
		id, err := identifierAt(p, r.At)
		if err != nil {
			return err
		}

		rec, err := project.MakeRecord(ctx, id)
		if err != nil {
			return err
		}

		if !rec.Resolved {
			if err := emit(ctx, project.Records{rec}); err != nil {
				return err
			}

			return ErrUnresolved.With(slog.String("name", rec.Name), slog.String("reason", rec.Reason))
		}

		decl, err = declarationOf(ctx, id)
		if err != nil {
			// An alias resolves to itself and has no usages to list.
			if r.Usages {
				return err
			}

			return emit(ctx, project.Records{rec})
		}
	} else {
		decl, err = p.Lookup(ctx, r.Module)
		if err != nil {
			return err
		}
	}

	records := make(project.Records, 0, 1)

	rec, err := project.MakeRecord(ctx, decl)
	if err != nil {
		return err
	}

	records = append(records, rec)

	if r.Usages {
		usages, err := p.Usages(ctx, decl)
		if err != nil {
			return err
		}

		for _, m := range usages {
			rec, err := project.MakeRecord(ctx, m)
			if err != nil {
				return err
			}

			records = append(records, rec)
		}
	}

	return emit(ctx, records)
}
