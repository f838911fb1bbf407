package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hsmod/cli/cmd/picker"
	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// Find fuzzy-searches the declared modules by name.
type Find struct {
	Query       string `arg:"" help:"Search pattern, e.g. 'dqi' for Data.Queue.Internal." optional:""`
	Limit       int    `       help:"Maximum number of matches (0 for all)."                       short:"n" default:"0"`
	Interactive bool   `       help:"Pick a match interactively."                                  short:"i"`
}

// Run executes the find command.
func (f *Find) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	if f.Interactive {
		match, ok, err := picker.Run(ctx, p.Candidates(ctx), f.Query)
		if err != nil {
			return err
		}

		if !ok {
			log.DebugContext(ctx, "find canceled")

			return nil
		}

		return emit(ctx, project.Matches{match})
	}

	matches := p.Find(ctx, f.Query)
	if len(matches) == 0 {
		return ErrNoMatch.With(slog.String("query", f.Query))
	}

	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}

	return emit(ctx, project.Matches(matches))
}
