package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// Outline lists the module identifiers of the project with their
// resolution.
type Outline struct {
	Files []string `arg:"" help:"Files to outline (default: every loaded file)." name:"file" optional:""`
	Where string   `       help:"Only list records matching an expression, e.g. 'role == \"import\" && !resolved'." placeholder:"EXPR" short:"w"`
}

// Run executes the outline command.
func (o *Outline) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	filter, err := project.CompileFilter(o.Where)
	if err != nil {
		return err
	}

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	paths := make([]string, len(o.Files))
	for i, file := range o.Files {
		paths[i] = treePath(p, file)
	}

	records, err := p.Outline(ctx, filter, paths...)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "outline",
		slog.Int("records", len(records)),
		slog.String("where", filter.String()),
	)

	return emit(ctx, records)
}
