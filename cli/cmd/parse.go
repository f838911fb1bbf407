package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// stdinSource is the special source naming standard input.
const stdinSource = "-"

// Parse parses one source file on its own and lists its module
// identifiers. References resolve within the file only.
type Parse struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the parse command.
func (c *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var (
		r    io.Reader = os.Stdin
		path           = "<stdin>"
	)

	if c.Source != stdinSource {
		file, err := os.Open(c.Source)
		if err != nil {
			return lang.ErrReadInput.Wrap(err).With(slog.String("path", c.Source))
		}
		defer file.Close()

		r, path = file, c.Source
	}

	tree, err := lang.ParseReader(ctx, r,
		lang.WithPath(path),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}
	defer tree.Close()

	if optionsFrom(ctx).Encoding == lang.EncodingText {
		return emit(ctx, tree)
	}

	records := make(project.Records, 0, len(tree.ModuleIdentifiers()))

	for _, m := range tree.ModuleIdentifiers() {
		rec, err := project.MakeRecord(ctx, m)
		if err != nil {
			return err
		}

		records = append(records, rec)
	}

	return emit(ctx, records)
}
