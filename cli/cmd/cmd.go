package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Options are the global flags shared by every command.
type Options struct {
	// Roots are the directories or files searched for Haskell sources.
	Roots []string
	// Encoding selects text, JSON or YAML output.
	Encoding lang.Encoding
	// Indent is the indent width of the output. Zero selects compact JSON
	// and flow-style YAML.
	Indent int
	// Stdout receives command output. Nil means os.Stdout.
	Stdout io.Writer
}

type optionsKey struct{}

// WithOptions returns a new context.Context carrying the global options.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// optionsFrom returns the options stored by [WithOptions] with defaults
// filled in.
func optionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)

	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	return opts
}

// openProject loads every Haskell source under the configured roots.
func openProject(ctx context.Context) (*project.Project, error) {
	opts := optionsFrom(ctx)

	p := project.New(project.WithLogger(log.Default()))

	if err := p.Load(ctx, opts.Roots...); err != nil {
		return nil, err
	}

	for path, err := range p.Failures() {
		log.WarnContext(ctx, "skipping file", slog.String("path", path), slog.Any("error", err))
	}

	return p, nil
}

// emit writes v to the configured output.
func emit(ctx context.Context, v any) error {
	opts := optionsFrom(ctx)

	return lang.Encode(ctx, opts.Stdout, opts.Encoding, opts.Indent, v)
}

// treePath returns the project path of file. A path that is not loaded
// verbatim is matched against the loaded trees by absolute path.
func treePath(p *project.Project, file string) string {
	if _, ok := p.Tree(file); ok {
		return file
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return file
	}

	for _, tree := range p.Trees() {
		if other, err := filepath.Abs(tree.Path()); err == nil && other == abs {
			return tree.Path()
		}
	}

	return file
}

// parsePosition splits "FILE:LINE:COLUMN". The file part may itself
// contain colons.
func parsePosition(s string) (file string, line, column int, err error) {
	invalid := ErrInvalidPosition.With(slog.String("position", s))

	rest, colText, ok := cutLast(s, ":")
	if !ok {
		return "", 0, 0, invalid
	}

	file, lineText, ok := cutLast(rest, ":")
	if !ok || file == "" {
		return "", 0, 0, invalid
	}

	line, err = strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return "", 0, 0, invalid
	}

	column, err = strconv.Atoi(colText)
	if err != nil || column < 1 {
		return "", 0, 0, invalid
	}

	return file, line, column, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}

	return s[:i], s[i+len(sep):], true
}

// identifierAt returns the module identifier at a "FILE:LINE:COLUMN"
// position.
func identifierAt(p *project.Project, position string) (lang.ModuleIdentifier, error) {
	file, line, column, err := parsePosition(position)
	if err != nil {
		return lang.ModuleIdentifier{}, err
	}

	return p.At(treePath(p, file), line, column)
}

// declarationOf returns the declaration m refers to, or m itself when it
// is a declaration.
func declarationOf(ctx context.Context, m lang.ModuleIdentifier) (lang.ModuleIdentifier, error) {
	if _, err := m.Name(); err != nil {
		return lang.ModuleIdentifier{}, err
	}

	if m.Role() == lang.RoleDeclaration {
		return m, nil
	}

	res, err := m.Reference().Resolution(ctx)
	if err != nil {
		return lang.ModuleIdentifier{}, err
	}

	if !res.Resolved {
		name, _ := m.Name()

		return lang.ModuleIdentifier{}, ErrUnresolved.With(
			slog.String("name", name),
			slog.String("reason", res.Reason),
		)
	}

	target := res.Target
	if target.Role() != lang.RoleDeclaration {
		return lang.ModuleIdentifier{}, project.ErrNotDeclaration.With(slog.String("role", target.Role().String()))
	}

	return target, nil
}
