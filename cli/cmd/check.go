package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/project"
)

// Check reports imports that do not resolve to exactly one declaration and
// files that fail to parse. It fails when there are any.
type Check struct{}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := openProject(ctx)
	if err != nil {
		return err
	}

	result, err := check(ctx, p)
	if err != nil {
		return err
	}

	if err := emit(ctx, result); err != nil {
		return err
	}

	if !result.OK() {
		return ErrUnresolved.With(
			slog.Int("unresolved", len(result.Unresolved)),
			slog.Int("failures", len(result.Failures)),
		)
	}

	return nil
}

// Failure is a file that could not be parsed.
type Failure struct {
	File  string `json:"file"  yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// CheckResult is the outcome of one check of the project.
type CheckResult struct {
	Files      int             `json:"files"                yaml:"files"`
	Generation uint64          `json:"generation"           yaml:"generation"`
	Unresolved project.Records `json:"unresolved"           yaml:"unresolved"`
	Failures   []Failure       `json:"failures,omitempty"   yaml:"failures,omitempty"`
}

// OK reports whether every import resolved and every file parsed.
func (r CheckResult) OK() bool {
	return len(r.Unresolved) == 0 && len(r.Failures) == 0
}

// Format writes the unresolved imports grouped by file, the parse failures
// and a summary line.
func (r CheckResult) Format(ctx context.Context, w io.Writer, indent int) error {
	if err := r.Unresolved.Format(ctx, w, indent); err != nil {
		return err
	}

	for _, f := range r.Failures {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.File, f.Error); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d files: ", r.Files)
	if r.OK() {
		summary += "all imports resolved"
	} else {
		summary += fmt.Sprintf("%d unresolved, %d unparsable", len(r.Unresolved), len(r.Failures))
	}

	_, err := fmt.Fprintln(w, summary)

	return err
}

func check(ctx context.Context, p *project.Project) (CheckResult, error) {
	unresolved, err := p.Unresolved(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	failures := p.Failures()

	result := CheckResult{
		Files:      p.Len(),
		Generation: p.Generation(),
		Unresolved: unresolved,
	}

	for _, path := range slices.Sorted(maps.Keys(failures)) {
		result.Failures = append(result.Failures, Failure{File: path, Error: failures[path].Error()})
	}

	log.DebugContext(ctx, "check",
		slog.Int("files", result.Files),
		slog.Int("unresolved", len(result.Unresolved)),
		slog.Int("failures", len(result.Failures)),
	)

	return result, nil
}
