package project

import (
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled boolean expression over the fields of a [Record],
// for example:
//
//	role == "import" && !resolved
//	name startsWith "Data." && file contains "src/"
//
// A nil Filter matches every record.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a filter expression. An empty expression yields a
// nil filter.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil //nolint:nilnil // empty filter matches everything
	}

	program, err := expr.Compile(source, expr.Env(Record{}), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidFilter.Wrap(err).With(slog.String("source", source))
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the source of the expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r Record) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, r)
	if err != nil {
		return false, ErrInvalidFilter.Wrap(err).With(slog.String("source", f.source))
	}

	ok, _ := out.(bool)

	return ok, nil
}
