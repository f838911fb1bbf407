package project

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/hsmod/lang"
)

// Match is a declared module ranked against a search pattern.
type Match struct {
	Name    string `json:"name"            yaml:"name"`
	File    string `json:"file"            yaml:"file"`
	Line    int    `json:"line"            yaml:"line"`
	Column  int    `json:"column"          yaml:"column"`
	Score   int    `json:"score,omitempty" yaml:"score,omitempty"`
	Indexes []int  `json:"-"               yaml:"-"` // matched byte offsets in Name

	Declaration lang.ModuleIdentifier `json:"-" yaml:"-"`
}

// candidates is the fuzzy.Source of declared modules.
type candidates []Match

func (c candidates) String(i int) string { return c[i].Name }

func (c candidates) Len() int { return len(c) }

// Candidates returns every module declaration of the project ordered by
// name and path.
func (p *Project) Candidates(ctx context.Context) []Match {
	var out []Match

	for name, decls := range p.Modules(ctx) {
		for _, decl := range decls {
			pos, err := decl.Position()
			if err != nil {
				continue
			}

			out = append(out, Match{
				Name:        name,
				File:        decl.Tree().Path(),
				Line:        pos.Line,
				Column:      pos.Column,
				Declaration: decl,
			})
		}
	}

	slices.SortFunc(out, func(a, b Match) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.File, b.File))
	})

	return out
}

// Find ranks the declared modules against pattern, best match first. An
// empty pattern returns every module by name.
func (p *Project) Find(ctx context.Context, pattern string) []Match {
	return Rank(pattern, p.Candidates(ctx))
}

// Rank orders the given candidates by how well their names match pattern.
// Candidates that do not match are dropped.
func Rank(pattern string, from []Match) []Match {
	if pattern == "" {
		return from
	}

	found := fuzzy.FindFrom(pattern, candidates(from))
	out := make([]Match, len(found))

	for i, m := range found {
		out[i] = from[m.Index]
		out[i].Score = m.Score
		out[i].Indexes = m.MatchedIndexes
	}

	return out
}

// Matches is an encodable list of matches.
type Matches []Match

// Format writes one "name (file:line:column)" line per match.
func (ms Matches) Format(_ context.Context, w io.Writer, _ int) error {
	for _, m := range ms {
		if _, err := fmt.Fprintf(w, "%s (%s:%d:%d)\n", m.Name, m.File, m.Line, m.Column); err != nil {
			return err
		}
	}

	return nil
}
