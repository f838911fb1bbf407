package project

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/hsmod/lang"
)

// Record is the flattened, serializable view of one module identifier.
// The expr tags name the variables available to [Filter] expressions.
type Record struct {
	Name     string    `expr:"name"     json:"name"               yaml:"name"`
	Role     string    `expr:"role"     json:"role"               yaml:"role"`
	File     string    `expr:"file"     json:"file"               yaml:"file"`
	Line     int       `expr:"line"     json:"line"               yaml:"line"`
	Column   int       `expr:"column"   json:"column"             yaml:"column"`
	Resolved bool      `expr:"resolved" json:"resolved"           yaml:"resolved"`
	Target   string    `expr:"target"   json:"target,omitempty"   yaml:"target,omitempty"`
	Reason   string    `expr:"reason"   json:"reason,omitempty"   yaml:"reason,omitempty"`
	Label    string    `expr:"label"    json:"label"              yaml:"label"`
	Location string    `expr:"location" json:"location,omitempty" yaml:"location,omitempty"`
	Icon     lang.Icon `expr:"-"        json:"icon"               yaml:"icon"`
}

// MakeRecord builds the record of m, resolving its reference.
func MakeRecord(ctx context.Context, m lang.ModuleIdentifier) (Record, error) {
	name, err := m.Name()
	if err != nil {
		return Record{}, err
	}

	pos, err := m.Position()
	if err != nil {
		return Record{}, err
	}

	pres, err := m.Presentation()
	if err != nil {
		return Record{}, err
	}

	res, err := m.Reference().Resolution(ctx)
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Name:     name,
		Role:     m.Role().String(),
		File:     m.Tree().Path(),
		Line:     pos.Line,
		Column:   pos.Column,
		Resolved: res.Resolved,
		Reason:   res.Reason,
		Label:    pres.Label,
		Location: pres.Location,
		Icon:     pres.Icon,
	}

	if res.Resolved {
		if target, err := res.Target.Presentation(); err == nil {
			r.Target = target.Location
		}
	}

	return r, nil
}

// Outline returns the records of every module identifier in the given files,
// or in the whole project when no path is given. Records are ordered by path
// and source position. A nil filter keeps every record.
func (p *Project) Outline(ctx context.Context, filter *Filter, paths ...string) (Records, error) {
	trees := p.Trees()

	if len(paths) > 0 {
		trees = trees[:0:0]

		for _, path := range paths {
			tree, ok := p.Tree(path)
			if !ok {
				return nil, ErrUnknownFile.With(slog.String("path", path))
			}

			trees = append(trees, tree)
		}

		slices.SortFunc(trees, func(a, b *lang.Tree) int {
			return cmp.Compare(a.Path(), b.Path())
		})
		trees = slices.Compact(trees)
	}

	var out Records

	for _, tree := range trees {
		for _, m := range tree.ModuleIdentifiers() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			r, err := MakeRecord(ctx, m)
			if err != nil {
				return nil, err
			}

			ok, err := filter.Match(r)
			if err != nil {
				return nil, err
			}

			if ok {
				out = append(out, r)
			}
		}
	}

	return out, nil
}

// Unresolved returns the records of imports that do not resolve to exactly
// one declaration in the project.
func (p *Project) Unresolved(ctx context.Context) (Records, error) {
	var out Records

	for _, tree := range p.Trees() {
		for _, m := range tree.Imports() {
			r, err := MakeRecord(ctx, m)
			if err != nil {
				return nil, err
			}

			if !r.Resolved {
				out = append(out, r)
			}
		}
	}

	return out, nil
}

// Records is an encodable list of records. In text encoding each record is
// written as its presentation, grouped under its file.
type Records []Record

// Format writes one presentation per line. Resolved references show their
// target location; unresolved ones show the reason.
func (rs Records) Format(_ context.Context, w io.Writer, indent int) error {
	pad := strings.Repeat(" ", max(indent, 1))

	var file string

	for _, r := range rs {
		if r.File != file {
			file = r.File
			if _, err := fmt.Fprintln(w, file); err != nil {
				return err
			}
		}

		line := pad + r.Icon.Glyph() + " " + r.Label
		if r.Location != "" {
			line += " (" + r.Location + ")"
		}

		switch {
		case !r.Resolved:
			line += " [" + r.Reason + "]"

		case r.Target != "" && r.Target != r.Location:
			line += " -> " + r.Target
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
