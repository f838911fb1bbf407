package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/hsmod/lang"
)

// RenameOptions controls [Project.RenameModule].
type RenameOptions struct {
	// Force renames even when another file already declares the new name.
	Force bool
	// Write saves every changed file back to disk. Files are staged before
	// any is replaced; a failure while replacing can still leave earlier
	// files written, as listed in [Report.WrittenFiles].
	Write bool
}

// Edit describes one renamed module identifier.
type Edit struct {
	File     string `json:"file"               yaml:"file"`
	Role     string `json:"role"               yaml:"role"`
	OldName  string `json:"old_name"           yaml:"old_name"`
	NewName  string `json:"new_name"           yaml:"new_name"`
	Line     int    `json:"line"               yaml:"line"`
	Column   int    `json:"column"             yaml:"column"`
	Offset   int    `json:"offset"             yaml:"offset"`
	Applied  bool   `json:"applied"            yaml:"applied"`
	Skipped  bool   `json:"skipped,omitempty"  yaml:"skipped,omitempty"`
	SkipNote string `json:"skip_note,omitempty" yaml:"skip_note,omitempty"`
}

// Report summarizes a rename.
type Report struct {
	OldName      string   `json:"old_name"                yaml:"old_name"`
	NewName      string   `json:"new_name"                yaml:"new_name"`
	Write        bool     `json:"write"                   yaml:"write"`
	PlannedEdits int      `json:"planned_edits"           yaml:"planned_edits"`
	AppliedEdits int      `json:"applied_edits"           yaml:"applied_edits"`
	ChangedFiles []string `json:"changed_files,omitempty" yaml:"changed_files,omitempty"`
	WrittenFiles []string `json:"written_files,omitempty" yaml:"written_files,omitempty"`
	Edits        []Edit   `json:"edits,omitempty"         yaml:"edits,omitempty"`
}

// plannedEdit pairs an edit with the identifier it applies to.
type plannedEdit struct {
	id   lang.ModuleIdentifier
	edit Edit
}

// RenameModule renames the module declared by decl together with every
// identifier that resolves to it. Identifiers that refer to the module
// through an import alias keep their text and are reported as skipped.
//
// The new name is validated before anything changes. All edits are applied
// under the write locks of the affected trees, after checking that the
// project has not changed since the edits were planned.
func (p *Project) RenameModule(
	ctx context.Context,
	decl lang.ModuleIdentifier,
	newName string,
	opts RenameOptions,
) (Report, error) {
	if err := requireDeclaration(decl); err != nil {
		return Report{}, err
	}

	oldName, err := decl.Name()
	if err != nil {
		return Report{}, err
	}

	report := Report{OldName: oldName, NewName: newName, Write: opts.Write}

	if err := lang.ValidateModuleName(newName); err != nil {
		return report, err
	}

	if newName == oldName {
		return report, nil
	}

	existing, err := p.Declarations(ctx, newName)
	if err != nil {
		return report, err
	}

	if len(existing) > 0 && !opts.Force {
		return report, ErrModuleExists.With(
			slog.String("name", newName),
			slog.String("path", existing[0].Tree().Path()),
		)
	}

	gen := p.Generation()

	plan, err := p.planRename(ctx, decl, oldName, newName)
	if err != nil {
		return report, err
	}

	var (
		trees []*lang.Tree
		ids   []lang.ModuleIdentifier
	)

	for _, pe := range plan {
		report.Edits = append(report.Edits, pe.edit)

		if pe.edit.Skipped {
			continue
		}

		report.PlannedEdits++
		trees = append(trees, pe.id.Tree())
		ids = append(ids, pe.id)
	}

	batch := lang.LockTrees(trees...)

	err = p.applyRename(ctx, batch, gen, plan, ids, newName, &report)

	batch.Unlock()

	if err != nil {
		return report, err
	}

	p.logger.DebugContext(ctx, "module renamed",
		slog.String("old", oldName),
		slog.String("new", newName),
		slog.Int("edits", report.AppliedEdits),
		slog.Int("files", len(report.ChangedFiles)),
	)

	if opts.Write {
		return report, p.writeFiles(ctx, &report)
	}

	return report, nil
}

// planRename collects the edits of a rename. Declaration edits come first,
// followed by usages in path and source order.
func (p *Project) planRename(
	ctx context.Context,
	decl lang.ModuleIdentifier,
	oldName, newName string,
) ([]plannedEdit, error) {
	usages, err := p.Usages(ctx, decl)
	if err != nil {
		return nil, err
	}

	plan := make([]plannedEdit, 0, len(usages)+1)

	for _, m := range append([]lang.ModuleIdentifier{decl}, usages...) {
		name, err := m.Name()
		if err != nil {
			return nil, err
		}

		pos, err := m.Position()
		if err != nil {
			return nil, err
		}

		edit := Edit{
			File:    m.Tree().Path(),
			Role:    m.Role().String(),
			OldName: name,
			NewName: newName,
			Line:    pos.Line,
			Column:  pos.Column,
			Offset:  pos.Offset,
		}

		if name != oldName {
			edit.NewName = name
			edit.Skipped = true
			edit.SkipNote = "refers through import alias"
		}

		plan = append(plan, plannedEdit{id: m, edit: edit})
	}

	return plan, nil
}

// applyRename applies a plan while batch holds the write locks.
func (p *Project) applyRename(
	ctx context.Context,
	batch *lang.Batch,
	gen uint64,
	plan []plannedEdit,
	ids []lang.ModuleIdentifier,
	newName string,
	report *Report,
) error {
	if now := p.Generation(); now != gen {
		return ErrConcurrentModification.With(
			slog.Uint64("planned", gen),
			slog.Uint64("current", now),
		)
	}

	if err := batch.Check(ids...); err != nil {
		return ErrConcurrentModification.Wrap(err)
	}

	for i, pe := range plan {
		if pe.edit.Skipped {
			continue
		}

		if err := batch.Rename(ctx, pe.id, newName); err != nil {
			return err
		}

		report.Edits[i].Applied = true
		report.AppliedEdits++

		if file := pe.edit.File; !slices.Contains(report.ChangedFiles, file) {
			report.ChangedFiles = append(report.ChangedFiles, file)
		}
	}

	slices.Sort(report.ChangedFiles)

	return nil
}

// writeFiles saves the changed files of a report, keeping their modes.
// Every file is first staged next to its target; targets are replaced only
// after all files were staged, so a failed write leaves the disk unchanged.
func (p *Project) writeFiles(ctx context.Context, report *Report) error {
	type staged struct{ path, tmp string }

	var files []staged

	cleanup := func() {
		for _, f := range files {
			if f.tmp != "" {
				_ = os.Remove(f.tmp)
			}
		}
	}

	for _, path := range report.ChangedFiles {
		tree, ok := p.Tree(path)
		if !ok {
			cleanup()

			return ErrUnknownFile.With(slog.String("path", path))
		}

		tmp, err := stageFile(path, tree.Source())
		if err != nil {
			cleanup()

			return ErrWriteFile.Wrap(err).With(slog.String("path", path))
		}

		files = append(files, staged{path: path, tmp: tmp})
	}

	for i, f := range files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			cleanup()

			return ErrWriteFile.Wrap(err).With(
				slog.String("path", f.path),
				slog.Int("written", i),
			)
		}

		files[i].tmp = ""
		report.WrittenFiles = append(report.WrittenFiles, f.path)

		p.logger.TraceContext(ctx, "file written", slog.String("path", f.path))
	}

	return nil
}

// stageFile writes src to a temporary file in the directory of path with
// the mode of path, and returns its name.
func stageFile(path, src string) (string, error) {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}

	tmp := f.Name()

	_, err = f.WriteString(src)
	if err == nil {
		err = f.Chmod(mode)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(tmp)

		return "", err
	}

	return tmp, nil
}

// Format writes one line per edit followed by a summary.
func (r Report) Format(_ context.Context, w io.Writer, indent int) error {
	pad := strings.Repeat(" ", indent)

	if _, err := fmt.Fprintf(w, "%s -> %s\n", r.OldName, r.NewName); err != nil {
		return err
	}

	for _, e := range r.Edits {
		line := fmt.Sprintf("%s%s:%d:%d %s %s", pad, e.File, e.Line, e.Column, e.Role, e.OldName)
		if e.Skipped {
			line += " [skipped: " + e.SkipNote + "]"
		} else {
			line += " -> " + e.NewName
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d of %d edits applied in %d files", r.AppliedEdits, r.PlannedEdits, len(r.ChangedFiles))
	if r.Write {
		summary += fmt.Sprintf(", %d written", len(r.WrittenFiles))
	} else if r.AppliedEdits > 0 {
		summary += " (dry run, use --write to save)"
	}

	_, err := fmt.Fprintln(w, summary)

	return err
}
