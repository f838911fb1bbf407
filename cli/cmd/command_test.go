package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/project"
)

func TestOutline_Run(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		where   string
		want    []string
		notWant []string
	}{
		{
			name:  "file",
			files: []string{"app/Main.hs"},
			want: []string{
				"↓ Data.Queue (",
				"↓ Data.Queue.Internal (",
				"≡ I (",
			},
			notWant: []string{"◆"},
		},
		{
			name:    "where",
			where:   `role == "import" && !resolved`,
			want:    []string{"↓ Data.Map (", "[not found]", "↓ Data.List ("},
			notWant: []string{"Data.Queue ("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, root, out := setup(t, lang.EncodingText)

			files := make([]string, len(tt.files))
			for i, f := range tt.files {
				files[i] = filepath.Join(root, f)
			}

			if err := (&Outline{Files: files, Where: tt.where}).Run(ctx); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q in:\n%s", want, out)
				}
			}

			for _, notWant := range tt.notWant {
				if strings.Contains(out.String(), notWant) {
					t.Errorf("unexpected %q in:\n%s", notWant, out)
				}
			}
		})
	}
}

func TestOutline_RunInvalidFilter(t *testing.T) {
	ctx, _, _ := setup(t, lang.EncodingText)

	err := (&Outline{Where: "role =="}).Run(ctx)
	if !errors.Is(err, project.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func decodeRecords(t *testing.T, data []byte) []project.Record {
	t.Helper()

	var records []project.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("invalid JSON %s: %v", data, err)
	}

	return records
}

func TestResolve_Run(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Resolve
		want   error
		roles  []string
		target string
	}{
		{
			name:   "by_name",
			cmd:    Resolve{Module: "Data.Queue.Internal"},
			roles:  []string{"declaration"},
			target: "src/Data/Queue/Internal.hs:1:8",
		},
		{
			name:   "at_import",
			cmd:    Resolve{At: "app/Main.hs:2:30"},
			roles:  []string{"declaration"},
			target: "src/Data/Queue/Internal.hs:1:8",
		},
		{
			name:  "usages",
			cmd:   Resolve{Module: "Data.Queue.Internal", Usages: true},
			roles: []string{"declaration", "import", "export", "export", "import", "import"},
		},
		{
			name:   "at_alias",
			cmd:    Resolve{At: "app/Main.hs:2:41"},
			roles:  []string{"alias"},
			target: "app/Main.hs:2:41",
		},
		{name: "alias_usages", cmd: Resolve{At: "app/Main.hs:2:41", Usages: true}, want: project.ErrNotDeclaration},
		{name: "unresolved", cmd: Resolve{At: "src/Data/Queue.hs:9:8"}, want: ErrUnresolved, roles: []string{"import"}},
		{name: "unknown", cmd: Resolve{Module: "Data.Set"}, want: project.ErrModuleNotFound},
		{name: "no_target", cmd: Resolve{}, want: ErrMissingTarget},
		{name: "both_targets", cmd: Resolve{Module: "Data.Queue", At: "app/Main.hs:1:8"}, want: ErrMissingTarget},
		{name: "blank_position", cmd: Resolve{At: "app/Main.hs:4:1"}, want: project.ErrNoIdentifierAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, root, out := setup(t, lang.EncodingJSON)

			if tt.cmd.At != "" {
				tt.cmd.At = filepath.Join(root, tt.cmd.At)
			}

			err := tt.cmd.Run(ctx)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
			} else if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if tt.roles == nil {
				return
			}

			records := decodeRecords(t, out.Bytes())

			roles := make([]string, len(records))
			for i, r := range records {
				roles[i] = r.Role
			}

			if strings.Join(roles, ",") != strings.Join(tt.roles, ",") {
				t.Errorf("roles %v, want %v", roles, tt.roles)
			}

			if tt.target != "" && records[0].Target != filepath.Join(root, tt.target) {
				t.Errorf("target %s, want %s", records[0].Target, tt.target)
			}
		})
	}
}

func TestRename_Run(t *testing.T) {
	t.Run("dry_run", func(t *testing.T) {
		ctx, root, out := setup(t, lang.EncodingText)

		if err := (&Rename{Old: "Data.Queue.Internal", New: "Data.Queue.Core"}).Run(ctx); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for _, want := range []string{
			"Data.Queue.Internal -> Data.Queue.Core\n",
			"declaration Data.Queue.Internal -> Data.Queue.Core",
			"export Q [skipped: refers through import alias]",
			"5 of 5 edits applied in 3 files (dry run, use --write to save)",
		} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}

		data, err := os.ReadFile(filepath.Join(root, "app", "Main.hs"))
		if err != nil {
			t.Fatal(err)
		}

		if string(data) != queueFiles["app/Main.hs"] {
			t.Error("dry run changed a file")
		}
	})

	t.Run("write_from_position", func(t *testing.T) {
		ctx, root, out := setup(t, lang.EncodingJSON)

		cmd := Rename{
			Old:   filepath.Join(root, "app", "Main.hs") + ":1:8",
			New:   "Data.Deque",
			Write: true,
		}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		var report project.Report
		if err := json.Unmarshal(out.Bytes(), &report); err != nil {
			t.Fatal(err)
		}

		if report.OldName != "Data.Queue" || len(report.WrittenFiles) != 2 {
			t.Errorf("unexpected report %+v", report)
		}

		data, err := os.ReadFile(filepath.Join(root, "app", "Main.hs"))
		if err != nil {
			t.Fatal(err)
		}

		if !strings.HasPrefix(string(data), "import Data.Deque\n") {
			t.Errorf("file not rewritten:\n%s", data)
		}
	})

	t.Run("exists", func(t *testing.T) {
		ctx, _, _ := setup(t, lang.EncodingText)

		err := (&Rename{Old: "Data.Queue.Internal", New: "Data.Queue"}).Run(ctx)
		if !errors.Is(err, project.ErrModuleExists) {
			t.Fatalf("expected ErrModuleExists, got %v", err)
		}
	})

	t.Run("unresolved_position", func(t *testing.T) {
		ctx, root, _ := setup(t, lang.EncodingText)

		err := (&Rename{Old: filepath.Join(root, "src", "Data", "Queue.hs") + ":9:8", New: "Data.Dict"}).Run(ctx)
		if !errors.Is(err, ErrUnresolved) {
			t.Fatalf("expected ErrUnresolved, got %v", err)
		}
	})
}

func TestCheck_Run(t *testing.T) {
	ctx, root, out := setup(t, lang.EncodingText)

	err := (&Check{}).Run(ctx)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}

	for _, want := range []string{
		"↓ Data.Map (",
		"↓ Data.List (",
		"3 files: 2 unresolved, 0 unparsable\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	writeFiles(t, root, map[string]string{
		"lib/Data/Map.hs":  "module Data.Map where\n",
		"lib/Data/List.hs": "module Data.List where\n",
	})
	out.Reset()

	if err := (&Check{}).Run(ctx); err != nil {
		t.Fatalf("clean project failed check: %v", err)
	}

	if !strings.HasSuffix(out.String(), "5 files: all imports resolved\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCheck_RunParseFailure(t *testing.T) {
	ctx, root, out := setup(t, lang.EncodingJSON)

	writeFiles(t, root, map[string]string{"src/Broken.hs": "module Broken ("})

	if err := (&Check{}).Run(ctx); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}

	var result CheckResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatal(err)
	}

	if len(result.Failures) != 1 || result.Failures[0].File != filepath.Join(root, "src", "Broken.hs") {
		t.Errorf("unexpected failures %+v", result.Failures)
	}

	if result.Files != 3 || len(result.Unresolved) != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestFind_Run(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Find
		want  []string
		error error
	}{
		{name: "fuzzy", cmd: Find{Query: "dqi"}, want: []string{"Data.Queue.Internal"}},
		{name: "ranked", cmd: Find{Query: "queue"}, want: []string{"Data.Queue", "Data.Queue.Internal"}},
		{name: "limit", cmd: Find{Query: "queue", Limit: 1}, want: []string{"Data.Queue"}},
		{name: "all", cmd: Find{}, want: []string{"Data.Queue", "Data.Queue.Internal"}},
		{name: "none", cmd: Find{Query: "zzz"}, error: ErrNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, out := setup(t, lang.EncodingJSON)

			err := tt.cmd.Run(ctx)
			if tt.error != nil {
				if !errors.Is(err, tt.error) {
					t.Fatalf("expected %v, got %v", tt.error, err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			var matches []project.Match
			if err := json.Unmarshal(out.Bytes(), &matches); err != nil {
				t.Fatal(err)
			}

			got := make([]string, len(matches))
			for i, m := range matches {
				got[i] = m.Name
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Run(t *testing.T) {
	ctx, root, out := setup(t, lang.EncodingText)

	src := filepath.Join(root, "src", "Data", "Queue", "Internal.hs")

	if err := (&Parse{Source: src}).Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if want := "Data.Queue.Internal\n  ↓ Data.List\n"; out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}

	ctx, root, out = setup(t, lang.EncodingJSON)

	if err := (&Parse{Source: filepath.Join(root, "src", "Data", "Queue.hs")}).Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	records := decodeRecords(t, out.Bytes())
	if len(records) == 0 || records[0].Role != "declaration" {
		t.Fatalf("unexpected records %+v", records)
	}

	// Only the file's own declaration is in scope.
	for _, r := range records {
		if r.Role == "import" && r.Resolved {
			t.Errorf("import %s resolved outside the project", r.Name)
		}
	}

	if err := (&Parse{Source: filepath.Join(root, "Missing.hs")}).Run(ctx); !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}
