package project

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/hsmod/lang"
)

func TestProject_Outline(t *testing.T) {
	ctx := context.Background()
	p := newQueueProject(t)

	records, err := p.Outline(ctx, nil, "app/Main.hs")
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}

	want := []Record{
		{
			Name: "Data.Queue", Role: "import", File: "app/Main.hs",
			Line: 1, Column: 8, Resolved: true,
			Target: "src/Data/Queue.hs:1:8", Label: "Data.Queue",
			Location: "app/Main.hs:1:8", Icon: lang.IconImport,
		},
		{
			Name: "Data.Queue.Internal", Role: "import", File: "app/Main.hs",
			Line: 2, Column: 18, Resolved: true,
			Target: "src/Data/Queue/Internal.hs:1:8", Label: "Data.Queue.Internal",
			Location: "app/Main.hs:2:18", Icon: lang.IconImport,
		},
		{
			Name: "I", Role: "alias", File: "app/Main.hs",
			Line: 2, Column: 41, Resolved: true,
			Target: "app/Main.hs:2:41", Label: "I",
			Location: "app/Main.hs:2:41", Icon: lang.IconAlias,
		},
	}

	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(records), len(want), records)
	}

	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d:\n got %+v\nwant %+v", i, records[i], want[i])
		}
	}

	if _, err := p.Outline(ctx, nil, "Missing.hs"); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("expected ErrUnknownFile, got %v", err)
	}
}

func TestProject_OutlineFilter(t *testing.T) {
	ctx := context.Background()
	p := newQueueProject(t)

	tests := []struct {
		expr string
		want []string
	}{
		{`role == "import" && !resolved`, []string{"Data.Map", "Data.List"}},
		{`role == "export"`, []string{"Data.Queue.Internal", "Q"}},
		{`name startsWith "Data.Queue" && file == "app/Main.hs"`, []string{"Data.Queue", "Data.Queue.Internal"}},
		{`line > 100`, nil},
		{``, nil}, // every record
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			filter, err := CompileFilter(tt.expr)
			if err != nil {
				t.Fatalf("CompileFilter failed: %v", err)
			}

			records, err := p.Outline(ctx, filter)
			if err != nil {
				t.Fatal(err)
			}

			if tt.expr == "" {
				if len(records) != 12 {
					t.Errorf("expected all 12 records, got %d", len(records))
				}

				return
			}

			var got []string
			for _, r := range records {
				got = append(got, r.Name)
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_Unresolved(t *testing.T) {
	p := newQueueProject(t)

	records, err := p.Unresolved(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, r := range records {
		got = append(got, r.Name+" "+r.Reason)
	}

	want := "Data.Map not found,Data.List not found"
	if strings.Join(got, ",") != want {
		t.Errorf("got %v, want %s", got, want)
	}
}

func TestRecords_Format(t *testing.T) {
	ctx := context.Background()
	p := newQueueProject(t)

	records, err := p.Outline(ctx, nil, "src/Data/Queue/Internal.hs")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := lang.Encode(ctx, &buf, lang.EncodingText, 2, records); err != nil {
		t.Fatal(err)
	}

	want := "src/Data/Queue/Internal.hs\n" +
		"  ◆ Data.Queue.Internal (src/Data/Queue/Internal.hs:1:8)\n" +
		"  ↓ Data.List (src/Data/Queue/Internal.hs:3:8) [not found]\n"

	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()

	if err := lang.Encode(ctx, &buf, lang.EncodingJSON, 0, records); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`"name":"Data.List"`, `"role":"import"`, `"reason":"not found"`, `"icon":"import"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %s in %s", want, buf.String())
		}
	}
}
