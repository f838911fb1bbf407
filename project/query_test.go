package project

import (
	"errors"
	"testing"
)

func TestCompileFilter(t *testing.T) {
	record := Record{
		Name:     "Data.Queue",
		Role:     "import",
		File:     "app/Main.hs",
		Line:     3,
		Column:   8,
		Resolved: false,
		Reason:   "not found",
	}

	tests := []struct {
		expr    string
		match   bool
		wantErr bool
	}{
		{expr: `name == "Data.Queue"`, match: true},
		{expr: `role in ["import", "export"] && line < 10`, match: true},
		{expr: `resolved`, match: false},
		{expr: `reason == "not found" && column == 8`, match: true},
		{expr: `file endsWith "Lib.hs"`, match: false},
		{expr: `name matches "^Data\\."`, match: true},
		{expr: `line + 1`, wantErr: true},
		{expr: `unknown == 1`, wantErr: true},
		{expr: `icon == "import"`, wantErr: true},
		{expr: `name ==`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			filter, err := CompileFilter(tt.expr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("CompileFilter failed: %v", err)
			}

			if filter.String() != tt.expr {
				t.Errorf("String() = %q", filter.String())
			}

			got, err := filter.Match(record)
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}

			if got != tt.match {
				t.Errorf("Match = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestCompileFilter_Empty(t *testing.T) {
	filter, err := CompileFilter("   ")
	if err != nil || filter != nil {
		t.Fatalf("expected nil filter, got %v, %v", filter, err)
	}

	ok, err := filter.Match(Record{})
	if err != nil || !ok {
		t.Errorf("nil filter must match, got %v, %v", ok, err)
	}

	if filter.String() != "" {
		t.Errorf("nil filter String() = %q", filter.String())
	}
}
