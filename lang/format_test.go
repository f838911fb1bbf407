package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEncode(t *testing.T) {
	p := Presentation{Label: "Data.Map", Location: "Map.hs:1:8", Icon: IconModule}

	tests := []struct {
		name     string
		enc      Encoding
		indent   int
		contains []string
	}{
		{
			name:     "compact json",
			enc:      EncodingJSON,
			contains: []string{`{"label":"Data.Map","location":"Map.hs:1:8","icon":"module"}`},
		},
		{
			name:     "indented json",
			enc:      EncodingJSON,
			indent:   2,
			contains: []string{"{\n  \"label\": \"Data.Map\",", `"icon": "module"`},
		},
		{
			name:     "yaml",
			enc:      EncodingYAML,
			indent:   2,
			contains: []string{"label: Data.Map", "icon: module"},
		},
		{
			name:     "text",
			enc:      EncodingText,
			contains: []string{"Data.Map (Map.hs:1:8)\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(context.Background(), &buf, tt.enc, tt.indent, p); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestParseEncoding(t *testing.T) {
	for _, name := range Encodings() {
		enc, err := ParseEncoding(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseEncoding(%q) failed: %v", name, err)
		}

		if enc.String() != name {
			t.Errorf("expected %q, got %q", name, enc)
		}
	}

	if _, err := ParseEncoding("xml"); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}

	var enc Encoding
	if err := enc.UnmarshalText([]byte("yaml")); err != nil || enc != EncodingYAML {
		t.Errorf("UnmarshalText: got %s, %v", enc, err)
	}
}

func TestTree_Format(t *testing.T) {
	tree := mustParse(t, "module A (module C) where\nimport B as C\n")

	var buf bytes.Buffer
	if err := Encode(context.Background(), &buf, EncodingText, 2, tree); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "A\n  ↑ C\n  ↓ B\n  ≡ C\n"
	if buf.String() != want {
		t.Errorf("format mismatch:\nwant: %q\ngot:  %q", want, buf.String())
	}
}

func TestIcon_Text(t *testing.T) {
	for _, icon := range []Icon{IconNone, IconModule, IconExport, IconImport, IconAlias} {
		text, err := icon.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}

		var got Icon
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText failed: %v", err)
		}

		if got != icon {
			t.Errorf("expected %s, got %s", icon, got)
		}
	}
}
