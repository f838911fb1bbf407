package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// Encoding selects an output representation.
type Encoding int

const (
	EncodingText Encoding = iota // text
	EncodingJSON                 // json
	EncodingYAML                 // yaml
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"

	case EncodingYAML:
		return "yaml"

	default:
		return "text"
	}
}

// Encodings lists the names accepted by [ParseEncoding].
func Encodings() []string {
	return []string{
		EncodingText.String(),
		EncodingJSON.String(),
		EncodingYAML.String(),
	}
}

// ParseEncoding parses an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	for _, e := range []Encoding{EncodingText, EncodingJSON, EncodingYAML} {
		if strings.EqualFold(e.String(), s) {
			return e, nil
		}
	}

	return EncodingText, ErrInvalidEncoding.With(slog.String("encoding", s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	enc, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}

	*e = enc

	return nil
}

// Formatter renders a value in human-readable text.
type Formatter interface {
	Format(ctx context.Context, w io.Writer, indent int) error
}

// Encode writes v to w using enc. Text output uses v's [Formatter] when it
// has one. An indent of zero selects compact output.
func Encode(ctx context.Context, w io.Writer, enc Encoding, indent int, v any) error {
	switch enc {
	case EncodingJSON:
		return FormatJSON(ctx, w, indent, v)

	case EncodingYAML:
		return FormatYAML(ctx, w, indent, v)

	case EncodingText:
		if f, ok := v.(Formatter); ok {
			return f.Format(ctx, w, indent)
		}

		_, err := fmt.Fprintln(w, v)

		return err

	default:
		return ErrInvalidEncoding.With(slog.Int("encoding", int(enc)))
	}
}

// FormatJSON writes v as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, indent int, v any) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes v as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, indent int, v any) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// Format writes an indented outline of the tree's module identifiers.
func (t *Tree) Format(_ context.Context, w io.Writer, indent int) error {
	pad := strings.Repeat(" ", max(indent, 1))

	if _, err := fmt.Fprintln(w, t.ModuleName()); err != nil {
		return err
	}

	for _, m := range t.ModuleIdentifiers() {
		if m.Role() == RoleDeclaration {
			continue
		}

		p, err := m.Presentation()
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s%s %s\n", pad, p.Icon.Glyph(), p.Label); err != nil {
			return err
		}
	}

	return nil
}
