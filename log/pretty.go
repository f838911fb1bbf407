package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of pretty output. Styles are bound to a renderer
// for the output writer, so colors degrade to plain text when the writer is
// not a color terminal.
type palette struct {
	key, str, num, dur, null lipgloss.Style
	yes, no                  lipgloss.Style
	time, msg, source        lipgloss.Style
	trace, debug, info, warn lipgloss.Style
	err                      lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:    fg("8"),
		str:    fg("6"),
		num:    fg("3"),
		dur:    fg("5"),
		null:   fg("8").Italic(true),
		yes:    fg("2"),
		no:     fg("1"),
		time:   fg("8"),
		msg:    r.NewStyle().Bold(true),
		source: fg("8").Underline(true),
		trace:  fg("4"),
		debug:  fg("4").Bold(true),
		info:   fg("2").Bold(true),
		warn:   fg("3").Bold(true),
		err:    fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err

	case l >= slog.LevelWarn:
		return p.warn

	case l >= slog.LevelInfo:
		return p.info

	case l >= slog.LevelDebug:
		return p.debug

	default:
		return p.trace
	}
}

// prettyHandler renders records as colorized single-line text or as
// indented, colorized JSON.
type prettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	json   bool
	colors palette
	attrs  []slog.Attr // preformatted by WithAttrs, keys already qualified
	prefix string      // group prefix for record attributes
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, asJSON bool) *prettyHandler {
	return &prettyHandler{
		opts:   opts,
		mu:     &sync.Mutex{},
		w:      w,
		json:   asJSON,
		colors: newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.flatten(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	header := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		header = append(header, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	header = append(header, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			header = append(header, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.flatten(h.prefix, []slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		h.writeJSON(&buf, r, header, attrs)
	} else {
		h.writeText(&buf, r, header, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, r slog.Record, header, attrs []slog.Attr) {
	for _, a := range header {
		if a.Key == "" {
			continue
		}

		switch a.Key {
		case slog.TimeKey:
			buf.WriteString(h.colors.time.Render(a.Value.String()))

		case slog.LevelKey:
			buf.WriteString(h.colors.level(r.Level).Render(fmt.Sprintf("%-5s", a.Value.String())))

		case slog.SourceKey:
			buf.WriteString(h.colors.source.Render(a.Value.String()))
		}

		buf.WriteByte(' ')
	}

	buf.WriteString(h.colors.msg.Render(r.Message))

	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(h.colors.key.Render(a.Key + "="))
		buf.WriteString(h.value(a.Value))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, r slog.Record, header, attrs []slog.Attr) {
	fields := append(header, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, attrs...)

	buf.WriteString("{\n")

	first := true

	for _, a := range fields {
		if a.Key == "" {
			continue
		}

		if !first {
			buf.WriteString(",\n")
		}

		first = false

		buf.WriteString("  ")
		buf.WriteString(h.colors.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(h.colors.level(r.Level).Render(strconv.Quote(a.Value.String())))

			continue
		}

		buf.WriteString(h.jsonValue(a.Value))
	}

	buf.WriteString("\n}\n")
}

// replace applies the configured ReplaceAttr to a built-in attribute.
func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// flatten resolves attribute values and expands groups into dotted keys.
func (h *prettyHandler) flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			group := prefix
			if a.Key != "" {
				group += a.Key + "."
			}

			out = append(out, h.flatten(group, a.Value.Group())...)

			continue
		}

		if a.Equal(slog.Attr{}) {
			continue
		}

		a.Key = prefix + a.Key
		out = append(out, a)
	}

	return out
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.colors.str.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.colors.num.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return h.colors.yes.Render("true")
		}

		return h.colors.no.Render("false")

	case slog.KindDuration:
		return h.colors.dur.Render(v.Duration().String())

	case slog.KindTime:
		return h.colors.time.Render(v.Time().Format(time.RFC3339))

	default:
		if v.Any() == nil {
			return h.colors.null.Render("<nil>")
		}

		return h.colors.str.Render(v.String())
	}
}

func (h *prettyHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.colors.num.Render(v.String())

	case slog.KindBool:
		return h.value(v)

	case slog.KindDuration:
		return h.colors.dur.Render(strconv.Quote(v.Duration().String()))

	case slog.KindTime:
		return h.colors.time.Render(strconv.Quote(v.Time().Format(time.RFC3339)))

	case slog.KindAny:
		if v.Any() == nil {
			return h.colors.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return h.colors.str.Render(strconv.Quote(err.Error()))
		}

		data, err := json.Marshal(v.Any())
		if err == nil {
			return h.colors.str.Render(string(data))
		}
	}

	return h.colors.str.Render(strconv.Quote(strings.ToValidUTF8(v.String(), "�")))
}
