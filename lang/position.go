package lang

import (
	"sort"
	"strconv"
	"unicode/utf8"
)

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Span is a half-open byte range [Start, End) of source text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// String returns "[start,end)".
func (s Span) String() string {
	return "[" + strconv.Itoa(s.Start) + "," + strconv.Itoa(s.End) + ")"
}

// lineIndex holds the byte offset of the first character of every line.
type lineIndex []int

func makeLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}

	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}

	return idx
}

// position converts a byte offset into a Position.
func (li lineIndex) position(src []byte, offset int) Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(src) {
		offset = len(src)
	}

	line := sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
	if line < 0 {
		line = 0
	}

	start := li[line]

	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: utf8.RuneCount(src[start:offset]) + 1,
	}
}

// offset converts a 1-based line and column into a byte offset.
// The second result is false when the location is outside the source.
func (li lineIndex) offset(src []byte, line, column int) (int, bool) {
	if line < 1 || line > len(li) || column < 1 {
		return 0, false
	}

	off := li[line-1]

	for col := 1; col < column; col++ {
		if off >= len(src) || src[off] == '\n' {
			return 0, false
		}

		_, size := utf8.DecodeRune(src[off:])
		off += size
	}

	return off, true
}
