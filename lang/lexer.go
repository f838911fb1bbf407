package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind classifies lexemes of the module header.
type tokenKind int

const (
	tokEOF     tokenKind = iota
	tokModid             // Conid { '.' Conid }
	tokQName             // qualified variable or operator, e.g. Map.insert
	tokVarid             // variable identifier or keyword
	tokString            // "..."
	tokChar              // 'c'
	tokNumber            // numeric literal
	tokSpecial           // ( ) , ; [ ] ` { }
	tokSymbol            // operator symbol sequence
	tokOther             // anything else
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokModid:
		return "module name"
	case tokQName:
		return "qualified name"
	case tokVarid:
		return "identifier"
	case tokString:
		return "string"
	case tokChar:
		return "character"
	case tokNumber:
		return "number"
	case tokSpecial:
		return "special"
	case tokSymbol:
		return "symbol"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	span Span
	text string
}

// is reports whether the token has the given kind and text.
func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// lexer scans Haskell source into tokens, skipping whitespace and comments.
type lexer struct {
	src []byte
	pos int
	err *lexError
}

type lexError struct {
	offset int
	msg    string
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

// next returns the next significant token.
func (l *lexer) next() token {
	l.skipTrivia()

	start := l.pos
	if l.eof() {
		return token{kind: tokEOF, span: Span{start, start}}
	}

	r := l.peek()

	var kind tokenKind

	switch {
	case isLarge(r):
		kind = l.scanQualified()

	case isSmall(r):
		l.scanIdent()

		kind = tokVarid

	case unicode.IsDigit(r):
		l.scanNumber()

		kind = tokNumber

	case r == '"':
		l.scanQuoted('"')

		kind = tokString

	case r == '\'':
		l.scanQuoted('\'')

		kind = tokChar

	case isSpecial(r):
		l.advance()

		kind = tokSpecial

	case isSymbol(r):
		for !l.eof() && isSymbol(l.peek()) {
			l.advance()
		}

		kind = tokSymbol

	default:
		l.advance()

		kind = tokOther
	}

	return token{
		kind: kind,
		span: Span{start, l.pos},
		text: string(l.src[start:l.pos]),
	}
}

// scanQualified scans Conid { '.' Conid } and an optional trailing
// '.' varid or '.' symbol, which makes the token a qualified name.
func (l *lexer) scanQualified() tokenKind {
	l.scanIdent()

	for l.peek() == '.' {
		r, _ := utf8.DecodeRune(l.src[min(l.pos+1, len(l.src)):])

		switch {
		case l.pos+1 < len(l.src) && isLarge(r):
			l.advance() // '.'
			l.scanIdent()

		case l.pos+1 < len(l.src) && isSmall(r):
			l.advance()
			l.scanIdent()

			return tokQName

		case l.pos+1 < len(l.src) && isSymbol(r):
			l.advance()

			for !l.eof() && isSymbol(l.peek()) {
				l.advance()
			}

			return tokQName

		default:
			return tokModid
		}
	}

	return tokModid
}

func (l *lexer) scanIdent() {
	l.advance()

	for !l.eof() && isIdentContinue(l.peek()) {
		l.advance()
	}
}

func (l *lexer) scanNumber() {
	for !l.eof() {
		r := l.peek()
		if !unicode.IsDigit(r) && !unicode.IsLetter(r) && r != '_' && r != '.' {
			return
		}

		l.advance()
	}
}

func (l *lexer) scanQuoted(quote rune) {
	start := l.pos
	l.advance() // opening quote

	for !l.eof() {
		r := l.peek()

		switch r {
		case '\\':
			l.advance()

			if !l.eof() {
				l.advance()
			}

			continue

		case quote:
			l.advance()

			return

		case '\n':
			// A lone quote in an identifier position (e.g. a promoted
			// constructor) never spans lines.
			if quote == '\'' {
				l.pos = start + 1

				return
			}
		}

		l.advance()
	}

	if quote == '"' {
		l.err = &lexError{offset: start, msg: "unterminated string"}
	}
}

func (l *lexer) skipTrivia() {
	for !l.eof() {
		r := l.peek()

		switch {
		case unicode.IsSpace(r):
			l.advance()

		case r == '-' && l.isLineComment():
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case r == '{' && l.hasPrefix("{-"):
			l.skipBlockComment()

		default:
			return
		}
	}
}

// isLineComment reports whether the dashes at the current position start a
// comment: two or more dashes not followed by another symbol character.
func (l *lexer) isLineComment() bool {
	i := l.pos
	for i < len(l.src) && l.src[i] == '-' {
		i++
	}

	if i-l.pos < 2 {
		return false
	}

	if i == len(l.src) {
		return true
	}

	r, _ := utf8.DecodeRune(l.src[i:])

	return !isSymbol(r)
}

// skipBlockComment skips a nested {- ... -} comment, including pragmas.
func (l *lexer) skipBlockComment() {
	start := l.pos
	depth := 0

	for !l.eof() {
		switch {
		case l.hasPrefix("{-"):
			depth++
			l.pos += 2

		case l.hasPrefix("-}"):
			depth--
			l.pos += 2

			if depth == 0 {
				return
			}

		default:
			l.advance()
		}
	}

	l.err = &lexError{offset: start, msg: "unterminated block comment"}
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(string(l.src[l.pos:min(l.pos+len(s), len(l.src))]), s)
}

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.src[l.pos:])

	return r
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	_, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

// Character classification

func isLarge(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsTitle(r)
}

func isSmall(r rune) bool {
	return unicode.IsLower(r) || r == '_'
}

func isIdentContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nd, // Number, Decimal Digit
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
	) || r == '_' || r == '\''
}

func isSpecial(r rune) bool {
	return strings.ContainsRune("(),;[]`{}", r)
}

func isSymbol(r rune) bool {
	if r < utf8.RuneSelf {
		return strings.ContainsRune("!#$%&*+./<=>?@\\^|-~:", r)
	}

	return (unicode.IsSymbol(r) || unicode.IsPunct(r)) && !isSpecial(r) &&
		r != '"' && r != '\''
}
