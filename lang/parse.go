package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/hsmod/log"
)

// ParseString parses Haskell source text and returns its syntax tree.
// Identical sources are parsed once; see [ClearCache].
func ParseString(ctx context.Context, src string, opts ...Option) (*Tree, error) {
	var cfg Tree

	applyOptions(&cfg, opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.String("path", cfg.path),
		slog.Int("source_length", len(src)),
	)

	nodes, err := parseCached(ctx, []byte(src), cfg.path, cfg.logger)
	if err != nil {
		return nil, err
	}

	return newTree([]byte(src), nodes, opts...), nil
}

// ParseReader parses a syntax tree from an io.Reader.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Tree, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}

// parseArena parses src into a fresh node arena.
func parseArena(
	ctx context.Context,
	src []byte,
	path string,
	logger log.Logger,
) ([]node, error) {
	p := &parser{
		lex:    newLexer(src),
		src:    src,
		path:   path,
		logger: logger,
	}

	p.advance()

	if err := p.parseFile(ctx); err != nil {
		return nil, err
	}

	logger.TraceContext(ctx, "parse complete",
		slog.String("path", path),
		slog.Int("node_count", len(p.nodes)),
	)

	return p.nodes, nil
}

// parser is a recursive descent parser for the module header:
//
//	File    → [ 'module' Modid [ Exports ] 'where' ] { ';' | Import } Body
//	Exports → '(' [ Export { ',' Export } [','] ] ')'
//	Export  → 'module' Modid | <balanced tokens>
//	Import  → 'import' ['qualified'] [String] Modid ['qualified']
//	          ['as' Modid] ['hiding'] [ '(' <balanced> ')' ]
//	Body    → <rest of file>
type parser struct {
	lex    *lexer
	src    []byte
	path   string
	tok    token
	nodes  []node
	logger log.Logger
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

// open appends a node and links it to parent.
func (p *parser) open(kind Kind, parent NodeID, start int) NodeID {
	id := NodeID(len(p.nodes))

	p.nodes = append(p.nodes, node{
		kind:   kind,
		span:   Span{start, start},
		parent: parent,
	})

	if parent != NoNode {
		p.nodes[parent].children = append(p.nodes[parent].children, id)
	}

	return id
}

func (p *parser) close(id NodeID, end int) {
	p.nodes[id].span.End = end
}

func (p *parser) parseFile(ctx context.Context) error {
	file := p.open(KindFile, NoNode, 0)

	if p.tok.is(tokVarid, "module") {
		if err := p.parseModuleDecl(ctx, file); err != nil {
			return err
		}
	}

	// An explicit layout brace is accepted but carries no meaning.
	if p.tok.is(tokSpecial, "{") {
		p.advance()
	}

	for {
		if err := p.lexError(); err != nil {
			return err
		}

		switch {
		case p.tok.is(tokSpecial, ";"):
			p.advance()

			continue

		case p.tok.is(tokVarid, "import"):
			if err := p.parseImport(ctx, file); err != nil {
				return err
			}

			continue
		}

		break
	}

	body := p.open(KindBody, file, p.tok.span.Start)
	p.close(body, len(p.src))
	p.close(file, len(p.src))

	return nil
}

func (p *parser) parseModuleDecl(ctx context.Context, parent NodeID) error {
	decl := p.open(KindModuleDecl, parent, p.tok.span.Start)
	p.advance() // 'module'

	if _, err := p.parseModid(decl, RoleDeclaration); err != nil {
		return err
	}

	if p.tok.is(tokSpecial, "(") {
		if err := p.parseExports(ctx, decl); err != nil {
			return err
		}
	}

	if !p.tok.is(tokVarid, "where") {
		return p.expected("where")
	}

	p.close(decl, p.tok.span.End)
	p.advance()

	p.logger.TraceContext(ctx, "module header",
		slog.String("name", p.text(p.nodes[decl].children[0])),
	)

	return nil
}

func (p *parser) parseExports(ctx context.Context, parent NodeID) error {
	list := p.open(KindExportList, parent, p.tok.span.Start)
	p.advance() // '('

	for {
		if err := p.lexError(); err != nil {
			return err
		}

		switch {
		case p.tok.kind == tokEOF:
			return p.expected(")")

		case p.tok.is(tokSpecial, ")"):
			p.close(list, p.tok.span.End)
			p.advance()

			return nil

		case p.tok.is(tokSpecial, ","):
			p.advance()

		case p.tok.is(tokVarid, "module"):
			export := p.open(KindExport, list, p.tok.span.Start)
			p.advance()

			id, err := p.parseModid(export, RoleExport)
			if err != nil {
				return err
			}

			p.close(export, p.nodes[id].span.End)

			p.logger.TraceContext(ctx, "module export",
				slog.String("name", p.text(id)),
			)

		default:
			if err := p.skipExport(); err != nil {
				return err
			}
		}
	}
}

// skipExport skips one ordinary export entry, stopping before the ',' or
// ')' that ends it.
func (p *parser) skipExport() error {
	depth := 0

	for {
		if err := p.lexError(); err != nil {
			return err
		}

		switch {
		case p.tok.kind == tokEOF:
			return p.expected(")")

		case p.tok.is(tokSpecial, "("), p.tok.is(tokSpecial, "["):
			depth++

		case p.tok.is(tokSpecial, ")"), p.tok.is(tokSpecial, "]"):
			if depth == 0 {
				return nil
			}

			depth--

		case p.tok.is(tokSpecial, ","):
			if depth == 0 {
				return nil
			}
		}

		p.advance()
	}
}

func (p *parser) parseImport(ctx context.Context, parent NodeID) error {
	decl := p.open(KindImportDecl, parent, p.tok.span.Start)
	p.advance() // 'import'

	qualified := false
	if p.tok.is(tokVarid, "qualified") {
		qualified = true

		p.advance()
	}

	// Package-qualified import: import "pkg" M
	if p.tok.kind == tokString {
		p.advance()
	}

	target, err := p.parseModid(decl, RoleImport)
	if err != nil {
		return err
	}

	end := p.nodes[target].span.End

	if p.tok.is(tokVarid, "qualified") {
		qualified = true
		end = p.tok.span.End

		p.advance()
	}

	if p.tok.is(tokVarid, "as") {
		p.advance()

		alias, err := p.parseModid(decl, RoleAlias)
		if err != nil {
			return err
		}

		end = p.nodes[alias].span.End
	}

	if p.tok.is(tokVarid, "hiding") {
		end = p.tok.span.End

		p.advance()
	}

	if p.tok.is(tokSpecial, "(") {
		closing, err := p.skipBalanced()
		if err != nil {
			return err
		}

		end = closing
	}

	p.close(decl, end)

	p.logger.TraceContext(ctx, "import",
		slog.String("module", p.text(target)),
		slog.Bool("qualified", qualified),
	)

	return nil
}

// skipBalanced skips a parenthesized group and returns the offset after its
// closing parenthesis.
func (p *parser) skipBalanced() (int, error) {
	depth := 0

	for {
		if err := p.lexError(); err != nil {
			return 0, err
		}

		switch {
		case p.tok.kind == tokEOF:
			return 0, p.expected(")")

		case p.tok.is(tokSpecial, "("):
			depth++

		case p.tok.is(tokSpecial, ")"):
			depth--

			if depth == 0 {
				end := p.tok.span.End
				p.advance()

				return end, nil
			}
		}

		p.advance()
	}
}

// parseModid parses a module name into a Modid node owning one ModuleName
// anchor that covers the same text.
func (p *parser) parseModid(parent NodeID, role Role) (NodeID, error) {
	if err := p.lexError(); err != nil {
		return NoNode, err
	}

	if p.tok.kind != tokModid {
		return NoNode, p.expected("module name")
	}

	id := p.open(KindModid, parent, p.tok.span.Start)
	p.nodes[id].role = role
	p.close(id, p.tok.span.End)

	name := p.open(KindModuleName, id, p.tok.span.Start)
	p.close(name, p.tok.span.End)

	p.advance()

	return id, nil
}

func (p *parser) text(id NodeID) string {
	span := p.nodes[id].span

	return string(p.src[span.Start:span.End])
}

func (p *parser) position(offset int) Position {
	return makeLineIndex(p.src).position(p.src, offset)
}

func (p *parser) expected(what ...string) error {
	found := p.tok.text
	if p.tok.kind == tokEOF {
		found = tokEOF.String()
	}

	return &ParseError{
		Pos:      p.position(p.tok.span.Start),
		Path:     p.path,
		Source:   string(p.src),
		Expected: what,
		Found:    found,
	}
}

func (p *parser) lexError() error {
	if p.lex.err == nil {
		return nil
	}

	return &ParseError{
		Pos:    p.position(p.lex.err.offset),
		Path:   p.path,
		Source: string(p.src),
		Found:  p.lex.err.msg,
	}
}
