package cast

import (
	"strconv"
	"strings"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// kindByName is built once from ast.Kind.String(), the only place kind
// names are spelled out, so this package can never drift from ast's own
// names.
var kindByName = func() map[string]ast.Kind {
	m := make(map[string]ast.Kind)
	for k := ast.Kind(0); k < ast.Kind(256); k++ {
		name := k.String()
		if name == "Kind(?)" {
			continue
		}
		m[name] = k
	}
	return m
}()

type parser struct {
	lx   *lexer
	st   *ast.SymbolTable
	peek *token
}

// Parse reads one top-level form from src (spec §2's CAST syntax: kind
// names parenthesized with their children, e.g. `(algorithm (fileHeader
// ...) (define File (paramsDecl) (localsDecl) (sequence ...)))`) into an
// ast.Node tree under st. It does not call ast.Install; the caller installs
// once it knows the full set of roots.
func Parse(st *ast.SymbolTable, src string) (*ast.Node, error) {
	p := &parser{lx: newLexer(src), st: st}
	n, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, ferr.New(ferr.Fatal, "cast: trailing input at line %d", tok.line)
	}
	return n, nil
}

func (p *parser) next() (token, error) {
	if p.peek != nil {
		t := *p.peek
		p.peek = nil
		return t, nil
	}
	return p.lx.next()
}

func (p *parser) parseForm() (*ast.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokAtom:
		return p.parseAtom(tok.text)
	case tokLParen:
		return p.parseList()
	default:
		return nil, ferr.New(ferr.Fatal, "cast: expected a form at line %d", tok.line)
	}
}

// parseAtom handles a bare atom outside parens: a number (a plain int32
// literal, used for case keys and param indices), a format-marker kind name
// (e.g. `varuint32` alone means CreateIntegerDefault), or a symbol
// reference.
func (p *parser) parseAtom(text string) (*ast.Node, error) {
	if v, format, ok := parseNumber(text); ok {
		return p.st.CreateInteger(ast.KindInt32, v, format), nil
	}
	if k, ok := kindByName[text]; ok && k.Family() == ast.FamilyInteger {
		return p.st.CreateIntegerDefault(k), nil
	}
	return p.st.GetSymbol(text), nil
}

func parseNumber(text string) (int64, ast.IntFormat, bool) {
	neg := false
	t := text
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	if t == "" {
		return 0, ast.FormatDecimal, false
	}
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		v, err := strconv.ParseUint(t[2:], 16, 64)
		if err != nil {
			return 0, ast.FormatDecimal, false
		}
		iv := int64(v)
		if neg {
			iv = -iv
		}
		return iv, ast.FormatHex, true
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, ast.FormatDecimal, false
		}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, ast.FormatDecimal, false
	}
	return v, ast.FormatDecimal, true
}

// parseList handles `(kindName child...)`, already past the '('.
func (p *parser) parseList() (*ast.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokAtom {
		return nil, ferr.New(ferr.Fatal, "cast: expected a kind name at line %d", tok.line)
	}
	kind, ok := kindByName[tok.text]
	if !ok {
		return nil, ferr.New(ferr.UnresolvedSymbol, "cast: unknown kind %q at line %d", tok.text, tok.line)
	}

	if kind.Family() == ast.FamilyInteger {
		return p.parseIntegerLiteral(kind, tok.line)
	}

	var children []*ast.Node
	for {
		nt, err := p.next()
		if err != nil {
			return nil, err
		}
		if nt.kind == tokRParen {
			break
		}
		p.peek = &nt
		child, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return p.st.Create(kind, children...), nil
}

// parseIntegerLiteral handles `(uint8 65)` style explicit literals: the
// list's single child must be a bare number.
func (p *parser) parseIntegerLiteral(kind ast.Kind, line int) (*ast.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokAtom {
		return nil, ferr.New(ferr.Fatal, "cast: %s literal expects a number at line %d", kind, line)
	}
	v, format, ok := parseNumber(tok.text)
	if !ok {
		return nil, ferr.New(ferr.Fatal, "cast: %s literal expects a number, got %q at line %d", kind, tok.text, line)
	}
	closeTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if closeTok.kind != tokRParen {
		return nil, ferr.New(ferr.Fatal, "cast: %s literal takes exactly one value at line %d", kind, line)
	}
	return p.st.CreateInteger(kind, v, format), nil
}
