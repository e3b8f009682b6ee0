// Package cast implements a reader and printer for the textual filter
// algorithm syntax (spec §2's CAST form): a small s-expression grammar over
// ast.Kind's own name strings, so every construct Synthesize or a hand
// written filter can build has a surface form to read and print.
//
// Grounded on flapc's lexer.go (a rune-at-a-time scanner with peek/advance
// and a Token/TokenKind pair) generalized from Flap's C-like token set down
// to the handful of token kinds an s-expression grammar needs.
package cast

import (
	"strings"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokAtom // symbol or number; the parser decides which
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func (lx *lexer) peekRune() (rune, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *lexer) advance() (rune, bool) {
	r, ok := lx.peekRune()
	if !ok {
		return 0, false
	}
	lx.pos++
	if r == '\n' {
		lx.line++
	}
	return r, true
}

func isAtomRune(r rune) bool {
	switch r {
	case '(', ')', ';':
		return false
	}
	return !isSpace(r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func (lx *lexer) skipSpaceAndComments() {
	for {
		r, ok := lx.peekRune()
		if !ok {
			return
		}
		if isSpace(r) {
			lx.advance()
			continue
		}
		if r == ';' {
			for {
				r, ok := lx.advance()
				if !ok || r == '\n' {
					break
				}
			}
			continue
		}
		return
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpaceAndComments()
	r, ok := lx.peekRune()
	if !ok {
		return token{kind: tokEOF, line: lx.line}, nil
	}
	line := lx.line
	switch r {
	case '(':
		lx.advance()
		return token{kind: tokLParen, line: line}, nil
	case ')':
		lx.advance()
		return token{kind: tokRParen, line: line}, nil
	}
	var sb strings.Builder
	for {
		r, ok := lx.peekRune()
		if !ok || !isAtomRune(r) {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	if sb.Len() == 0 {
		return token{}, ferr.New(ferr.Fatal, "cast: unexpected character %q at line %d", r, line)
	}
	return token{kind: tokAtom, text: sb.String(), line: line}, nil
}
