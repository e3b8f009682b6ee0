package casm

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
)

// Flatten serializes root to s in postorder (spec §4.6): children are
// written before their parent's own tag, integer literals are written as
// (kind, 0) when default or (kind, format+1, value) otherwise, symbols are
// written as their dense index in ss, and n-ary/select nodes additionally
// record their child count so Inflate knows how many stack entries to
// collect.
//
// Scope decision (DESIGN.md): only the framing actions that round-trip an
// AST built from this package's own node set are implemented
// (Int_value_begin/end, Symbol_lookup, Nary_inst, Postorder_inst); the
// name-table actions (Symbol_name_begin/end) and the binary-tree walk
// actions (Binary_begin/bit/end) are not driven from here, since this repo
// has no textual-name round trip and no Huffman-coded algorithm stream at
// this layer (intcomp emits those directly as codec bits, not as flattened
// AST). ss must be the same SectionSymbols instance used to install root so
// symbol references resolve to stable indices.
func Flatten(root *ast.Node, ss *ast.SectionSymbols, out *IntStream) {
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		switch {
		case n.Kind == ast.KindSymbol:
			out.Write(int64(ast.PredefinedSymbolLookup))
			out.Write(int64(ss.Index(n)))
			return
		case n.Kind.Family() == ast.FamilyInteger:
			out.Write(int64(ast.PredefinedIntValueBegin))
			out.Write(int64(n.Kind))
			if n.IntDefault {
				out.Write(0)
			} else {
				out.Write(int64(n.IntFormat) + 1)
				out.Write(n.IntValue)
			}
			out.Write(int64(ast.PredefinedIntValueEnd))
			return
		}

		for _, c := range n.Children {
			walk(c)
		}
		switch n.Kind.Family() {
		case ast.FamilyNary, ast.FamilySelect:
			out.Write(int64(ast.PredefinedNaryInst))
			out.Write(int64(len(n.Children)))
		}
		out.Write(int64(ast.PredefinedPostorderInst))
		out.Write(int64(n.Kind))
	}
	walk(root)
}
