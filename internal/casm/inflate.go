package casm

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// Inflate is the exact inverse of Flatten (spec §4.6): it reads s's tokens
// in order, maintaining a value stack, and reconstructs the AST under st.
// ss must be the same SectionSymbols Flatten used, so Symbol_lookup indices
// resolve back to the identical *ast.Node instances.
func Inflate(s *IntStream, st *ast.SymbolTable, ss *ast.SectionSymbols) (*ast.Node, error) {
	var stack []*ast.Node
	var pendingCount = -1

	for {
		tag, ok := s.Read()
		if !ok {
			break
		}
		switch ast.PredefinedSymbol(tag) {
		case ast.PredefinedSymbolLookup:
			idx, ok := s.Read()
			if !ok {
				return nil, ferr.New(ferr.MalformedInput, "inflate: truncated Symbol_lookup")
			}
			sym := ss.At(int(idx))
			if sym == nil {
				return nil, ferr.New(ferr.MalformedInput, "inflate: unknown symbol index %d", idx)
			}
			stack = append(stack, sym)

		case ast.PredefinedIntValueBegin:
			kind, ok := s.Read()
			if !ok {
				return nil, ferr.New(ferr.MalformedInput, "inflate: truncated integer literal")
			}
			formatOrZero, ok := s.Read()
			if !ok {
				return nil, ferr.New(ferr.MalformedInput, "inflate: truncated integer literal")
			}
			var node *ast.Node
			if formatOrZero == 0 {
				node = st.CreateIntegerDefault(ast.Kind(kind))
			} else {
				value, ok := s.Read()
				if !ok {
					return nil, ferr.New(ferr.MalformedInput, "inflate: truncated integer literal value")
				}
				node = st.CreateInteger(ast.Kind(kind), value, ast.IntFormat(formatOrZero-1))
			}
			end, ok := s.Read()
			if !ok || ast.PredefinedSymbol(end) != ast.PredefinedIntValueEnd {
				return nil, ferr.New(ferr.MalformedInput, "inflate: missing Int_value_end")
			}
			stack = append(stack, node)

		case ast.PredefinedNaryInst:
			count, ok := s.Read()
			if !ok {
				return nil, ferr.New(ferr.MalformedInput, "inflate: truncated Nary_inst")
			}
			pendingCount = int(count)

		case ast.PredefinedPostorderInst:
			kindVal, ok := s.Read()
			if !ok {
				return nil, ferr.New(ferr.MalformedInput, "inflate: truncated Postorder_inst")
			}
			kind := ast.Kind(kindVal)
			n := arity(kind, pendingCount)
			pendingCount = -1
			if n > len(stack) {
				return nil, ferr.New(ferr.MalformedInput, "inflate: stack underflow building %s", kind)
			}
			children := append([]*ast.Node(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			stack = append(stack, st.Create(kind, children...))

		default:
			return nil, ferr.New(ferr.MalformedInput, "inflate: unknown framing action %d", tag)
		}
	}

	if len(stack) != 1 {
		return nil, ferr.New(ferr.MalformedInput, "inflate: stream left %d roots on the stack", len(stack))
	}
	return stack[0], nil
}

// arity reports how many stack entries a Postorder_inst for kind consumes:
// the count carried by an immediately preceding Nary_inst for n-ary/select
// kinds, or the fixed count implied by kind's Family otherwise.
func arity(kind ast.Kind, pendingCount int) int {
	switch kind.Family() {
	case ast.FamilyNullary:
		return 0
	case ast.FamilyUnary:
		return 1
	case ast.FamilyBinary:
		return 2
	case ast.FamilyTernary:
		return 3
	default: // FamilyNary, FamilySelect
		if pendingCount < 0 {
			return 0
		}
		return pendingCount
	}
}
