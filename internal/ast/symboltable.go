package ast

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/trace"

// intKey canonicalizes a mergable integer literal (spec §3.2: "two
// mergable integer nodes with equal (kind, value, format, default) share
// one instance").
type intKey struct {
	kind    Kind
	value   int64
	format  IntFormat
	isDef   bool
}

// SymbolTable is the scope/factory/installer for one AST (spec §3.1
// SymbolTable). It owns every Node it creates; nodes never outlive it.
type SymbolTable struct {
	parent *SymbolTable

	symbols    map[string]*Node
	integers   map[intKey]*Node
	predefined [PredefinedCount]*Node

	nextIndex int
	Trace     *trace.Sink

	// Section holds an optional SectionSymbols (SPEC_FULL §4). Install does
	// not set it, and casm's Flatten/Inflate take their SectionSymbols as an
	// explicit argument rather than reading this field.
	Section *SectionSymbols
}

// New creates a symbol table with no enclosing scope.
func New() *SymbolTable {
	return newTable(nil)
}

// NewScope creates a symbol table nested inside parent (spec §3.1
// "may reference an enclosing scope").
func NewScope(parent *SymbolTable) *SymbolTable {
	return newTable(parent)
}

func newTable(parent *SymbolTable) *SymbolTable {
	st := &SymbolTable{
		parent:   parent,
		symbols:  make(map[string]*Node),
		integers: make(map[intKey]*Node),
		Trace:    &trace.Sink{},
	}
	for i := 1; i < PredefinedCount; i++ {
		st.predefined[i] = &Node{Kind: KindSymbol, Name: PredefinedSymbol(i).String(), Predefined: PredefinedSymbol(i), CreateIndex: st.allocIndex()}
	}
	return st
}

func (st *SymbolTable) allocIndex() int {
	idx := st.nextIndex
	st.nextIndex++
	return idx
}

// Predefined returns the table's pre-populated node for p.
func (st *SymbolTable) Predefined(p PredefinedSymbol) *Node {
	if p <= PredefinedNone || int(p) >= PredefinedCount {
		return nil
	}
	return st.predefined[p]
}

// CreateInteger returns the canonical IntegerNode for (kind, value,
// format); mergable kinds are uniqued (spec §3.1/§3.2, §8's round-trip
// identity test).
func (st *SymbolTable) CreateInteger(kind Kind, value int64, format IntFormat) *Node {
	return st.createInt(kind, value, format, false)
}

// CreateIntegerDefault returns the canonical "default value" IntegerNode
// for kind (spec §4.6: flatten emits (kind, 0) for a default literal).
func (st *SymbolTable) CreateIntegerDefault(kind Kind) *Node {
	return st.createInt(kind, 0, FormatDecimal, true)
}

func (st *SymbolTable) createInt(kind Kind, value int64, format IntFormat, isDefault bool) *Node {
	if !kind.IsMergable() {
		return &Node{Kind: kind, IntValue: value, IntFormat: format, IntDefault: isDefault, CreateIndex: st.allocIndex()}
	}
	key := intKey{kind: kind, value: value, format: format, isDef: isDefault}
	if n, ok := st.integers[key]; ok {
		return n
	}
	n := &Node{Kind: kind, IntValue: value, IntFormat: format, IntDefault: isDefault, CreateIndex: st.allocIndex()}
	st.integers[key] = n
	return n
}

// GetSymbol returns the uniqued SymbolNode for name, creating it (with no
// definition yet) if this is the first reference (spec §4.3
// "get_symbol_definition(name) is similarly uniqued").
func (st *SymbolTable) GetSymbol(name string) *Node {
	if n, ok := st.symbols[name]; ok {
		return n
	}
	n := &Node{Kind: KindSymbol, Name: name, CreateIndex: st.allocIndex()}
	st.symbols[name] = n
	return n
}

// LookupSymbol searches this scope, then enclosing scopes, for name
// (spec §3.1 "may reference an enclosing scope").
func (st *SymbolTable) LookupSymbol(name string) *Node {
	if n, ok := st.symbols[name]; ok {
		return n
	}
	if st.parent != nil {
		return st.parent.LookupSymbol(name)
	}
	return nil
}

// Create is the generic node factory for every non-integer, non-symbol
// kind, arity-checked against Kind.Family() (spec §4.3 "symtab.create(kind,
// ...) returns a newly allocated node except for IntegerNode").
func (st *SymbolTable) Create(kind Kind, children ...*Node) *Node {
	checkArity(kind, len(children))
	return &Node{Kind: kind, Children: children, CreateIndex: st.allocIndex()}
}

func checkArity(kind Kind, n int) {
	switch kind.Family() {
	case FamilyNullary:
		if n != 0 {
			panic("ast: nullary kind " + kind.String() + " given children")
		}
	case FamilyUnary:
		if n != 1 {
			panic("ast: unary kind " + kind.String() + " needs exactly 1 child")
		}
	case FamilyBinary:
		if n != 2 {
			panic("ast: binary kind " + kind.String() + " needs exactly 2 children")
		}
	case FamilyTernary:
		if n != 3 {
			panic("ast: ternary kind " + kind.String() + " needs exactly 3 children")
		}
	// FamilyNary and FamilySelect accept any count.
	}
}

// SectionSymbols is the per-section symbol index used while flattening or
// inflating a `section` node's symbol table (SPEC_FULL §4, grounded on
// original_source/src/binary/SectionSymbolTable.*, src/casm/SymbolIndex.*):
// it assigns each symbol referenced within a section a dense integer index
// in first-use order.
type SectionSymbols struct {
	byName  map[string]int
	byIndex []*Node
}

// NewSectionSymbols creates an empty section symbol index.
func NewSectionSymbols() *SectionSymbols {
	return &SectionSymbols{byName: make(map[string]int)}
}

// Index returns the dense index assigned to sym, assigning a new one (the
// next available slot) on first reference.
func (ss *SectionSymbols) Index(sym *Node) int {
	if idx, ok := ss.byName[sym.Name]; ok {
		return idx
	}
	idx := len(ss.byIndex)
	ss.byName[sym.Name] = idx
	ss.byIndex = append(ss.byIndex, sym)
	return idx
}

// At returns the symbol assigned to idx, or nil if unassigned.
func (ss *SectionSymbols) At(idx int) *Node {
	if idx < 0 || idx >= len(ss.byIndex) {
		return nil
	}
	return ss.byIndex[idx]
}

// Len returns the number of symbols assigned an index so far.
func (ss *SectionSymbols) Len() int { return len(ss.byIndex) }
