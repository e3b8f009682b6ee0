package ast

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"

// Install runs the three-pass post-parse validation (spec §4.3):
//  1. ClearCaches — wipe any caches from a previous install.
//  2. InstallDefinitions — populate name -> define-body / name -> literal.
//  3. ValidateAndBuildCaches — depth-first walk with a parent/define stack.
//
// roots are every top-level node reachable by this table (typically a
// single Algorithm or File node, but section bodies are installed
// independently when a section carries its own sub-table).
func Install(st *SymbolTable, roots ...*Node) error {
	for _, r := range roots {
		r.ClearCaches()
	}
	if err := installDefinitions(st, roots); err != nil {
		return err
	}
	v := &validator{st: st}
	for _, r := range roots {
		if err := v.walk(r, nil); err != nil {
			return err
		}
	}
	return nil
}

// installDefinitions populates st's name -> define-body / name -> literal
// maps from define, literalDef, rename, undefine, and section forms
// (spec §4.3 step 2). Malformed forms are fatal.
func installDefinitions(st *SymbolTable, roots []*Node) error {
	var walk func(n *Node) error
	walk = func(n *Node) error {
		switch n.Kind {
		case KindDefine:
			if len(n.Children) < 3 {
				return ferr.New(ferr.Fatal, "define: expected (symbol, params, locals, body) shape")
			}
			sym := n.Children[0]
			if sym.Kind != KindSymbol {
				return ferr.New(ferr.Fatal, "define: first child must be a symbol")
			}
			sym.DefineNode = n
		case KindLiteralDef:
			if len(n.Children) != 2 {
				return ferr.New(ferr.Fatal, "literalDef: expected (symbol, literal) shape")
			}
			sym := n.Children[0]
			if sym.Kind != KindSymbol {
				return ferr.New(ferr.Fatal, "literalDef: first child must be a symbol")
			}
			sym.LiteralDef = n.Children[1]
		case KindRename:
			if len(n.Children) != 2 {
				return ferr.New(ferr.Fatal, "rename: expected (old, new) shape")
			}
			oldSym, newSym := n.Children[0], n.Children[1]
			if oldSym.Kind != KindSymbol || newSym.Kind != KindSymbol {
				return ferr.New(ferr.Fatal, "rename: both children must be symbols")
			}
			if oldSym.DefineNode == nil && oldSym.LiteralDef == nil {
				return ferr.New(ferr.UnresolvedSymbol, "rename: %q has no definition", oldSym.Name)
			}
			newSym.DefineNode = oldSym.DefineNode
			newSym.LiteralDef = oldSym.LiteralDef
		case KindUndefine:
			if len(n.Children) != 1 || n.Children[0].Kind != KindSymbol {
				return ferr.New(ferr.Fatal, "undefine: expected a single symbol child")
			}
			n.Children[0].DefineNode = nil
			n.Children[0].LiteralDef = nil
		}
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}

// validator performs spec §4.3 step 3's depth-first parent-stack walk.
type validator struct {
	st *SymbolTable
	// defineStack holds the enclosing DefineNode chain, innermost last,
	// for resolving ParamNode (lexically nearest enclosing wins).
	defineStack []*Node
}

func (v *validator) walk(n *Node, parent *Node) error {
	switch n.Kind {
	case KindParam:
		if len(v.defineStack) == 0 {
			return ferr.New(ferr.ScopeViolation, "param(%d): no enclosing define", n.Children[0].IntValue)
		}
		enclosing := v.defineStack[len(v.defineStack)-1]
		idx := n.Children[0].IntValue
		if idx < 0 || int(idx) >= enclosing.ParamCount() {
			return ferr.New(ferr.ArityMismatch, "param(%d): enclosing define has %d parameters", idx, enclosing.ParamCount())
		}
	case KindOpcode:
		if len(n.Children) < 1 {
			return ferr.New(ferr.Fatal, "opcode: missing selector format")
		}
		width := uint(n.Children[0].IntValue)
		if width == 0 {
			width = 8
		}
		ranges, err := BuildOpcodeRanges(n, width)
		if err != nil {
			return err
		}
		caseMap := make(map[int64]*Node)
		for _, c := range n.Children[1:] {
			if c.Kind != KindCase {
				continue
			}
			caseMap[resolveCaseKey(c.Children[0])] = c
		}
		n.cache = &nodeCache{opcodeRanges: ranges, caseMap: caseMap}
	case KindMap, KindSwitch:
		if len(n.Children) < 1 {
			return ferr.New(ferr.Fatal, "%s: missing selector", n.Kind)
		}
		caseMap := make(map[int64]*Node)
		for _, c := range n.Children[1:] {
			if c.Kind != KindCase {
				continue
			}
			key := resolveCaseKey(c.Children[0])
			if _, dup := caseMap[key]; dup {
				return ferr.New(ferr.RangeError, "%s: duplicate case key %d", n.Kind, key)
			}
			caseMap[key] = c
		}
		n.cache = &nodeCache{caseMap: caseMap}
	case KindEval:
		if len(n.Children) < 1 || n.Children[0].Kind != KindSymbol {
			return ferr.New(ferr.Fatal, "eval: first child must be a symbol")
		}
		sym := n.Children[0]
		target := v.st.LookupSymbol(sym.Name)
		if target == nil || target.DefineNode == nil {
			return ferr.New(ferr.UnresolvedSymbol, "eval: %q is undefined", sym.Name)
		}
		if target.DefineNode.ParamCount() != len(n.Children)-1 {
			return ferr.New(ferr.ArityMismatch, "eval: %q expects %d args, got %d", sym.Name, target.DefineNode.ParamCount(), len(n.Children)-1)
		}
	}

	pushedDefine := false
	if n.Kind == KindDefine {
		v.defineStack = append(v.defineStack, n)
		pushedDefine = true
	}
	for _, c := range n.Children {
		if err := v.walk(c, n); err != nil {
			return err
		}
	}
	if pushedDefine {
		v.defineStack = v.defineStack[:len(v.defineStack)-1]
	}
	return nil
}

// resolveCaseKey resolves a case's selector literal, following
// literalUse through its defining literal (spec §4.3 SelectBaseNode).
func resolveCaseKey(n *Node) int64 {
	if n.Kind == KindLiteralUse && len(n.Children) > 0 {
		sym := n.Children[0]
		if sym.LiteralDef != nil {
			return sym.LiteralDef.IntValue
		}
	}
	return n.IntValue
}
