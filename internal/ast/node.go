package ast

// IntFormat is an integer literal's display/encoding format (spec §3.1
// IntegerNode "display format").
type IntFormat int

const (
	FormatDecimal IntFormat = iota
	FormatSignedDecimal
	FormatHex
)

func (f IntFormat) String() string {
	switch f {
	case FormatDecimal:
		return "decimal"
	case FormatSignedDecimal:
		return "signed-decimal"
	case FormatHex:
		return "hex"
	default:
		return "?"
	}
}

// Node is one operator in a filter AST (spec §3.1 Node/IntegerNode/
// SymbolNode unified as a single tagged variant, per spec §9's redesign
// guidance). Only the fields relevant to Kind's family are meaningful;
// which ones those are is determined entirely by Kind.Family().
type Node struct {
	Kind     Kind
	Children []*Node

	// CreateIndex is the symbol table's creation-order counter value at
	// the time this node was made (spec §3.1 "next-creation-index
	// counter").
	CreateIndex int

	// --- FamilyInteger fields ---
	IntValue   int64
	IntFormat  IntFormat
	IntDefault bool

	// --- KindSymbol fields ---
	Name       string
	Predefined PredefinedSymbol // PredefinedNone if this is a user symbol
	DefineNode *Node            // the define/literalDef body this name resolves to
	LiteralDef *Node            // the literal this name resolves to, if any

	// cache, populated by Install (spec §4.3 step 3); nil until then.
	cache *nodeCache
}

// nodeCache holds the per-node lookup structures that Install builds.
type nodeCache struct {
	// SelectBaseNode (map/switch): case key -> case node.
	caseMap map[int64]*Node
	// OpcodeNode: the disjoint case-range vector (ast/opcode.go).
	opcodeRanges []OpcodeRange
	// DefineNode: cached parameter count (Children[1] unpacked).
	paramCount int
}

// ClearCaches drops any caches built by Install, matching spec §4.3 step 1
// ("required before re-running install when the AST is edited").
func (n *Node) ClearCaches() {
	n.cache = nil
	for _, c := range n.Children {
		c.ClearCaches()
	}
}

// CaseNode looks up a previously installed case by key (spec §4.3
// SelectBaseNode). Returns nil if Install has not run or the key is absent.
func (n *Node) CaseNode(key int64) *Node {
	if n.cache == nil {
		return nil
	}
	return n.cache.caseMap[key]
}

// OpcodeRanges returns the disjoint case-range vector Install built for an
// OpcodeNode (spec §4.3).
func (n *Node) OpcodeRanges() []OpcodeRange {
	if n.cache == nil {
		return nil
	}
	return n.cache.opcodeRanges
}

// ParamCount returns a DefineNode's declared parameter count.
func (n *Node) ParamCount() int {
	if n.cache != nil {
		return n.cache.paramCount
	}
	if n.Kind != KindDefine || len(n.Children) < 3 {
		return 0
	}
	return len(n.Children[1].Children)
}
