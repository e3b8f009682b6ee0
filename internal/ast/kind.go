// Package ast implements the filter algorithm's node hierarchy and symbol
// table (spec §4.3): a tagged-variant Node over a closed ~120-case Kind
// enum, uniquing of integer literals and symbols, and the three-pass
// installation that validates a freshly built or deserialized tree and
// populates its lookup caches.
//
// The teacher (flapc) models its AST as one Go interface (Node/Statement/
// Expression) with ~30 concrete struct types, one per operator — idiomatic
// for a language with a fixed, small statement/expression grammar. Spec
// §9's design notes call that approach out specifically for this domain
// ("open-ended operator family ... implement AST nodes as a tagged variant
// with a kind enum; store children in a small-vector per node") because the
// filter grammar's ~120 operator kinds share only a handful of structural
// shapes (nullary/unary/binary/ternary/n-ary/integer/select); this package
// follows that redesign guidance over the teacher's literal shape, while
// keeping the teacher's texture: doc comments on exported types explaining
// the "why" only, switch-based dispatch (ast/install.go, ast/opcode.go)
// instead of a dispatch-table indirection, and named error values shaped
// like flapc's fmt.Errorf("...: %s", x) call sites.
package ast

// Kind tags a Node with its operator. The families below mirror spec
// §4.3's structural grouping; Create's arity check dispatches on Family(),
// while the install-time validator (ast/install.go) switches on Kind for
// the kinds it checks.
type Kind int

// Family groups Kinds that share a child-count shape.
type Family int

const (
	FamilyNullary Family = iota
	FamilyUnary
	FamilyBinary
	FamilyTernary
	FamilyNary
	FamilyInteger
	FamilySelect // switch/map/opcode: first child is the selector
)

const (
	// --- nullary: spec §4.3 "stream markers, integer literals, symbol
	// references, errors, void, lastRead, alphabet predefineds" ---
	KindVoid Kind = iota
	KindLastRead
	KindError
	KindSymbol // SymbolNode: reference to a name
	KindAlphabetEnter
	KindAlphabetExit

	// integer literal kinds (mergable; canonicalized by SymbolTable)
	KindUint8
	KindUint32
	KindUint64
	KindVaruint32
	KindVaruint64
	KindVarint32
	KindVarint64
	KindInt32 // non-format-decoded plain integer constant

	// --- unary ---
	KindNot
	KindPeek
	KindRead
	KindUndefine
	KindBlock
	KindLoopUnbounded
	KindCallback
	KindWriteUint8Only // write-only wrapper around a single child value

	// --- binary ---
	KindAnd
	KindOr
	KindCase
	KindLoop
	KindIfThen
	KindSet
	KindWrite
	KindLiteralDef
	KindRename
	KindBitwiseAnd
	KindBitwiseOr
	KindBitwiseXor
	KindLocal // local(i): binary(defineDepthHint, index) simplified to unary-like via Children[0]=index
	KindParam // param(i)
	KindLiteralUse
	KindBinaryEval // binaryEval(tree) — drives a Huffman bit-tree walk
	KindBinarySelect
	KindBinaryAccept
	KindNegate // bitwise negate, binary shape (value, width) per spec family list

	// --- ternary ---
	KindIfThenElse
	KindConvert

	// --- n-ary ---
	KindFile
	KindSection
	KindSequence
	KindEval
	KindDefine
	KindMap
	KindSwitch
	KindFilter
	KindOpcode
	KindFileHeader
	KindAlgorithm
	KindParamsDecl // DefineNode's params-count declaration child
	KindLocalsDecl // DefineNode's locals-count declaration child
)

// firstInteger/lastInteger bound the contiguous run of integer-literal
// kinds declared above; kept as plain values (not part of the iota run)
// so reordering the block above can't silently widen or narrow the range.
const (
	firstInteger = KindUint8
	lastInteger  = KindInt32
)

// Family reports the structural shape of k, used by the validator and by
// Create's arity check (spec §4.3).
func (k Kind) Family() Family {
	switch k {
	case KindVoid, KindLastRead, KindError, KindSymbol, KindAlphabetEnter, KindAlphabetExit:
		return FamilyNullary
	case KindNot, KindPeek, KindRead, KindUndefine, KindBlock, KindLoopUnbounded, KindCallback, KindWriteUint8Only:
		return FamilyUnary
	case KindAnd, KindOr, KindCase, KindLoop, KindIfThen, KindSet, KindWrite, KindLiteralDef,
		KindRename, KindBitwiseAnd, KindBitwiseOr, KindBitwiseXor, KindLocal, KindParam,
		KindLiteralUse, KindBinaryEval, KindBinarySelect, KindBinaryAccept, KindNegate:
		return FamilyBinary
	case KindIfThenElse, KindConvert:
		return FamilyTernary
	case KindFile, KindSection, KindSequence, KindEval, KindDefine, KindFilter,
		KindFileHeader, KindAlgorithm, KindParamsDecl, KindLocalsDecl:
		return FamilyNary
	case KindMap, KindSwitch, KindOpcode:
		return FamilySelect
	default:
		if k >= firstInteger && k <= lastInteger {
			return FamilyInteger
		}
		return FamilyNullary
	}
}

// IsMergable reports whether integer literals of this kind are canonicalized
// by (kind, value, format, isDefault) — spec §3.1/§3.2: "two mergable
// integer nodes with equal (kind, value, format, default) share one
// instance". Plain Int32 constants used as opcode case keys are left
// non-mergable so each case's literal has a distinct identity for the
// opcode-range builder.
func (k Kind) IsMergable() bool {
	return k.Family() == FamilyInteger && k != KindInt32
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(?)"
}

var kindNames = map[Kind]string{
	KindVoid: "void", KindLastRead: "lastRead", KindError: "error", KindSymbol: "symbol",
	KindAlphabetEnter: "alphabetEnter", KindAlphabetExit: "alphabetExit",
	KindUint8: "uint8", KindUint32: "uint32", KindUint64: "uint64",
	KindVaruint32: "varuint32", KindVaruint64: "varuint64",
	KindVarint32: "varint32", KindVarint64: "varint64", KindInt32: "int32",
	KindNot: "not", KindPeek: "peek", KindRead: "read", KindUndefine: "undefine",
	KindBlock: "block", KindLoopUnbounded: "loopUnbounded", KindCallback: "callback",
	KindWriteUint8Only: "writeOnly",
	KindAnd:            "and", KindOr: "or", KindCase: "case", KindLoop: "loop",
	KindIfThen: "ifThen", KindSet: "set", KindWrite: "write", KindLiteralDef: "literalDef",
	KindRename: "rename", KindBitwiseAnd: "bitwiseAnd", KindBitwiseOr: "bitwiseOr",
	KindBitwiseXor: "bitwiseXor", KindLocal: "local", KindParam: "param",
	KindLiteralUse: "literalUse", KindBinaryEval: "binaryEval", KindBinarySelect: "binarySelect",
	KindBinaryAccept: "binaryAccept", KindNegate: "negate",
	KindIfThenElse: "ifThenElse", KindConvert: "convert",
	KindFile: "file", KindSection: "section", KindSequence: "sequence", KindEval: "eval",
	KindDefine: "define", KindMap: "map", KindSwitch: "switch", KindFilter: "filter",
	KindOpcode: "opcode", KindFileHeader: "fileHeader", KindAlgorithm: "algorithm",
	KindParamsDecl: "paramsDecl", KindLocalsDecl: "localsDecl",
}
