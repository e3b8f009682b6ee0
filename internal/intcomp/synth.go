package intcomp

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"

// Mode selects which synthesized-algorithm shape Synthesize emits (spec
// §4.8).
type Mode int

const (
	// ModePlain emits the single define File()()  { loopUnbounded { switch(...) } }
	// shape described by spec §4.8's plain model.
	ModePlain Mode = iota
	// ModeCism selects the three-cooperating-define (process/opcode/
	// categorize) shape. Only a structurally-representative skeleton is
	// built here (DESIGN.md: scope decision) — the categorize special-index
	// mapping (single-default, multi-default, block-enter/exit, align) is
	// not populated, since without a real CISM host algorithm to plug
	// enclosingAlgorithms into there is nothing for it to be validated
	// against.
	ModeCism
)

const wasmMagic = 0x6d736100

// Synthesize builds the replacement filter algorithm (spec §4.8): its read
// side decodes an abbreviation selector and dispatches to the sequence of
// writes that reconstructs the original integer window; its write side (in
// ReadAndWrite mode) re-emits exactly those integers, so running the
// result through interp.Interp transcodes an abbreviated stream back to
// the original one. Selector 0 is reserved for a literal escape (Abbreviate
// leaves every unmatched stream value prefixed by a 0 selector) rather than
// an error case — a switch with no matching case already falls back to its
// first case (spec's Switch semantics), so giving that slot a real meaning
// costs nothing and keeps every selector value productive.
func Synthesize(st *ast.SymbolTable, candidates []*Candidate, mode Mode) *ast.Node {
	if mode == ModeCism {
		return synthesizeCism(st, candidates)
	}

	cases := []*ast.Node{literalEscapeCase(st)}
	for _, c := range candidates {
		key := st.CreateInteger(ast.KindInt32, int64(c.Index+1), ast.FormatDecimal)
		cases = append(cases, st.Create(ast.KindCase, key, actionFor(st, c)))
	}

	selector := st.Create(ast.KindRead, st.CreateIntegerDefault(ast.KindVaruint32))
	swtch := st.Create(ast.KindSwitch, append([]*ast.Node{selector}, cases...)...)
	loop := st.Create(ast.KindLoopUnbounded, swtch)
	body := st.Create(ast.KindSequence, loop)

	sym := st.GetSymbol("File")
	params := st.Create(ast.KindParamsDecl)
	locals := st.Create(ast.KindLocalsDecl)
	def := st.Create(ast.KindDefine, sym, params, locals, body)

	header := st.Create(ast.KindFileHeader, st.CreateInteger(ast.KindUint32, wasmMagic, ast.FormatHex))
	return st.Create(ast.KindAlgorithm, header, def)
}

// literalEscapeCase builds selector 0's body: a bare format-marker node
// transcodes (decodes then, in ReadAndWrite mode, re-encodes) one more
// varuint32 straight through, for stream values Select didn't abbreviate.
// It must not be wrapped in a write node — EvalFixed already performs the
// write itself, and a wrapping write would encode the value a second time.
func literalEscapeCase(st *ast.SymbolTable) *ast.Node {
	key := st.CreateInteger(ast.KindInt32, 0, ast.FormatDecimal)
	return st.Create(ast.KindCase, key, st.CreateIntegerDefault(ast.KindVaruint32))
}

// actionFor builds the write sequence that reproduces one candidate's
// integer window.
func actionFor(st *ast.SymbolTable, c *Candidate) *ast.Node {
	if len(c.Path) == 0 {
		return st.Create(ast.KindVoid)
	}
	writes := make([]*ast.Node, len(c.Path))
	for i, v := range c.Path {
		writes[i] = st.Create(ast.KindWrite, st.CreateIntegerDefault(ast.KindVaruint32), st.CreateInteger(ast.KindVaruint32, v, ast.FormatDecimal))
	}
	return st.Create(ast.KindSequence, writes...)
}

// synthesizeCism builds the process/opcode/categorize skeleton (spec
// §4.8's CISM model), minus the categorize special-index table (see Mode's
// doc comment).
func synthesizeCism(st *ast.SymbolTable, candidates []*Candidate) *ast.Node {
	cases := []*ast.Node{literalEscapeCase(st)}
	for _, c := range candidates {
		key := st.CreateInteger(ast.KindInt32, int64(c.Index+1), ast.FormatDecimal)
		cases = append(cases, st.Create(ast.KindCase, key, actionFor(st, c)))
	}
	selector := st.Create(ast.KindRead, st.CreateIntegerDefault(ast.KindVaruint32))
	opcodeBody := st.Create(ast.KindSwitch, append([]*ast.Node{selector}, cases...)...)

	opcodeSym := st.GetSymbol("opcode")
	opcodeDef := st.Create(ast.KindDefine, opcodeSym,
		st.Create(ast.KindParamsDecl), st.Create(ast.KindLocalsDecl), opcodeBody)

	categorizeSym := st.GetSymbol("categorize")
	categorizeParam := st.Create(ast.KindParam, st.CreateInteger(ast.KindInt32, 0, ast.FormatDecimal), st.Create(ast.KindVoid))
	categorizeDef := st.Create(ast.KindDefine, categorizeSym,
		st.Create(ast.KindParamsDecl, st.Create(ast.KindVoid)), st.Create(ast.KindLocalsDecl),
		st.Create(ast.KindSequence, categorizeParam))

	processSym := st.GetSymbol("process")
	processBody := st.Create(ast.KindSequence, st.Create(ast.KindEval, opcodeSym))
	processDef := st.Create(ast.KindDefine, processSym,
		st.Create(ast.KindParamsDecl), st.Create(ast.KindLocalsDecl), processBody)

	header := st.Create(ast.KindFileHeader, st.CreateInteger(ast.KindUint32, wasmMagic, ast.FormatHex))
	return st.Create(ast.KindAlgorithm, header, opcodeDef, categorizeDef, processDef)
}
