package ast

// PredefinedSymbol enumerates the filter language's built-in callback
// symbols (spec §4.3: "64 predefined callback symbols"). original_source's
// src/sexp/defaults.h and the Symbol_lookup/Postorder_inst tables in
// Ast.cpp name the subset flatten/inflate actually depend on as framing
// markers (spec §4.6); those are given real names below. The remaining
// slots in the 64-symbol table (catch-method names, the rest of the
// block/align/eob callback family) have no named constant and String()
// as "Reserved" — spec.md never names them individually, so inventing
// specific semantics for all 64 would be fabrication; they exist so
// PredefinedCount and SymbolTable's predefined-symbol vector have the right
// shape, and a lookup of one still resolves via callback() like any other
// predefined.
type PredefinedSymbol int

const (
	PredefinedNone PredefinedSymbol = iota

	// Flatten/Inflate framing actions (spec §4.6).
	PredefinedNaryInst
	PredefinedPostorderInst
	PredefinedSymbolLookup
	PredefinedIntValueBegin
	PredefinedIntValueEnd
	PredefinedSymbolNameBegin
	PredefinedSymbolNameEnd
	PredefinedBinaryBegin
	PredefinedBinaryBit
	PredefinedBinaryEnd
	PredefinedBlockEnter
	PredefinedBlockExit

	// Stream-position callbacks (spec §4.4.4 callback()).
	PredefinedAlign
	PredefinedEob

	predefinedNamedCount
)

// PredefinedCount is the total predefined-symbol table size (spec §4.3).
const PredefinedCount = 64

func init() {
	if predefinedNamedCount > PredefinedCount {
		panic("ast: more named predefined symbols than PredefinedCount slots")
	}
}

var predefinedNames = map[PredefinedSymbol]string{
	PredefinedNaryInst:        "Nary_inst",
	PredefinedPostorderInst:   "Postorder_inst",
	PredefinedSymbolLookup:    "Symbol_lookup",
	PredefinedIntValueBegin:   "Int_value_begin",
	PredefinedIntValueEnd:     "Int_value_end",
	PredefinedSymbolNameBegin: "Symbol_name_begin",
	PredefinedSymbolNameEnd:   "Symbol_name_end",
	PredefinedBinaryBegin:     "Binary_begin",
	PredefinedBinaryBit:       "Binary_bit",
	PredefinedBinaryEnd:       "Binary_end",
	PredefinedBlockEnter:      "Block_enter",
	PredefinedBlockExit:       "Block_exit",
	PredefinedAlign:           "Align",
	PredefinedEob:             "Eob",
}

func (p PredefinedSymbol) String() string {
	if p == PredefinedNone {
		return "<none>"
	}
	if name, ok := predefinedNames[p]; ok {
		return name
	}
	if int(p) < PredefinedCount {
		return "Reserved"
	}
	return "?"
}
