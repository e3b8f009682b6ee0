// Package selector implements the algorithm selector pipeline (spec §4.5):
// matching an input's header against an ordered list of candidate filter
// algorithms and chaining successive algorithms through intermediate
// streams. Grounded on flapc's own "try each backend, fall through on
// mismatch" shape in cli.go (dispatch by flag/extension) generalized to a
// catch-and-retry loop driven by ferr.BadHeader instead of string
// comparison.
package selector

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/interp"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/trace"
)

// Algorithm is one candidate in the selector's chain (spec §4.5).
type Algorithm struct {
	Name   string
	Root   *ast.Node
	Symtab *ast.SymbolTable

	// Configure installs this algorithm's symbol table on ip and may rewire
	// ip's output to an intermediate stream (e.g. an IntStream capture for
	// the next algorithm in the chain). Optional.
	Configure func(ip *interp.Interp) error

	// Reset is invoked after GetFile returns; returning a non-nil next
	// algorithm re-enters the selector with a fresh stream pairing (spec
	// §4.5 step 5's "installs another algorithm, re-enter GetAlgorithm").
	Reset func(ip *interp.Interp) (next *Algorithm, more bool)
}

// Selector runs the ordered candidate list against one input queue.
type Selector struct {
	Candidates []*Algorithm
	Trace      *trace.Sink
}

// New creates a selector over the given candidates, tried in order.
func New(candidates ...*Algorithm) *Selector {
	return &Selector{Candidates: candidates, Trace: &trace.Sink{}}
}

// Run drives spec §4.5's GetAlgorithm/GetFile loop: it tries each candidate
// header in read-only mode inside a catch frame, installs the first match,
// executes its body, and follows any chained Reset into a further
// algorithm until none remains.
func (s *Selector) Run(in, out *queue.Queue) (int64, error) {
	ip := interp.New(in, out, nil)
	defer ip.Close()

	candidates := s.Candidates
	for {
		alg, err := s.matchHeader(ip, candidates)
		if err != nil {
			return 0, err
		}
		ip.St = alg.Symtab
		if alg.Configure != nil {
			if err := alg.Configure(ip); err != nil {
				return 0, err
			}
		}
		// matchHeader already consumed the header from the input in
		// ReadOnly mode; re-running the whole root here in ReadAndWrite
		// mode would decode it a second time against the post-header
		// stream position. Echo it to the output (WriteOnly, no input
		// consumption) and then run only the body.
		if header := headerOf(alg.Root); header != nil {
			if _, err := ip.Eval(header, interp.WriteOnly); err != nil {
				return 0, err
			}
		}
		v, err := ip.Eval(bodyOf(alg.Symtab, alg.Root), interp.ReadAndWrite)
		if err != nil {
			return 0, err
		}
		if alg.Reset == nil {
			return v, nil
		}
		next, more := alg.Reset(ip)
		if !more || next == nil {
			return v, nil
		}
		candidates = []*Algorithm{next}
	}
}

// matchHeader implements spec §4.5 steps 1–2: checkpoint the input cursor,
// try each candidate's header AST in read-only mode inside a catch frame,
// and rewind on BadHeader to try the next.
func (s *Selector) matchHeader(ip *interp.Interp, candidates []*Algorithm) (*Algorithm, error) {
	for _, alg := range candidates {
		checkpoint := ip.InputAddress()
		var matched bool
		err := ip.Catch("GetAlgorithm", func(fe *ferr.Error) bool { return fe.Kind == ferr.BadHeader }, func() error {
			header := headerOf(alg.Root)
			if header == nil {
				matched = true
				return nil
			}
			ip.St = alg.Symtab
			_, evalErr := ip.Eval(header, interp.ReadOnly)
			if evalErr != nil {
				ip.SeekInput(checkpoint)
				return evalErr
			}
			matched = true
			return nil
		})
		if err != nil {
			if ferr.Is(err, ferr.BadHeader) {
				continue
			}
			return nil, err
		}
		if matched {
			return alg, nil
		}
	}
	return nil, ferr.New(ferr.BadHeader, "selector: no candidate algorithm matched")
}

// headerOf returns an Algorithm node's fileHeader child, if any.
func headerOf(root *ast.Node) *ast.Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if c.Kind == ast.KindFileHeader {
			return c
		}
	}
	return nil
}

// bodyOf returns a node sequencing root's children other than fileHeader,
// so Run can execute the body without re-running the header matchHeader
// already consumed from the input.
func bodyOf(st *ast.SymbolTable, root *ast.Node) *ast.Node {
	var rest []*ast.Node
	for _, c := range root.Children {
		if c.Kind != ast.KindFileHeader {
			rest = append(rest, c)
		}
	}
	return st.Create(ast.KindSequence, rest...)
}
