// Command compress-int reads a plain decimal integer stream (one value per
// line or whitespace-separated) and runs it through the count-node
// trie/abbreviation selector (spec §4.7) and algorithm synthesizer
// (spec §4.8), writing out the synthesized filter algorithm as a CASM
// binary and the abbreviated stream as a wasm-shaped byte file that
// cmd/decompress can feed back through the same algorithm.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/casm"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/intcomp"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
)

const wasmMagic = 0x6d736100

func main() {
	var algoFlag = flag.String("o", "out.casm", "output CASM algorithm filename")
	var dataFlag = flag.String("data", "out.bin", "output abbreviated stream filename")
	var patternLen = flag.Int("pattern-length-limit", intcomp.DefaultFlags().PatternLengthLimit, "longest n-gram window scanned")
	var countCutoff = flag.Int64("count-cutoff", intcomp.DefaultFlags().CountCutoff, "minimum window occurrence count to consider")
	var weightCutoff = flag.Int64("weight-cutoff", intcomp.DefaultFlags().WeightCutoff, "minimum count*length weight to consider")
	var smallValueCutoff = flag.Int64("small-value-cutoff", intcomp.DefaultFlags().SmallValueCutoff, "singleton values below this are penalized")
	var maxAbbrev = flag.Int("max-abbreviations", intcomp.DefaultFlags().MaxAbbreviations, "maximum number of abbreviations to assign")
	var useHuffman = flag.Bool("huffman", intcomp.DefaultFlags().UseHuffman, "build a Huffman tree over the selected candidates")
	var maxPathLen = flag.Int("max-path-length", intcomp.DefaultFlags().MaxPathLength, "maximum Huffman code length")
	var cism = flag.Bool("cism", false, "synthesize the three-define opcode/categorize/process shape instead of a single File define")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("compress-int: expected exactly one input integer-stream file, got %d", len(args))
	}

	stream, err := readIntStream(args[0])
	if err != nil {
		log.Fatalf("compress-int: %s", err)
	}

	c := intcomp.NewCompressor()
	c.Flags.PatternLengthLimit = *patternLen
	c.Flags.CountCutoff = *countCutoff
	c.Flags.WeightCutoff = *weightCutoff
	c.Flags.SmallValueCutoff = *smallValueCutoff
	c.Flags.MaxAbbreviations = *maxAbbrev
	c.Flags.UseHuffman = *useHuffman
	c.Flags.MaxPathLength = *maxPathLen
	if *cism {
		c.Mode = intcomp.ModeCism
	}

	st := ast.New()
	algo, selected := c.Compress(st, stream)
	abbrev := intcomp.Abbreviate(stream, selected)

	// Compress installs algo on its own (header, define...) shape, suitable
	// for an in-process interpreter call; cmd/decompress runs it as a
	// standalone process via internal/selector, which only executes an
	// eval() reaching a define, never a bare define node (interp's
	// evalDefineBody is a no-op on a declaration site). Add the entry call
	// here so the CASM file is self-running: ModePlain's entry is the sole
	// "File" define, ModeCism's is "process", the last define synthesizeCism
	// builds.
	entryDefine := algo.Children[1]
	if c.Mode == intcomp.ModeCism {
		entryDefine = algo.Children[len(algo.Children)-1]
	}
	entrySym := st.GetSymbol(entryDefine.Children[0].Name)
	callFile := st.Create(ast.KindEval, entrySym)
	root := st.Create(ast.KindAlgorithm, append(append([]*ast.Node{}, algo.Children...), callFile)...)
	if err := ast.Install(st, root); err != nil {
		log.Fatalf("compress-int: install: %s", err)
	}

	ss := ast.NewSectionSymbols()
	var istream casm.IntStream
	casm.Flatten(root, ss, &istream)

	algoQ := queue.New(0)
	awc := algoQ.NewWriteCursor(0)
	if err := casm.WriteSection(awc, ss, &istream); err != nil {
		log.Fatalf("compress-int: write algorithm: %s", err)
	}
	awc.Close()
	if err := os.WriteFile(*algoFlag, algoQ.Bytes(), 0644); err != nil {
		log.Fatalf("compress-int: %s", err)
	}

	dataQ := queue.New(0)
	dwc := dataQ.NewWriteCursor(0)
	if err := writeUint32LE(dwc, wasmMagic); err != nil {
		log.Fatalf("compress-int: write data: %s", err)
	}
	for _, v := range abbrev {
		if err := writeVaruint32(dwc, uint32(v)); err != nil {
			log.Fatalf("compress-int: write data: %s", err)
		}
	}
	dwc.Close()
	if err := os.WriteFile(*dataFlag, dataQ.Bytes(), 0644); err != nil {
		log.Fatalf("compress-int: %s", err)
	}

	log.Printf("compress-int: %d candidates selected, stream %d -> %d values", len(selected), len(stream), len(abbrev))
}

func readIntStream(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func writeUint32LE(wc *queue.WriteCursor, v uint32) error {
	for i := 0; i < 4; i++ {
		if err := wc.WriteByte(byte(v >> (8 * uint(i)))); err != nil {
			return err
		}
	}
	return nil
}

func writeVaruint32(wc *queue.WriteCursor, v uint32) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := wc.WriteByte(b); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}
