// Command decompress runs a compressed input through a CASM-encoded filter
// algorithm (spec §4.4/§4.5): it loads the algorithm with internal/selector
// (so a BadHeader on the fileHeader check can still be reported cleanly
// even though this build only ever tries the one candidate it was given),
// evaluates it in read-and-write mode, and writes whatever bytes the
// algorithm produced.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/casm"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/selector"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/trace"
)

func main() {
	var algoFlag = flag.String("algo", "", "CASM algorithm binary to run (required)")
	var outputFlag = flag.String("o", "out.decompressed", "output filename")
	var verbose = flag.Bool("v", false, "verbose mode (trace interpreter diagnostics)")
	var verboseLong = flag.Bool("verbose", false, "verbose mode (trace interpreter diagnostics)")
	flag.Parse()
	trace.Verbose = *verbose || *verboseLong

	if *algoFlag == "" {
		log.Fatalf("decompress: -algo is required")
	}
	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("decompress: expected exactly one input file, got %d", len(args))
	}

	algoBytes, err := os.ReadFile(*algoFlag)
	if err != nil {
		log.Fatalf("decompress: %s", err)
	}
	st := ast.New()
	algoQ := queue.FromBytes(algoBytes)
	arc := algoQ.NewReadCursor(0)
	ss, istream, err := casm.ReadSection(arc, st)
	if err != nil {
		log.Fatalf("decompress: read algorithm: %s", err)
	}
	arc.Close()
	root, err := casm.Inflate(istream, st, ss)
	if err != nil {
		log.Fatalf("decompress: inflate algorithm: %s", err)
	}
	if err := ast.Install(st, root); err != nil {
		log.Fatalf("decompress: install algorithm: %s", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("decompress: %s", err)
	}
	in := queue.FromBytes(data)
	out := queue.New(0)

	sel := selector.New(&selector.Algorithm{Name: *algoFlag, Root: root, Symtab: st})
	if _, err := sel.Run(in, out); err != nil {
		log.Fatalf("decompress: %s", err)
	}

	if err := os.WriteFile(*outputFlag, out.Bytes(), 0644); err != nil {
		log.Fatalf("decompress: %s", err)
	}
}
