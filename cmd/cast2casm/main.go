// Command cast2casm reads a textual filter algorithm (spec §2's CAST
// s-expression syntax, internal/cast) and writes its flattened CASM binary
// form (spec §4.6), following flapc's own main.go shape: flag.String for
// -o/-output, flag.Parse, a single positional input file, log.Fatalf on any
// failure.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/cast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/casm"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
)

func main() {
	var outputFlag = flag.String("o", "out.casm", "output CASM binary filename")
	var outputLongFlag = flag.String("output", "", "output CASM binary filename")
	flag.Parse()

	output := *outputFlag
	if *outputLongFlag != "" {
		output = *outputLongFlag
	}

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("cast2casm: expected exactly one input CAST file, got %d", len(args))
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("cast2casm: %s", err)
	}

	st := ast.New()
	root, err := cast.Parse(st, string(src))
	if err != nil {
		log.Fatalf("cast2casm: parse: %s", err)
	}
	if err := ast.Install(st, root); err != nil {
		log.Fatalf("cast2casm: install: %s", err)
	}

	ss := ast.NewSectionSymbols()
	var stream casm.IntStream
	casm.Flatten(root, ss, &stream)

	out := queue.New(0)
	wc := out.NewWriteCursor(0)
	if err := casm.WriteSection(wc, ss, &stream); err != nil {
		log.Fatalf("cast2casm: write: %s", err)
	}
	wc.Close()

	if err := os.WriteFile(output, out.Bytes(), 0644); err != nil {
		log.Fatalf("cast2casm: %s", err)
	}
}
