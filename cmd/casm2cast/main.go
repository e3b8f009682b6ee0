// Command casm2cast reads a CASM binary (cmd/cast2casm's output) and prints
// its reconstructed algorithm back in the textual CAST surface syntax
// (internal/cast.Print), the inverse leg of the cast2casm/casm2cast pair.
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
	var outputFlag = flag.String("o", "", "output CAST filename (default: stdout)")
	var outputLongFlag = flag.String("output", "", "output CAST filename (default: stdout)")
	flag.Parse()

	output := *outputFlag
	if *outputLongFlag != "" {
		output = *outputLongFlag
	}

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("casm2cast: expected exactly one input CASM file, got %d", len(args))
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("casm2cast: %s", err)
	}

	in := queue.FromBytes(data)
	rc := in.NewReadCursor(0)
	defer rc.Close()

	st := ast.New()
	ss, stream, err := casm.ReadSection(rc, st)
	if err != nil {
		log.Fatalf("casm2cast: read: %s", err)
	}

	root, err := casm.Inflate(stream, st, ss)
	if err != nil {
		log.Fatalf("casm2cast: inflate: %s", err)
	}
	if err := ast.Install(st, root); err != nil {
		log.Fatalf("casm2cast: install: %s", err)
	}

	printed := cast.Print(root) + "\n"
	if output == "" {
		os.Stdout.WriteString(printed)
		return
	}
	if err := os.WriteFile(output, []byte(printed), 0644); err != nil {
		log.Fatalf("casm2cast: %s", err)
	}
}
