package cast

import (
	"fmt"
	"strings"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
)

// Print renders n back into the surface syntax Parse reads, one line per
// nesting level.
func Print(n *ast.Node) string {
	var sb strings.Builder
	printNode(&sb, n, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, n *ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Kind.Family() == ast.FamilyInteger {
		if n.IntDefault {
			fmt.Fprintf(sb, "%s%s", indent, n.Kind)
			return
		}
		fmt.Fprintf(sb, "%s(%s %s)", indent, n.Kind, formatValue(n))
		return
	}
	if n.Kind == ast.KindSymbol {
		fmt.Fprintf(sb, "%s%s", indent, n.Name)
		return
	}
	if len(n.Children) == 0 {
		fmt.Fprintf(sb, "%s(%s)", indent, n.Kind)
		return
	}
	fmt.Fprintf(sb, "%s(%s\n", indent, n.Kind)
	for i, c := range n.Children {
		printNode(sb, c, depth+1)
		if i < len(n.Children)-1 {
			sb.WriteByte('\n')
		}
	}
	sb.WriteByte('\n')
	fmt.Fprintf(sb, "%s)", indent)
}

func formatValue(n *ast.Node) string {
	if n.IntFormat == ast.FormatHex {
		if n.IntValue < 0 {
			return fmt.Sprintf("-0x%x", -n.IntValue)
		}
		return fmt.Sprintf("0x%x", n.IntValue)
	}
	return fmt.Sprintf("%d", n.IntValue)
}
