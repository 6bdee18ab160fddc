// Package devtools renders an ast.Node as a box-drawing tree and a
// bytecode.Program as a disassembly listing, for the `fxc tree` and
// `fxc tree --bytecode` CLI subcommands. The tree layout is grounded on
// the original implementation's Node::print_tree (parser/ast.rs):
// "└──"/"├──" branches with a "    "/"|   " prefix continuation.
// Color is gated on mattn/go-isatty so piped output stays plain text.
package devtools

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"fxc/internal/ast"
	"fxc/internal/bytecode"
)

const (
	colorReset = "\x1b[0m"
	colorOp    = "\x1b[36m"
	colorLeaf  = "\x1b[33m"
)

// WriteTree prints root to w as a box-drawing tree, colorizing node
// labels when w is a terminal.
func WriteTree(w io.Writer, root ast.Node) {
	color := isTerminal(w)
	writeNode(w, "", root, true, color)
}

// WriteBytecode prints a disassembly of program's instructions, one
// mnemonic per line.
func WriteBytecode(w io.Writer, program *bytecode.Program) {
	fmt.Fprint(w, program.Disassemble())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeNode(w io.Writer, prefix string, n ast.Node, last bool, color bool) {
	branch := "├──"
	if last {
		branch = "└──"
	}
	fmt.Fprintf(w, "%s%s%s\n", prefix, branch, label(n, color))

	childPrefix := prefix + "|   "
	if last {
		childPrefix = prefix + "    "
	}

	switch t := n.(type) {
	case *ast.UnaryNode:
		if t.Child != nil {
			writeNode(w, childPrefix, t.Child, true, color)
		}
	case *ast.BinaryNode:
		if t.Lhs != nil {
			writeNode(w, childPrefix, t.Lhs, t.Rhs == nil, color)
		}
		if t.Rhs != nil {
			writeNode(w, childPrefix, t.Rhs, true, color)
		}
	case *ast.NAryNode:
		for i, c := range t.Children {
			writeNode(w, childPrefix, c, i == len(t.Children)-1, color)
		}
	}
}

func label(n ast.Node, color bool) string {
	var text string
	switch t := n.(type) {
	case *ast.Constant:
		text = fmt.Sprintf("Constant(%v)", t.Value)
	case *ast.Variable:
		text = fmt.Sprintf("Variable(%s)", t.Name)
	case *ast.Unknown:
		text = fmt.Sprintf("Unknown(%s)", t.Name)
	case *ast.UnaryNode:
		text = fmt.Sprintf("Unary{%s}", t.Op)
	case *ast.BinaryNode:
		text = fmt.Sprintf("Binary{%s}", t.Op)
	case *ast.NAryNode:
		text = fmt.Sprintf("NAry{%s}", t.Op)
	default:
		text = "?"
	}

	if !color {
		return text
	}
	switch n.(type) {
	case *ast.UnaryNode, *ast.BinaryNode, *ast.NAryNode:
		return colorOp + text + colorReset
	default:
		return colorLeaf + text + colorReset
	}
}
