// Package bytecompile implements spec.md §4.8's AST -> Instruction
// emission: CompileToBytecode walks a simplified ast.Node and produces
// the stack-machine program internal/bytecode then encodes for upload.
package bytecompile

import (
	"math"

	"fxc/internal/ast"
	"fxc/internal/bytecode"
	fxerrors "fxc/internal/errors"
)

// CompileToBytecode emits the full instruction stream for one
// expression: StExpr(exprIdx), the compiled body, then the
// residual-subtract-and-store epilogue.
func CompileToBytecode(root ast.Node, vars map[string]float64, exprIdx int) ([]bytecode.Instruction, error) {
	hasX, hasY := ast.HasUnknowns(root)
	if !hasX && !hasY {
		return nil, fxerrors.Math("this equation doesn't have any unknowns")
	}

	program := []bytecode.Instruction{{Op: bytecode.OpStExpr, Operand: float64(exprIdx)}}

	if eq, ok := root.(*ast.BinaryNode); ok && eq.Op == ast.Equal {
		lhs, err := compile(eq.Lhs, vars)
		if err != nil {
			return nil, err
		}
		rhs, err := compile(eq.Rhs, vars)
		if err != nil {
			return nil, err
		}
		program = append(program, lhs...)
		program = append(program, rhs...)
	} else {
		body, err := compile(root, vars)
		if err != nil {
			return nil, err
		}
		program = append(program, body...)
		if !hasX {
			program = append(program, bytecode.Instruction{Op: bytecode.OpPushX})
		} else {
			program = append(program, bytecode.Instruction{Op: bytecode.OpPushY})
		}
	}

	program = append(program,
		bytecode.Instruction{Op: bytecode.OpUnary, UnaryOp: bytecode.UMinus},
		bytecode.Instruction{Op: bytecode.OpAdd},
		bytecode.Instruction{Op: bytecode.OpStore},
	)
	return program, nil
}

func compile(node ast.Node, vars map[string]float64) ([]bytecode.Instruction, error) {
	switch n := node.(type) {
	case *ast.Constant:
		return []bytecode.Instruction{{Op: bytecode.OpPush, Operand: n.Value}}, nil

	case *ast.Variable:
		v, ok := vars[n.Name]
		if !ok {
			return nil, fxerrors.IO("there are no variable called %s", n.Name)
		}
		return []bytecode.Instruction{{Op: bytecode.OpPush, Operand: v}}, nil

	case *ast.Unknown:
		switch n.Name {
		case "x":
			return []bytecode.Instruction{{Op: bytecode.OpPushX}}, nil
		case "y":
			return []bytecode.Instruction{{Op: bytecode.OpPushY}}, nil
		default:
			return nil, fxerrors.Math("there aren't any unknowns called: %s", n.Name)
		}

	case *ast.UnaryNode:
		if n.Op == ast.Fact {
			return nil, fxerrors.Math("factorial isn't implemented yet!")
		}
		child, err := compile(n.Child, vars)
		if err != nil {
			return nil, err
		}
		kind, err := unaryKind(n.Op)
		if err != nil {
			return nil, err
		}
		return append(child, bytecode.Instruction{Op: bytecode.OpUnary, UnaryOp: kind}), nil

	case *ast.BinaryNode:
		return compileBinary(n, vars)

	case *ast.NAryNode:
		if len(n.Children) < 2 {
			return nil, fxerrors.Math("a %s cannot be of less than two terms", n.Op)
		}
		var op bytecode.Op
		switch n.Op {
		case ast.Add:
			op = bytecode.OpAdd
		case ast.Multiply:
			op = bytecode.OpMul
		}
		var out []bytecode.Instruction
		for _, c := range n.Children {
			ci, err := compile(c, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, ci...)
		}
		for i := 0; i < len(n.Children)-1; i++ {
			out = append(out, bytecode.Instruction{Op: op})
		}
		return out, nil

	default:
		return nil, fxerrors.Math("can't compile this node to bytecode")
	}
}

func compileBinary(n *ast.BinaryNode, vars map[string]float64) ([]bytecode.Instruction, error) {
	switch n.Op {
	case ast.Division:
		lhs, err := compile(n.Lhs, vars)
		if err != nil {
			return nil, err
		}
		rhs, err := compile(n.Rhs, vars)
		if err != nil {
			return nil, err
		}
		out := append(lhs, rhs...)
		return append(out, bytecode.Instruction{Op: bytecode.OpDiv}), nil

	case ast.Power:
		lhs, err := compile(n.Lhs, vars)
		if err != nil {
			return nil, err
		}
		if c, ok := n.Rhs.(*ast.Constant); ok && isIntegral(c.Value) {
			spec, err := compilePowInteger(int(c.Value))
			if err != nil {
				return nil, err
			}
			return append(lhs, spec...), nil
		}
		rhs, err := compile(n.Rhs, vars)
		if err != nil {
			return nil, err
		}
		out := append(lhs, rhs...)
		return append(out, bytecode.Instruction{Op: bytecode.OpPow}), nil

	case ast.Equal:
		return nil, fxerrors.Math("equal is not an operation in this context")

	default:
		return nil, fxerrors.Math("%s is not a known binary operation", n.Op)
	}
}

// compilePowInteger implements spec.md §4.8's integer-power
// specialization: the exponent never reaches the VM as data, it's
// unrolled into a fixed Cpy/Mul chain at compile time.
func compilePowInteger(n int) ([]bytecode.Instruction, error) {
	switch {
	case n == 0:
		return []bytecode.Instruction{
			{Op: bytecode.OpPop},
			{Op: bytecode.OpPush, Operand: 1.0},
		}, nil
	case n == 1:
		return nil, nil
	case n < 0:
		rest, err := compilePowInteger(-n)
		if err != nil {
			return nil, err
		}
		return append([]bytecode.Instruction{{Op: bytecode.OpPush, Operand: 1.0}}, rest...), nil
	default:
		out := make([]bytecode.Instruction, 0, 2*(n-1))
		for i := 0; i < n-1; i++ {
			out = append(out, bytecode.Instruction{Op: bytecode.OpCpy})
		}
		for i := 0; i < n-1; i++ {
			out = append(out, bytecode.Instruction{Op: bytecode.OpMul})
		}
		return out, nil
	}
}

// epsilon matches Rust's f64::EPSILON, the tolerance the original
// implementation uses to decide an exponent is integral.
const epsilon = 2.220446049250313e-16

func isIntegral(v float64) bool {
	return math.Abs(float64(int32(v))-v) < epsilon
}

func unaryKind(op ast.UnaryOp) (bytecode.UnaryKind, error) {
	switch op {
	case ast.Minus:
		return bytecode.UMinus, nil
	case ast.Sin:
		return bytecode.USin, nil
	case ast.Cos:
		return bytecode.UCos, nil
	case ast.Floor:
		return bytecode.UFloor, nil
	case ast.Abs:
		return bytecode.UAbs, nil
	case ast.Ceil:
		return bytecode.UCeil, nil
	case ast.Log:
		return bytecode.ULog, nil
	case ast.Ln:
		return bytecode.ULn, nil
	case ast.Sqrt:
		return bytecode.USqrt, nil
	case ast.Tan:
		return bytecode.UTan, nil
	default:
		return 0, fxerrors.Math("there's no bytecode unary op for %s", op)
	}
}
