// Package shader implements spec.md §4.7, the shader-text backend: it
// emits a C-like expression built entirely out of an `f*`-prefixed
// function set the GPU shader supplies (fadd, fmul, fsin, ...), hoists
// every division's denominator into a named float temporary, and
// builds the domain-exclusion bitmask preamble.
package shader

import (
	"fmt"
	"math"
	"strings"

	"fxc/internal/ast"
	fxerrors "fxc/internal/errors"
)

// state is scratch local to one CompileToString call.
type state struct {
	vars         map[string]float64
	exprIdx      int
	denominators []string
}

// CompileToString renders root into the shader expression language.
// vars resolves any Variable node; exprIdx namespaces this expression's
// hoisted denominator temporaries so multiple compiled equations can
// coexist in one shader.
func CompileToString(root ast.Node, vars map[string]float64, exprIdx int) (string, error) {
	hasX, hasY := ast.HasUnknowns(root)
	if !hasX && !hasY {
		return "", fxerrors.Math("this equation doesn't have any unknowns")
	}

	st := &state{vars: vars, exprIdx: exprIdx}

	var code string
	if eq, ok := root.(*ast.BinaryNode); ok && eq.Op == ast.Equal {
		lhs, err := compile(eq.Lhs, st)
		if err != nil {
			return "", err
		}
		rhs, err := compile(eq.Rhs, st)
		if err != nil {
			return "", err
		}
		code = fmt.Sprintf("fsub(%s, %s)", lhs, rhs)
	} else {
		body, err := compile(root, st)
		if err != nil {
			return "", err
		}
		if !hasX {
			code = fmt.Sprintf("fsub(%s, x)", body)
		} else {
			code = fmt.Sprintf("fsub(%s, y)", body)
		}
	}

	return handleDenominators(code, st.denominators, exprIdx)
}

func compile(node ast.Node, st *state) (string, error) {
	switch n := node.(type) {
	case *ast.Constant:
		return fmt.Sprintf("float(%v)", n.Value), nil

	case *ast.Variable:
		v, ok := st.vars[n.Name]
		if !ok {
			return "", fxerrors.IO("there are no variable called %s", n.Name)
		}
		return fmt.Sprintf("float(%v)", v), nil

	case *ast.Unknown:
		return n.Name, nil

	case *ast.UnaryNode:
		return compileUnary(n, st)

	case *ast.BinaryNode:
		return compileBinaryExpr(n, st)

	case *ast.NAryNode:
		return compileNAry(n, st)

	default:
		return "", fxerrors.Math("can't compile this node")
	}
}

func compileUnary(n *ast.UnaryNode, st *state) (string, error) {
	child, err := compile(n.Child, st)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.Minus:
		return fmt.Sprintf("fminus(%s)", child), nil
	case ast.Sin:
		return fmt.Sprintf("fsin(%s)", child), nil
	case ast.Cos:
		return fmt.Sprintf("fcos(%s)", child), nil
	case ast.Floor:
		return fmt.Sprintf("ffloor(%s)", child), nil
	case ast.Abs:
		return fmt.Sprintf("fabs(%s)", child), nil
	case ast.Ceil:
		return fmt.Sprintf("fceil(%s)", child), nil
	case ast.Log:
		return fmt.Sprintf("flog(%s)", child), nil
	case ast.Ln:
		return fmt.Sprintf("fln(%s)", child), nil
	case ast.Tan:
		return compileDiv(fmt.Sprintf("fsin(%s)", child), fmt.Sprintf("fcos(%s)", child), st), nil
	case ast.Sqrt:
		return fmt.Sprintf("fexp(fmul(fln(%s), 0.5))", child), nil
	case ast.Fact:
		return "", fxerrors.Math("factorial isn't implemented yet!")
	default:
		return "", fxerrors.Math("there is nothing to operate on in %s", n.Op)
	}
}

func compileBinaryExpr(n *ast.BinaryNode, st *state) (string, error) {
	lhs, err := compile(n.Lhs, st)
	if err != nil {
		return "", err
	}
	rhs, err := compile(n.Rhs, st)
	if err != nil {
		return "", err
	}

	switch n.Op {
	case ast.Division:
		return compileDiv(lhs, rhs, st), nil
	case ast.Power:
		if c, ok := n.Rhs.(*ast.Constant); ok && isIntegral(c.Value) {
			return compilePowInteger(lhs, int(c.Value), st), nil
		}
		return fmt.Sprintf("fexp(fmul(fln(%s), %s))", lhs, rhs), nil
	case ast.Equal:
		return "", fxerrors.Math("equal is not an operation in this context")
	default:
		return "", fxerrors.Math("%s is not a known binary operation", n.Op)
	}
}

func compileNAry(n *ast.NAryNode, st *state) (string, error) {
	if len(n.Children) < 2 {
		return "", fxerrors.Math("a %s cannot be of less than two terms", n.Op)
	}
	fn := "fadd"
	if n.Op == ast.Multiply {
		fn = "fmul"
	}

	first, err := compile(n.Children[0], st)
	if err != nil {
		return "", err
	}
	second, err := compile(n.Children[1], st)
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%s(%s, %s)", fn, first, second)

	for _, c := range n.Children[2:] {
		next, err := compile(c, st)
		if err != nil {
			return "", err
		}
		code = fmt.Sprintf("%s(%s, %s)", fn, code, next)
	}
	return code, nil
}

// compileDiv hoists den into a named temporary and returns an fdiv
// referencing it, so handleDenominators can emit it once up front.
func compileDiv(num, den string, st *state) string {
	st.denominators = append(st.denominators, den)
	return fmt.Sprintf("fdiv( %s, var_%d_%d )", num, st.exprIdx, len(st.denominators)-1)
}

func compilePowInteger(code string, n int, st *state) string {
	switch {
	case n == 0:
		return "1.0"
	case n < 0:
		return compileDiv("1.0", compilePowInteger(code, -n, st), st)
	case n == 1:
		return code
	case n == 2:
		return fmt.Sprintf("fmul(%s, %s)", code, code)
	default:
		return fmt.Sprintf("fmul(%s, %s)", code, compilePowInteger(code, n-1, st))
	}
}

// handleDenominators assembles the final emitted statement: a prelude
// declaring each hoisted denominator temporary and building the
// per-denominator exclusion bitmask, followed by the sign-test on the
// body itself.
func handleDenominators(code string, denominators []string, exprIdx int) (string, error) {
	if len(denominators) > 32 {
		return "", fxerrors.IO("a function can't have more than 32 denominators")
	}

	var b strings.Builder
	for i, d := range denominators {
		fmt.Fprintf(&b, "\n\t\t\tfloat var_%d_%d = %s;\n\t\t\tret.y <<= 1;\n\t\t\tret.y |= int(fneg(var_%d_%d));", exprIdx, i, d, exprIdx, i)
	}
	fmt.Fprintf(&b, "\n\t\t\tret.x = int(fneg(%s));", code)
	return b.String(), nil
}

func isIntegral(v float64) bool {
	return math.Abs(float64(int32(v))-v) < epsilon
}

const epsilon = 2.220446049250313e-16
