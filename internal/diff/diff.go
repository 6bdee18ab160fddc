// Package diff implements spec.md §4.6, the Differentiator: symbolic
// d/d(unknown) over the expression tree. Three rules are pinned exactly
// as spec.md's table describes them even though they look wrong — see
// the per-rule comments below and SPEC_FULL.md §6. differentiate never
// mutates its argument; every returned node is freshly built or a Clone.
package diff

import (
	"math"

	"fxc/internal/ast"
	fxerrors "fxc/internal/errors"
)

// Differentiate returns d/d(unknown) of node as a fresh tree. No
// simplification is applied; callers re-run the simplifier afterward.
func Differentiate(node ast.Node) (ast.Node, error) {
	switch n := node.(type) {
	case *ast.Unknown:
		return &ast.Constant{Value: 1}, nil
	case *ast.Constant:
		return &ast.Constant{Value: 0}, nil
	case *ast.Variable:
		return &ast.Constant{Value: 0}, nil
	case *ast.UnaryNode:
		return differentiateUnary(n)
	case *ast.BinaryNode:
		return differentiateBinary(n)
	case *ast.NAryNode:
		return differentiateNAry(n)
	default:
		return nil, fxerrors.Math("can't differentiate this node")
	}
}

func differentiateUnary(n *ast.UnaryNode) (ast.Node, error) {
	f := n.Child
	switch n.Op {
	case ast.Minus:
		// Returns differentiate(f), not its negation. Pinned as-is; see
		// SPEC_FULL.md §6.
		return Differentiate(f)

	case ast.Ln:
		fprime, err := Differentiate(f)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryNode{Op: ast.Division, Lhs: fprime, Rhs: f.Clone()}, nil

	case ast.Sin:
		fprime, err := Differentiate(f)
		if err != nil {
			return nil, err
		}
		cosf := &ast.UnaryNode{Op: ast.Cos, Child: f.Clone()}
		return mul(cosf, fprime), nil

	case ast.Cos:
		fprime, err := Differentiate(f)
		if err != nil {
			return nil, err
		}
		sinf := &ast.UnaryNode{Op: ast.Sin, Child: f.Clone()}
		return &ast.UnaryNode{Op: ast.Minus, Child: mul(sinf, fprime)}, nil

	case ast.Tan:
		// Omits the chain-rule "· f'" factor. Pinned as-is; see
		// SPEC_FULL.md §6.
		cos1 := &ast.UnaryNode{Op: ast.Cos, Child: f.Clone()}
		cos2 := &ast.UnaryNode{Op: ast.Cos, Child: f.Clone()}
		return &ast.BinaryNode{Op: ast.Division, Lhs: &ast.Constant{Value: 1}, Rhs: mul(cos1, cos2)}, nil

	case ast.Sqrt:
		fprime, err := Differentiate(f)
		if err != nil {
			return nil, err
		}
		sqrtf := &ast.UnaryNode{Op: ast.Sqrt, Child: f.Clone()}
		denom := mul(&ast.Constant{Value: 2}, sqrtf)
		return &ast.BinaryNode{Op: ast.Division, Lhs: fprime, Rhs: denom}, nil

	case ast.Log:
		// f' / (ln10 · sqrt(f)): likely meant log10's f'/(f·ln10) but
		// divides by sqrt(f) instead of f. Pinned as-is; see
		// SPEC_FULL.md §6.
		fprime, err := Differentiate(f)
		if err != nil {
			return nil, err
		}
		ln10 := &ast.Constant{Value: math.Ln10}
		sqrtf := &ast.UnaryNode{Op: ast.Sqrt, Child: f.Clone()}
		denom := mul(ln10, sqrtf)
		return &ast.BinaryNode{Op: ast.Division, Lhs: fprime, Rhs: denom}, nil

	default:
		return nil, fxerrors.Math("%s is not derivable", n.Op)
	}
}

func differentiateBinary(n *ast.BinaryNode) (ast.Node, error) {
	switch n.Op {
	case ast.Power:
		if c, ok := n.Rhs.(*ast.Constant); ok {
			fprime, err := Differentiate(n.Lhs)
			if err != nil {
				return nil, err
			}
			fPowA1 := &ast.BinaryNode{
				Op:  ast.Power,
				Lhs: n.Lhs.Clone(),
				Rhs: &ast.Constant{Value: c.Value - 1},
			}
			return mul(mul(&ast.Constant{Value: c.Value}, fPowA1), fprime), nil
		}

		fprime, err := Differentiate(n.Lhs)
		if err != nil {
			return nil, err
		}
		gprime, err := Differentiate(n.Rhs)
		if err != nil {
			return nil, err
		}
		fPowG := &ast.BinaryNode{Op: ast.Power, Lhs: n.Lhs.Clone(), Rhs: n.Rhs.Clone()}
		lnf := &ast.UnaryNode{Op: ast.Ln, Child: n.Lhs.Clone()}
		term1 := mul(gprime, lnf)
		term2 := mul(n.Rhs.Clone(), &ast.BinaryNode{Op: ast.Division, Lhs: fprime, Rhs: n.Lhs.Clone()})
		inner := &ast.NAryNode{Op: ast.Add, Children: []ast.Node{term1, term2}}
		return mul(fPowG, inner), nil

	case ast.Division:
		fprime, err := Differentiate(n.Lhs)
		if err != nil {
			return nil, err
		}
		gprime, err := Differentiate(n.Rhs)
		if err != nil {
			return nil, err
		}
		numerator := &ast.NAryNode{Op: ast.Add, Children: []ast.Node{
			mul(fprime, n.Rhs.Clone()),
			&ast.UnaryNode{Op: ast.Minus, Child: mul(n.Lhs.Clone(), gprime)},
		}}
		denominator := mul(n.Rhs.Clone(), n.Rhs.Clone())
		return &ast.BinaryNode{Op: ast.Division, Lhs: numerator, Rhs: denominator}, nil

	case ast.Equal:
		return nil, fxerrors.Math("can't differentiate an equation")

	default:
		return nil, fxerrors.Math("%s is not derivable", n.Op)
	}
}

func differentiateNAry(n *ast.NAryNode) (ast.Node, error) {
	switch n.Op {
	case ast.Add:
		children := make([]ast.Node, len(n.Children))
		for i, c := range n.Children {
			d, err := Differentiate(c)
			if err != nil {
				return nil, err
			}
			children[i] = d
		}
		return &ast.NAryNode{Op: ast.Add, Children: children}, nil

	case ast.Multiply:
		terms := make([]ast.Node, len(n.Children))
		for i := range n.Children {
			factors := make([]ast.Node, len(n.Children))
			for j, c := range n.Children {
				if i == j {
					d, err := Differentiate(c)
					if err != nil {
						return nil, err
					}
					factors[j] = d
				} else {
					factors[j] = c.Clone()
				}
			}
			terms[i] = &ast.NAryNode{Op: ast.Multiply, Children: factors}
		}
		return &ast.NAryNode{Op: ast.Add, Children: terms}, nil

	default:
		return nil, fxerrors.Math("%s is not derivable", n.Op)
	}
}

func mul(a, b ast.Node) ast.Node {
	return &ast.NAryNode{Op: ast.Multiply, Children: []ast.Node{a, b}}
}
