package diff

import (
	"testing"

	"fxc/internal/ast"
)

func TestDifferentiateUnknownAndConstant(t *testing.T) {
	d, err := Differentiate(&ast.Unknown{Name: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if cst, ok := d.(*ast.Constant); !ok || cst.Value != 1 {
		t.Errorf("d/dx(x) = %#v, want Constant(1)", d)
	}

	d, err = Differentiate(&ast.Constant{Value: 7})
	if err != nil {
		t.Fatal(err)
	}
	if cst, ok := d.(*ast.Constant); !ok || cst.Value != 0 {
		t.Errorf("d/dx(7) = %#v, want Constant(0)", d)
	}
}

func TestDifferentiateMinusIsPinnedBuggy(t *testing.T) {
	// -x differentiates to d/dx(x), i.e. Constant(1), NOT -1. This isn't a
	// bug in this port: the rule is pinned exactly as the source material
	// defines it.
	d, err := Differentiate(&ast.UnaryNode{Op: ast.Minus, Child: &ast.Unknown{Name: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	cst, ok := d.(*ast.Constant)
	if !ok || cst.Value != 1 {
		t.Fatalf("d/dx(-x) = %#v, want the pinned Constant(1), not -1", d)
	}
}

func TestDifferentiateTanOmitsChainRule(t *testing.T) {
	// d/dx(tan(x)) is pinned to the bare 1/(cos(x)*cos(x)) Division, with
	// no trailing "· d/dx(x)" factor as the real chain rule would require.
	d, err := Differentiate(&ast.UnaryNode{Op: ast.Tan, Child: &ast.Unknown{Name: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	bin, ok := d.(*ast.BinaryNode)
	if !ok || bin.Op != ast.Division {
		t.Fatalf("d/dx(tan(x)) = %#v, want a Division node", d)
	}
	if cst, ok := bin.Lhs.(*ast.Constant); !ok || cst.Value != 1 {
		t.Errorf("numerator = %#v, want Constant(1)", bin.Lhs)
	}
	nary, ok := bin.Rhs.(*ast.NAryNode)
	if !ok || nary.Op != ast.Multiply || len(nary.Children) != 2 {
		t.Fatalf("denominator = %#v, want cos(x)*cos(x)", bin.Rhs)
	}
}

func TestDifferentiateSinUsesChainRule(t *testing.T) {
	d, err := Differentiate(&ast.UnaryNode{Op: ast.Sin, Child: &ast.Unknown{Name: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	nary, ok := d.(*ast.NAryNode)
	if !ok || nary.Op != ast.Multiply || len(nary.Children) != 2 {
		t.Fatalf("d/dx(sin(x)) = %#v, want cos(x)*1", d)
	}
	if _, ok := nary.Children[0].(*ast.UnaryNode); !ok {
		t.Errorf("first factor = %#v, want cos(x)", nary.Children[0])
	}
}

func TestDifferentiatePowerConstantExponent(t *testing.T) {
	// d/dx(x^3) = 3 * x^2 * 1
	n := &ast.BinaryNode{Op: ast.Power, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Constant{Value: 3}}
	d, err := Differentiate(n)
	if err != nil {
		t.Fatal(err)
	}
	outer, ok := d.(*ast.NAryNode)
	if !ok || outer.Op != ast.Multiply || len(outer.Children) != 2 {
		t.Fatalf("d/dx(x^3) = %#v, want a two-factor Multiply", d)
	}
	inner, ok := outer.Children[0].(*ast.NAryNode)
	if !ok || inner.Op != ast.Multiply {
		t.Fatalf("outer first factor = %#v, want Multiply(3, x^2)", outer.Children[0])
	}
	cst, ok := inner.Children[0].(*ast.Constant)
	if !ok || cst.Value != 3 {
		t.Errorf("coefficient = %#v, want Constant(3)", inner.Children[0])
	}
	powNode, ok := inner.Children[1].(*ast.BinaryNode)
	if !ok || powNode.Op != ast.Power {
		t.Fatalf("reduced power = %#v, want x^2", inner.Children[1])
	}
	if exp, ok := powNode.Rhs.(*ast.Constant); !ok || exp.Value != 2 {
		t.Errorf("reduced exponent = %#v, want Constant(2)", powNode.Rhs)
	}
}

func TestDifferentiateDivisionQuotientRule(t *testing.T) {
	n := &ast.BinaryNode{Op: ast.Division, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Constant{Value: 2}}
	d, err := Differentiate(n)
	if err != nil {
		t.Fatal(err)
	}
	bin, ok := d.(*ast.BinaryNode)
	if !ok || bin.Op != ast.Division {
		t.Fatalf("d/dx(x/2) = %#v, want a Division node", d)
	}
}

func TestDifferentiateEqualErrors(t *testing.T) {
	n := &ast.BinaryNode{Op: ast.Equal, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Constant{Value: 1}}
	if _, err := Differentiate(n); err == nil {
		t.Error("expected an error differentiating an Equal node")
	}
}

func TestDifferentiateSumRule(t *testing.T) {
	n := &ast.NAryNode{Op: ast.Add, Children: []ast.Node{&ast.Unknown{Name: "x"}, &ast.Constant{Value: 5}}}
	d, err := Differentiate(n)
	if err != nil {
		t.Fatal(err)
	}
	nary, ok := d.(*ast.NAryNode)
	if !ok || nary.Op != ast.Add || len(nary.Children) != 2 {
		t.Fatalf("d/dx(x+5) = %#v, want Add(1, 0)", d)
	}
}

func TestDifferentiateProductRule(t *testing.T) {
	// d/dx(x*x) = (1*x) + (x*1)
	n := &ast.NAryNode{Op: ast.Multiply, Children: []ast.Node{&ast.Unknown{Name: "x"}, &ast.Unknown{Name: "x"}}}
	d, err := Differentiate(n)
	if err != nil {
		t.Fatal(err)
	}
	sum, ok := d.(*ast.NAryNode)
	if !ok || sum.Op != ast.Add || len(sum.Children) != 2 {
		t.Fatalf("d/dx(x*x) = %#v, want a two-term sum", d)
	}
	for _, term := range sum.Children {
		if prod, ok := term.(*ast.NAryNode); !ok || prod.Op != ast.Multiply || len(prod.Children) != 2 {
			t.Errorf("product-rule term = %#v, want a two-factor Multiply", term)
		}
	}
}

func TestDifferentiateDoesNotMutateInput(t *testing.T) {
	original := &ast.UnaryNode{Op: ast.Sin, Child: &ast.Unknown{Name: "x"}}
	if _, err := Differentiate(original); err != nil {
		t.Fatal(err)
	}
	if original.Op != ast.Sin {
		t.Error("Differentiate mutated its argument")
	}
	if _, ok := original.Child.(*ast.Unknown); !ok {
		t.Error("Differentiate mutated its argument's child")
	}
}
