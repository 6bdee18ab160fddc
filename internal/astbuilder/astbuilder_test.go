package astbuilder

import (
	"testing"

	"fxc/internal/ast"
)

func TestParseSimpleSum(t *testing.T) {
	root, err := Parse("x+1", nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	nary, ok := root.(*ast.NAryNode)
	if !ok || nary.Op != ast.Add || len(nary.Children) != 2 {
		t.Fatalf("Parse(\"x+1\") = %#v, want a two-child Add node", root)
	}
}

func TestParseProduct(t *testing.T) {
	root, err := Parse("2x", nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	nary, ok := root.(*ast.NAryNode)
	if !ok || nary.Op != ast.Multiply {
		t.Fatalf("Parse(\"2x\") = %#v, want a Multiply node", root)
	}
}

func TestParseEquation(t *testing.T) {
	root, err := Parse("y=x", nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	bin, ok := root.(*ast.BinaryNode)
	if !ok || bin.Op != ast.Equal {
		t.Fatalf("Parse(\"y=x\") = %#v, want an Equal node", root)
	}
}

func TestParseTooManyEqualSigns(t *testing.T) {
	if _, err := Parse("x=y=1", nil); err == nil {
		t.Error("expected an error for more than one '='")
	}
}

func TestParseGroupAndPower(t *testing.T) {
	root, err := Parse("{x+1}^2", nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	bin, ok := root.(*ast.BinaryNode)
	if !ok || bin.Op != ast.Power {
		t.Fatalf("Parse(\"{x+1}^2\") = %#v, want a Power node", root)
	}
	if _, ok := bin.Lhs.(*ast.NAryNode); !ok {
		t.Errorf("Power base = %#v, want the grouped sum", bin.Lhs)
	}
}

func TestParseUnaryMacro(t *testing.T) {
	root, err := Parse(`\sin x`, nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	un, ok := root.(*ast.UnaryNode)
	if !ok || un.Op != ast.Sin {
		t.Fatalf("Parse(\\sin x) = %#v, want a Sin node", root)
	}
}

func TestParseConstantPi(t *testing.T) {
	root, err := Parse(`\pi`, nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cst, ok := root.(*ast.Constant)
	if !ok {
		t.Fatalf("Parse(\\pi) = %#v, want a Constant", root)
	}
	if cst.Value < 3.14 || cst.Value > 3.15 {
		t.Errorf("pi constant = %v, want ~3.14159", cst.Value)
	}
}

func TestParseUnknownName(t *testing.T) {
	// "a" is neither x, y nor a registered function: it's a free Variable.
	root, err := Parse("a", nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	v, ok := root.(*ast.Variable)
	if !ok || v.Name != "a" {
		t.Fatalf("Parse(\"a\") = %#v, want Variable(a)", root)
	}
}

func TestParseFunctionInlining(t *testing.T) {
	// f(unknown) = unknown * unknown, called as f(3): should inline to 3*3.
	funcs := Functions{
		"f": &ast.NAryNode{Op: ast.Multiply, Children: []ast.Node{&ast.Unknown{Name: "x"}, &ast.Unknown{Name: "x"}}},
	}
	root, err := Parse("f3", funcs)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	nary, ok := root.(*ast.NAryNode)
	if !ok || nary.Op != ast.Multiply || len(nary.Children) != 2 {
		t.Fatalf("Parse(\"f3\") = %#v, want an inlined Multiply node", root)
	}
	for _, c := range nary.Children {
		if cst, ok := c.(*ast.Constant); !ok || cst.Value != 3 {
			t.Errorf("inlined child = %#v, want Constant(3)", c)
		}
	}
}

func TestParseFunctionDerivative(t *testing.T) {
	// f(unknown) = unknown, f'(3) should differentiate to the constant 1
	// substituted with 3, i.e. Constant(1) untouched by substitution.
	funcs := Functions{
		"f": &ast.Unknown{Name: "x"},
	}
	root, err := Parse("f'3", funcs)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cst, ok := root.(*ast.Constant)
	if !ok || cst.Value != 1 {
		t.Fatalf("Parse(\"f'3\") = %#v, want Constant(1)", root)
	}
}

func TestParseEmptyEquation(t *testing.T) {
	if _, err := Parse("", nil); err == nil {
		t.Error("expected an error for an empty equation")
	}
}
