package bytecompile

import (
	"testing"

	"fxc/internal/ast"
	"fxc/internal/bytecode"
	fxerrors "fxc/internal/errors"
)

func lastOps(program []bytecode.Instruction, n int) []bytecode.Op {
	out := make([]bytecode.Op, 0, n)
	for _, instr := range program[len(program)-n:] {
		out = append(out, instr.Op)
	}
	return out
}

func TestCompileToBytecodeRejectsNoUnknowns(t *testing.T) {
	_, err := CompileToBytecode(&ast.Constant{Value: 1}, nil, 0)
	if !fxerrors.Is(err, fxerrors.MathErrorKind) {
		t.Fatalf("err = %v, want a MathError", err)
	}
}

func TestCompileToBytecodePrependsStExprAndEpilogue(t *testing.T) {
	program, err := CompileToBytecode(&ast.Unknown{Name: "x"}, nil, 7)
	if err != nil {
		t.Fatal(err)
	}
	if program[0].Op != bytecode.OpStExpr || program[0].Operand != 7 {
		t.Fatalf("program[0] = %+v, want StExpr(7)", program[0])
	}
	gotTail := lastOps(program, 3)
	wantTail := []bytecode.Op{bytecode.OpUnary, bytecode.OpAdd, bytecode.OpStore}
	for i := range wantTail {
		if gotTail[i] != wantTail[i] {
			t.Fatalf("tail = %v, want %v", gotTail, wantTail)
		}
	}
}

func TestCompileToBytecodeEquationSkipsImplicitUnknown(t *testing.T) {
	eq := &ast.BinaryNode{Op: ast.Equal, Lhs: &ast.Unknown{Name: "y"}, Rhs: &ast.Constant{Value: 2}}
	program, err := CompileToBytecode(eq, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, instr := range program {
		if instr.Op == bytecode.OpPushX {
			t.Error("equation form shouldn't re-push an implicit unknown")
		}
	}
}

func TestCompileToBytecodeUnboundVariableErrors(t *testing.T) {
	root := &ast.NAryNode{Op: ast.Add, Children: []ast.Node{&ast.Unknown{Name: "x"}, &ast.Variable{Name: "a"}}}
	_, err := CompileToBytecode(root, nil, 0)
	if !fxerrors.Is(err, fxerrors.IoErrorKind) {
		t.Fatalf("err = %v, want an IoError", err)
	}
}

func TestCompileToBytecodeFactorialUnimplemented(t *testing.T) {
	n := &ast.UnaryNode{Op: ast.Fact, Child: &ast.Unknown{Name: "x"}}
	_, err := CompileToBytecode(n, nil, 0)
	if !fxerrors.Is(err, fxerrors.MathErrorKind) {
		t.Fatalf("err = %v, want a MathError for factorial", err)
	}
}

func TestCompilePowIntegerUnrollsMultiplyChain(t *testing.T) {
	// x^3 body unrolls to two Cpy then two Mul, no Pow instruction at all.
	n := &ast.BinaryNode{Op: ast.Power, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Constant{Value: 3}}
	program, err := compile(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[bytecode.Op]int{}
	for _, instr := range program {
		counts[instr.Op]++
	}
	if counts[bytecode.OpCpy] != 2 || counts[bytecode.OpMul] != 2 {
		t.Fatalf("x^3 unroll = %+v, want 2 Cpy and 2 Mul", program)
	}
	if counts[bytecode.OpPow] != 0 {
		t.Error("integer power shouldn't emit OpPow")
	}
}

func TestCompilePowZeroPopsAndPushesOne(t *testing.T) {
	n := &ast.BinaryNode{Op: ast.Power, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Constant{Value: 0}}
	program, err := compile(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	last := program[len(program)-1]
	if last.Op != bytecode.OpPush || last.Operand != 1.0 {
		t.Errorf("x^0 final instruction = %+v, want Push(1.0)", last)
	}
}

func TestCompilePowNonIntegralEmitsOpPow(t *testing.T) {
	n := &ast.BinaryNode{Op: ast.Power, Lhs: &ast.Unknown{Name: "x"}, Rhs: &ast.Unknown{Name: "y"}}
	program, err := compile(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	if program[len(program)-1].Op != bytecode.OpPow {
		t.Errorf("last instruction = %+v, want OpPow", program[len(program)-1])
	}
}

func TestCompileNAryTooFewChildrenErrors(t *testing.T) {
	n := &ast.NAryNode{Op: ast.Add, Children: []ast.Node{&ast.Unknown{Name: "x"}}}
	_, err := compile(n, nil)
	if !fxerrors.Is(err, fxerrors.MathErrorKind) {
		t.Fatalf("err = %v, want a MathError", err)
	}
}
