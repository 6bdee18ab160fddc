package bytecode

import (
	"strings"
	"testing"
)

func TestEncodeCoreOpcodes(t *testing.T) {
	cases := []struct {
		instr Instruction
		want  byte
	}{
		{Instruction{Op: OpStExpr, Operand: 3}, 0},
		{Instruction{Op: OpPush, Operand: 2}, 1},
		{Instruction{Op: OpPushX}, 2},
		{Instruction{Op: OpPushY}, 3},
		{Instruction{Op: OpCpy}, 4},
		{Instruction{Op: OpPop}, 5},
		{Instruction{Op: OpStore}, 6},
		{Instruction{Op: OpRet}, 7},
	}
	for _, c := range cases {
		enc, err := c.instr.Encode()
		if err != nil {
			t.Fatalf("Encode(%+v) error: %v", c.instr, err)
		}
		if enc.Opcode != c.want {
			t.Errorf("Encode(%+v).Opcode = %d, want %d", c.instr, enc.Opcode, c.want)
		}
	}
}

func TestEncodeBinaryOpcodesUseThirtyTwoBase(t *testing.T) {
	cases := []struct {
		op   Op
		want byte
	}{
		{OpAdd, 32}, {OpMul, 33}, {OpDiv, 34}, {OpPow, 35},
	}
	for _, c := range cases {
		enc, err := Instruction{Op: c.op}.Encode()
		if err != nil {
			t.Fatal(err)
		}
		if enc.Opcode != c.want {
			t.Errorf("Encode(%v).Opcode = %d, want %d", c.op, enc.Opcode, c.want)
		}
	}
}

func TestEncodeUnaryOpcodesUseSixtyFourBase(t *testing.T) {
	enc, err := Instruction{Op: OpUnary, UnaryOp: USin}.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if enc.Opcode != 64|1 {
		t.Errorf("Encode(unary sin).Opcode = %d, want %d", enc.Opcode, 64|1)
	}
}

func TestEncodeUnaryFactorialErrors(t *testing.T) {
	// Fact has no opcode: UnaryKind never spells it out, but an
	// out-of-range value should still surface as an error rather than
	// silently encoding as opcode 64.
	_, err := Instruction{Op: OpUnary, UnaryOp: UnaryKind(99)}.Encode()
	if err == nil {
		t.Error("expected an error encoding an unrecognized unary op")
	}
}

func TestEncodeProgramPreservesOrder(t *testing.T) {
	instrs := []Instruction{
		{Op: OpPush, Operand: 1},
		{Op: OpPushX},
		{Op: OpAdd},
	}
	encoded, err := EncodeProgram(instrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(encoded) != 3 || encoded[0].Opcode != 1 || encoded[1].Opcode != 2 || encoded[2].Opcode != 32 {
		t.Errorf("EncodeProgram = %+v, unexpected order/opcodes", encoded)
	}
}

func TestProgramExtendAndEncode(t *testing.T) {
	p := NewProgram()
	p.Emit(Instruction{Op: OpPushX})
	p.Extend([]Instruction{{Op: OpPushY}, {Op: OpAdd}})
	if len(p.Instructions) != 3 {
		t.Fatalf("len(Instructions) = %d, want 3", len(p.Instructions))
	}
	encoded, err := p.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if len(encoded) != 3 {
		t.Errorf("len(Encode()) = %d, want 3", len(encoded))
	}
}

func TestProgramDisassemble(t *testing.T) {
	p := NewProgram()
	p.Emit(Instruction{Op: OpPush, Operand: 2})
	p.Emit(Instruction{Op: OpPushX})
	p.Emit(Instruction{Op: OpUnary, UnaryOp: UCos})
	out := p.Disassemble()
	for _, want := range []string{"push 2", "push_x", "cos"} {
		if !strings.Contains(out, want) {
			t.Errorf("Disassemble() = %q, want it to contain %q", out, want)
		}
	}
}
