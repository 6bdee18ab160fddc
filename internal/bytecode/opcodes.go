// Package bytecode defines the stack-machine Instruction set of spec.md
// §4.8 and its wire encoding: every instruction serializes to a single
// (opcode byte, f64 operand) pair, the shape the GPU-side interpreter
// uploads as a flat buffer.
package bytecode

import fxerrors "fxc/internal/errors"

// UnaryKind enumerates the unary operators the bytecode backend can
// emit; this intentionally excludes Fact, which has no opcode.
type UnaryKind int

const (
	UMinus UnaryKind = iota
	USin
	UCos
	UFloor
	UAbs
	UCeil
	ULog
	ULn
	USqrt
	UTan
)

// Op tags the shape of one Instruction.
type Op int

const (
	OpStExpr Op = iota
	OpPush
	OpPushX
	OpPushY
	OpCpy
	OpPop
	OpStore
	OpRet
	OpAdd
	OpMul
	OpDiv
	OpPow
	OpUnary
)

// Instruction is one tagged-variant stack-machine op. Operand carries
// Push's value or StExpr's expression index (cast to float64); Unary
// carries which unary operator via UnaryOp.
type Instruction struct {
	Op      Op
	Operand float64
	UnaryOp UnaryKind
}

// Encoded is the wire pair the GPU-side loader consumes.
type Encoded struct {
	Opcode  byte
	Operand float64
}

// Encode serializes a single Instruction to its (opcode, f64) pair per
// spec.md §4.8's fixed numbering.
func (i Instruction) Encode() (Encoded, error) {
	switch i.Op {
	case OpStExpr:
		return Encoded{0, i.Operand}, nil
	case OpPush:
		return Encoded{1, i.Operand}, nil
	case OpPushX:
		return Encoded{2, 0}, nil
	case OpPushY:
		return Encoded{3, 0}, nil
	case OpCpy:
		return Encoded{4, 0}, nil
	case OpPop:
		return Encoded{5, 0}, nil
	case OpStore:
		return Encoded{6, 0}, nil
	case OpRet:
		return Encoded{7, 0}, nil
	case OpAdd:
		return Encoded{32 | 0, 0}, nil
	case OpMul:
		return Encoded{32 | 1, 0}, nil
	case OpDiv:
		return Encoded{32 | 2, 0}, nil
	case OpPow:
		return Encoded{32 | 3, 0}, nil
	case OpUnary:
		code, err := i.UnaryOp.code()
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{64 | code, 0}, nil
	default:
		return Encoded{}, fxerrors.Math("unknown instruction")
	}
}

func (u UnaryKind) code() (byte, error) {
	switch u {
	case UMinus:
		return 0, nil
	case USin:
		return 1, nil
	case UCos:
		return 2, nil
	case UFloor:
		return 3, nil
	case UAbs:
		return 4, nil
	case UCeil:
		return 5, nil
	case ULog:
		return 6, nil
	case ULn:
		return 7, nil
	case USqrt:
		return 8, nil
	case UTan:
		return 9, nil
	default:
		return 0, fxerrors.Math("factorial isn't implemented in bytecode")
	}
}

// EncodeProgram serializes a full instruction stream in order.
func EncodeProgram(program []Instruction) ([]Encoded, error) {
	out := make([]Encoded, 0, len(program))
	for _, i := range program {
		e, err := i.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
