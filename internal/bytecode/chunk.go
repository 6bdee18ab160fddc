package bytecode

import "fmt"

// Program is an ordered instruction stream for one compiled equation,
// the unit that gets serialized and uploaded to the GPU side. It plays
// the role the teacher's Chunk plays for its own VM, minus the constant
// pool and per-instruction debug records this stack machine has no use
// for: every instruction is already a fixed-width (opcode, f64) pair.
type Program struct {
	Instructions []Instruction
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{}
}

// Emit appends one instruction.
func (p *Program) Emit(i Instruction) {
	p.Instructions = append(p.Instructions, i)
}

// Extend appends a whole instruction slice.
func (p *Program) Extend(is []Instruction) {
	p.Instructions = append(p.Instructions, is...)
}

// Encode serializes every instruction to its wire pair, in order.
func (p *Program) Encode() ([]Encoded, error) {
	return EncodeProgram(p.Instructions)
}

// Disassemble renders the program as one mnemonic per line, the Go
// analogue of the original's print_instructions debug dump.
func (p *Program) Disassemble() string {
	var out string
	for _, i := range p.Instructions {
		out += disassembleOne(i) + "\n"
	}
	return out
}

func disassembleOne(i Instruction) string {
	switch i.Op {
	case OpStExpr:
		return fmt.Sprintf("st_expr %d", int(i.Operand))
	case OpPush:
		return fmt.Sprintf("push %v", i.Operand)
	case OpPushX:
		return "push_x"
	case OpPushY:
		return "push_y"
	case OpCpy:
		return "cpy"
	case OpPop:
		return "pop"
	case OpStore:
		return "store"
	case OpRet:
		return "ret"
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPow:
		return "pow"
	case OpUnary:
		return unaryMnemonic(i.UnaryOp)
	default:
		return "?"
	}
}

func unaryMnemonic(u UnaryKind) string {
	switch u {
	case UMinus:
		return "minus"
	case USin:
		return "sin"
	case UCos:
		return "cos"
	case UFloor:
		return "floor"
	case UAbs:
		return "abs"
	case UCeil:
		return "ceil"
	case ULog:
		return "log"
	case ULn:
		return "ln"
	case USqrt:
		return "sqrt"
	case UTan:
		return "tan"
	default:
		return "?"
	}
}
