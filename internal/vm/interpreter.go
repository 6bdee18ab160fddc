// Package vm is a CPU-side interpreter for the bytecode program
// internal/bytecompile emits, grounded on the original implementation's
// compiler/tests.rs Interpreter: "so I can debug the code that runs
// GPU-side more easily." Unlike that reference, which panics via a raw
// array index on stack overflow/underflow, Run returns a MathError —
// there's no reason to crash the host process over a malformed program.
package vm

import (
	"math"

	"fxc/internal/bytecode"
	fxerrors "fxc/internal/errors"
)

// MaxStackSize bounds the operand stack (spec.md §5's "fixed
// 1024-element array").
const MaxStackSize = 1024

// MaxExprs bounds how many StExpr-tagged expressions one program can
// address in its output slots.
const MaxExprs = 1024

// Interpreter runs one compiled program against a given (x, y) sample.
type Interpreter struct {
	stack       [MaxStackSize]float64
	stackTop    int
	pc          int
	currentExpr int
	program     []bytecode.Instruction
}

// New wraps a compiled instruction stream for repeated Run calls at
// different (x, y) samples.
func New(program []bytecode.Instruction) *Interpreter {
	return &Interpreter{program: program}
}

// Run executes the whole program for one (x, y) sample and returns the
// per-expression residual values written by Store.
func (vm *Interpreter) Run(x, y float64) ([MaxExprs]float64, error) {
	vm.pc, vm.stackTop, vm.currentExpr = 0, 0, 0
	var output [MaxExprs]float64

	for vm.pc < len(vm.program) {
		instr := vm.program[vm.pc]
		if err := vm.step(instr, x, y, &output); err != nil {
			return output, err
		}
		vm.pc++
	}
	return output, nil
}

func (vm *Interpreter) step(instr bytecode.Instruction, x, y float64, output *[MaxExprs]float64) error {
	switch instr.Op {
	case bytecode.OpStExpr:
		vm.currentExpr = int(instr.Operand)
		return nil

	case bytecode.OpPush:
		return vm.push(instr.Operand)

	case bytecode.OpPushX:
		return vm.push(x)

	case bytecode.OpPushY:
		return vm.push(y)

	case bytecode.OpCpy:
		top, err := vm.peek()
		if err != nil {
			return err
		}
		return vm.push(top)

	case bytecode.OpRet:
		vm.currentExpr++
		return nil

	case bytecode.OpStore:
		top, err := vm.peek()
		if err != nil {
			return err
		}
		if vm.currentExpr < 0 || vm.currentExpr >= MaxExprs {
			return fxerrors.Math("expression index %d out of range", vm.currentExpr)
		}
		output[vm.currentExpr] = top
		_, err = vm.pop()
		return err

	case bytecode.OpPop:
		_, err := vm.pop()
		return err

	case bytecode.OpAdd:
		return vm.binaryOp(func(a, b float64) float64 { return a + b })
	case bytecode.OpMul:
		return vm.binaryOp(func(a, b float64) float64 { return a * b })
	case bytecode.OpDiv:
		return vm.binaryOp(func(a, b float64) float64 { return a / b })
	case bytecode.OpPow:
		return vm.binaryOp(math.Pow)

	case bytecode.OpUnary:
		fn, err := unaryFunc(instr.UnaryOp)
		if err != nil {
			return err
		}
		return vm.unaryOp(fn)

	default:
		return fxerrors.Math("unknown instruction")
	}
}

func (vm *Interpreter) push(v float64) error {
	if vm.stackTop >= MaxStackSize {
		return fxerrors.Math("stack overflow")
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
	return nil
}

func (vm *Interpreter) pop() (float64, error) {
	if vm.stackTop == 0 {
		return 0, fxerrors.Math("stack underflow")
	}
	vm.stackTop--
	return vm.stack[vm.stackTop], nil
}

func (vm *Interpreter) peek() (float64, error) {
	if vm.stackTop == 0 {
		return 0, fxerrors.Math("stack underflow")
	}
	return vm.stack[vm.stackTop-1], nil
}

func (vm *Interpreter) binaryOp(fn func(a, b float64) float64) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.push(fn(a, b))
}

func (vm *Interpreter) unaryOp(fn func(float64) float64) error {
	a, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.push(fn(a))
}

func unaryFunc(k bytecode.UnaryKind) (func(float64) float64, error) {
	switch k {
	case bytecode.UMinus:
		return func(a float64) float64 { return -a }, nil
	case bytecode.USin:
		return math.Sin, nil
	case bytecode.UCos:
		return math.Cos, nil
	case bytecode.UFloor:
		return math.Floor, nil
	case bytecode.UAbs:
		return math.Abs, nil
	case bytecode.UCeil:
		return math.Ceil, nil
	case bytecode.ULog:
		return math.Log10, nil
	case bytecode.ULn:
		return math.Log, nil
	case bytecode.USqrt:
		return math.Sqrt, nil
	case bytecode.UTan:
		return math.Tan, nil
	default:
		return nil, fxerrors.Math("unknown unary opcode")
	}
}
