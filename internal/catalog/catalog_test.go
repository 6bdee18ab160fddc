package catalog

import (
	"math"
	"testing"

	"fxc/internal/ast"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
	}{
		{"add", "+", KindNAry},
		{"minus", "-", KindUnary},
		{"power marker", "?", KindBinary},
		{"equal", "=", KindBinary},
		{"frac", "frac", KindBinary},
		{"pi", "pi", KindConstant},
		{"sin", "sin", KindUnary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := Lookup(tt.input)
			if err != nil {
				t.Fatalf("Lookup(%q) returned error: %v", tt.input, err)
			}
			if entry.Kind != tt.wantKind {
				t.Errorf("Lookup(%q).Kind = %v, want %v", tt.input, entry.Kind, tt.wantKind)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("bogus"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}

func TestLookupGreekLetters(t *testing.T) {
	if _, err := Lookup("theta"); err == nil {
		t.Error("expected greek letters to be rejected as unimplemented")
	}
}

func TestFactorial(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1}, {1, 1}, {2, 2}, {5, 120},
	}
	for _, tt := range tests {
		if got := Factorial(tt.in); got != tt.want {
			t.Errorf("Factorial(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUnaryFuncLog(t *testing.T) {
	fn, err := UnaryFunc(ast.Log)
	if err != nil {
		t.Fatal(err)
	}
	if got := fn(100); math.Abs(got-2) > 1e-9 {
		t.Errorf("Log(100) = %v, want 2", got)
	}
}

func TestBinaryFuncEqual(t *testing.T) {
	fn, err := BinaryFunc(ast.Equal)
	if err != nil {
		t.Fatal(err)
	}
	if got := fn(5, 3); got != 2 {
		t.Errorf("Equal(5, 3) = %v, want 2 (residual)", got)
	}
}

func TestNAryFunc(t *testing.T) {
	add, _ := NAryFunc(ast.Add)
	if got := add(2, 3); got != 5 {
		t.Errorf("Add(2, 3) = %v, want 5", got)
	}
	mul, _ := NAryFunc(ast.Multiply)
	if got := mul(2, 3); got != 6 {
		t.Errorf("Multiply(2, 3) = %v, want 6", got)
	}
}
