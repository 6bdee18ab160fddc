// Package compilerstate implements spec.md §4.9, the orchestrator:
// CompilerState plus its five entry points (Process, AddVariable,
// AddFunction, DeleteVariable, DeleteFunction). Logging style and the
// one-*log.Logger-per-package shape follow cmd/sentra/main.go; the
// shader and bytecode backends are pure read-only passes over the same
// simplified tree, so they run concurrently via golang.org/x/sync's
// errgroup the way the dekarrin-tunaq retrieval pack uses it for its
// own fan-out database calls.
package compilerstate

import (
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fxc/internal/ast"
	"fxc/internal/astbuilder"
	"fxc/internal/bytecode"
	"fxc/internal/bytecompile"
	fxerrors "fxc/internal/errors"
	"fxc/internal/shader"
	"fxc/internal/simplify"
)

// Logger is package-level so the embedding host can redirect it, the
// way cmd/sentra/main.go wires a single *log.Logger through the CLI.
var Logger = log.New(os.Stderr, "fxc: ", log.LstdFlags)

// CompilerState is the two-map session spec.md §3 describes: one
// CompilerState per host instance, lifetime of the process.
type CompilerState struct {
	Variables map[string]float64
	Functions astbuilder.Functions
}

// New returns an empty CompilerState.
func New() *CompilerState {
	return &CompilerState{
		Variables: make(map[string]float64),
		Functions: make(astbuilder.Functions),
	}
}

// Response is the host-facing compile result (spec.md §6).
type Response struct {
	Code     string
	Bytecode []bytecode.Encoded
	Num      *float64
	TraceID  string
}

// Process parses eq (with state.Functions visible for inlining),
// simplifies twice, and either returns a numeric result or both
// backends' output.
func Process(eq string, state *CompilerState, exprIdx int) (Response, error) {
	traceID := uuid.NewString()
	Logger.Printf("[%s] process %q", traceID, eq)

	root, err := astbuilder.Parse(eq, state.Functions)
	if err != nil {
		Logger.Printf("[%s] warn: %v", traceID, err)
		return Response{}, err
	}

	resp, _, err := processAST(root, state.Variables, exprIdx)
	if err != nil {
		Logger.Printf("[%s] warn: %v", traceID, err)
		return Response{}, err
	}
	resp.TraceID = traceID

	if resp.Num != nil {
		Logger.Printf("[%s] expression %q evaluates to %v", traceID, eq, *resp.Num)
	} else {
		Logger.Printf("[%s] expression %q compiled to %s bytecode instructions",
			traceID, eq, humanize.Comma(int64(len(resp.Bytecode))))
	}
	return resp, nil
}

// processAST runs the two-pass simplifier and either backend, and also
// returns the simplified root so AddFunction can persist it: spec.md §5
// requires functions[id] hold the simplified AST, not the raw parse.
func processAST(root ast.Node, vars map[string]float64, exprIdx int) (Response, ast.Node, error) {
	// The simplifier sometimes needs two passes to fully fold: a single
	// pass can leave a degenerate n-ary wrapper where a different
	// child happened to fold first. The second pass is the load-bearing
	// one in the pre-REDESIGN semantics; kept here as a no-op safety
	// net now that rule 6 reports Some(v) on single-child collapse too.
	root, _, err := simplify.Simplify(root, vars)
	if err != nil {
		return Response{}, nil, err
	}
	root, numeric, err := simplify.Simplify(root, vars)
	if err != nil {
		return Response{}, nil, err
	}

	if numeric != nil {
		v := *numeric
		return Response{Num: &v}, root, nil
	}

	var code string
	var encoded []bytecode.Encoded
	g := new(errgroup.Group)
	g.Go(func() error {
		c, err := shader.CompileToString(root, vars, exprIdx)
		if err != nil {
			return err
		}
		code = c
		return nil
	})
	g.Go(func() error {
		instrs, err := bytecompile.CompileToBytecode(root, vars, exprIdx)
		if err != nil {
			return err
		}
		e, err := bytecode.EncodeProgram(instrs)
		if err != nil {
			return err
		}
		encoded = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return Response{}, nil, err
	}

	return Response{Code: code, Bytecode: encoded}, root, nil
}

// AddVariable removes any prior binding for name, parses content,
// requires the result reduce to a single f64, and binds it.
func AddVariable(name, content string, state *CompilerState) (float64, error) {
	delete(state.Variables, name)

	root, err := astbuilder.Parse(content, state.Functions)
	if err != nil {
		Logger.Printf("warn: %v", err)
		return 0, err
	}

	// Same two-pass note as processAST.
	root, _, err = simplify.Simplify(root, state.Variables)
	if err != nil {
		return 0, err
	}
	_, val, err := simplify.Simplify(root, state.Variables)
	if err != nil {
		return 0, err
	}
	if val == nil {
		Logger.Printf("warn: the variable %s couldn't be evaluated to a value: %s", name, content)
		return 0, fxerrors.Math("the variable must evaluate to a certain value")
	}

	state.Variables[name] = *val
	return *val, nil
}

// AddFunction defines a single-argument user function. name is a
// two-character string: name[0] is the function id, name[1] its
// unknown (must be "x" or "y").
func AddFunction(name, content string, state *CompilerState, exprIdx int) (Response, error) {
	if len(name) < 1 {
		return Response{}, fxerrors.Parse("this function doesn't have a name")
	}
	if len(name) < 2 {
		return Response{}, fxerrors.Parse("this function doesn't have any variables")
	}
	fnName := string(name[0])
	unknown := string(name[1])
	Logger.Printf("%s(%s) = %s", fnName, unknown, content)

	delete(state.Functions, fnName)

	root, err := astbuilder.Parse(content, state.Functions)
	if err != nil {
		Logger.Printf("warn: %v", err)
		return Response{}, err
	}

	hasX, hasY := ast.HasUnknowns(root)
	if !((hasX && unknown == "x") || (hasY && unknown == "y")) {
		return Response{}, fxerrors.Parse("the function %s does not match its unknowns", fnName)
	}

	resp, simplifiedRoot, err := processAST(root, state.Variables, exprIdx)
	if err != nil {
		Logger.Printf("warn: %v", err)
		return Response{}, err
	}
	state.Functions[fnName] = simplifiedRoot

	if resp.Num != nil {
		Logger.Printf("expression %s evaluates to %v", content, *resp.Num)
	} else {
		Logger.Printf("expression %s has been compiled to %s", content, resp.Code)
	}
	return resp, nil
}

// DeleteVariable removes a variable binding, if any.
func DeleteVariable(name string, state *CompilerState) {
	delete(state.Variables, name)
}

// DeleteFunction removes a function binding, if any.
func DeleteFunction(name string, state *CompilerState) {
	delete(state.Functions, name)
}
