// cmd/fxc/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"fxc/internal/astbuilder"
	"fxc/internal/bytecode"
	"fxc/internal/bytecompile"
	"fxc/internal/compilerstate"
	"fxc/internal/devtools"
	fxerrors "fxc/internal/errors"
	"fxc/internal/repl"
	"fxc/internal/simplify"
	"fxc/internal/store"
)

const VERSION = "0.1.0"

// commandAliases mirrors cmd/sentra/main.go's single-letter shortcuts.
var commandAliases = map[string]string{
	"c": "compile",
	"i": "repl",
	"t": "tree",
	"v": "vars",
	"s": "serve",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	args = args[1:]

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("fxc %s\n", VERSION)
	case "compile":
		runCompile(args)
	case "repl":
		runRepl(args)
	case "tree":
		runTree(args)
	case "vars":
		runVars(args)
	case "serve":
		runServe(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

// flags holds the three CLI flags the ambient stack calls out, parsed
// manually off os.Args the way cmd/sentra/main.go does (no flag package).
type flags struct {
	exprIdx int
	out     string
	db      string
	rest    []string
}

func parseFlags(args []string) flags {
	f := flags{exprIdx: 0}
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--expr-idx" && i+1 < len(args):
			n, err := strconv.Atoi(args[i+1])
			if err == nil {
				f.exprIdx = n
			}
			i++
		case args[i] == "--out" && i+1 < len(args):
			f.out = args[i+1]
			i++
		case args[i] == "--db" && i+1 < len(args):
			f.db = args[i+1]
			i++
		default:
			f.rest = append(f.rest, args[i])
		}
	}
	return f
}

func runCompile(args []string) {
	f := parseFlags(args)
	if len(f.rest) == 0 {
		log.Fatal("compile requires an equation, e.g. fxc compile 'y=x^2'")
	}
	eq := strings.Join(f.rest, " ")

	state := compilerstate.New()
	loadSession(state, f.db)

	resp, err := compilerstate.Process(eq, state, f.exprIdx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var output string
	if resp.Num != nil {
		output = fmt.Sprintf("%v", *resp.Num)
	} else {
		output = resp.Code
		fmt.Printf("compiled to %s bytecode instructions (trace %s)\n",
			humanize.Comma(int64(len(resp.Bytecode))), resp.TraceID)
	}

	if f.out != "" {
		if err := os.WriteFile(f.out, []byte(output), 0644); err != nil {
			log.Fatalf("couldn't write %s: %v", f.out, err)
		}
		return
	}
	fmt.Println(output)
}

func runRepl(args []string) {
	f := parseFlags(args)
	repl.Start(f.db)
}

func runTree(args []string) {
	f := parseFlags(args)
	bytecodeMode := false
	var rest []string
	for _, a := range f.rest {
		if a == "--bytecode" {
			bytecodeMode = true
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) == 0 {
		log.Fatal("tree requires an equation, e.g. fxc tree 'y=x^2'")
	}
	eq := strings.Join(rest, " ")

	state := compilerstate.New()
	root, err := astbuilder.Parse(eq, state.Functions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	root, _, err = simplify.Simplify(root, state.Variables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if !bytecodeMode {
		devtools.WriteTree(os.Stdout, root)
		return
	}

	instrs, err := bytecompile.CompileToBytecode(root, state.Variables, f.exprIdx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	program := bytecode.NewProgram()
	program.Extend(instrs)
	devtools.WriteBytecode(os.Stdout, program)
}

func runVars(args []string) {
	f := parseFlags(args)
	state := compilerstate.New()
	loadSession(state, f.db)

	if len(f.rest) == 0 {
		for name, v := range state.Variables {
			fmt.Printf("%s = %v\n", name, v)
		}
		for name := range state.Functions {
			fmt.Printf("%s(...) [function]\n", name)
		}
		return
	}

	if f.rest[0] == "delete" && len(f.rest) > 1 {
		name := f.rest[1]
		compilerstate.DeleteVariable(name, state)
		compilerstate.DeleteFunction(name, state)
		deleteSessionBinding(f.db, name)
		return
	}

	assignment := strings.Join(f.rest, " ")
	parts := strings.SplitN(assignment, "=", 2)
	if len(parts) != 2 {
		log.Fatal("expected vars <name>=<content> or vars delete <name>")
	}
	name := strings.TrimSpace(parts[0])
	content := strings.TrimSpace(parts[1])

	if len(name) == 2 {
		resp, err := compilerstate.AddFunction(name, content, state, f.exprIdx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		saveSessionBinding(f.db, store.Binding{Name: name, Content: content, IsFunc: true})
		if resp.Num != nil {
			fmt.Printf("%s = %v\n", name, *resp.Num)
		} else {
			fmt.Printf("%s compiled\n", name)
		}
		return
	}

	val, err := compilerstate.AddVariable(name, content, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	saveSessionBinding(f.db, store.Binding{Name: name, Content: content, IsFunc: false})
	fmt.Printf("%s = %v\n", name, val)
}

// serveRequest/serveResponse form the JSON-lines protocol runServe
// speaks over stdin/stdout: the stand-in for the Tauri IPC boundary the
// original implementation used between its WebView frontend and its
// Rust compiler core. encoding/json is stdlib because nothing in the
// retrieval pack carries a JSON library worth pulling in for a handful
// of struct tags.
type serveRequest struct {
	Op      string `json:"op"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	ExprIdx int    `json:"expr_idx,omitempty"`
}

type serveResponse struct {
	Code     string            `json:"code,omitempty"`
	Bytecode []bytecode.Encoded `json:"bytecode,omitempty"`
	Num      *float64          `json:"num,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func runServe(args []string) {
	f := parseFlags(args)
	state := compilerstate.New()
	loadSession(state, f.db)

	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var req serveRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(serveResponse{Error: err.Error()})
			continue
		}
		enc.Encode(handleServeRequest(req, state, f.db))
	}
}

func handleServeRequest(req serveRequest, state *compilerstate.CompilerState, dbFile string) serveResponse {
	switch req.Op {
	case "process":
		resp, err := compilerstate.Process(req.Content, state, req.ExprIdx)
		if err != nil {
			return serveResponse{Error: err.Error()}
		}
		return serveResponse{Code: resp.Code, Bytecode: resp.Bytecode, Num: resp.Num, TraceID: resp.TraceID}
	case "add_variable":
		v, err := compilerstate.AddVariable(req.Name, req.Content, state)
		if err != nil {
			return serveResponse{Error: err.Error()}
		}
		saveSessionBinding(dbFile, store.Binding{Name: req.Name, Content: req.Content, IsFunc: false})
		return serveResponse{Num: &v}
	case "add_function":
		resp, err := compilerstate.AddFunction(req.Name, req.Content, state, req.ExprIdx)
		if err != nil {
			return serveResponse{Error: err.Error()}
		}
		saveSessionBinding(dbFile, store.Binding{Name: req.Name, Content: req.Content, IsFunc: true})
		return serveResponse{Code: resp.Code, Bytecode: resp.Bytecode, Num: resp.Num, TraceID: resp.TraceID}
	case "delete_variable":
		compilerstate.DeleteVariable(req.Name, state)
		deleteSessionBinding(dbFile, req.Name)
		return serveResponse{}
	case "delete_function":
		compilerstate.DeleteFunction(req.Name, state)
		deleteSessionBinding(dbFile, req.Name)
		return serveResponse{}
	default:
		return serveResponse{Error: fxerrors.Parse("unknown op %q", req.Op).Error()}
	}
}

func loadSession(state *compilerstate.CompilerState, dbFile string) {
	if dbFile == "" {
		return
	}
	s, err := store.Open(dbFile)
	if err != nil {
		log.Fatalf("couldn't open session db: %v", err)
	}
	defer s.Close()

	bindings, err := s.Load(context.Background(), "default")
	if err != nil {
		log.Fatalf("couldn't load session: %v", err)
	}
	for _, b := range bindings {
		if b.IsFunc {
			if _, err := compilerstate.AddFunction(b.Name, b.Content, state, 0); err != nil {
				log.Printf("warn: couldn't restore function %s: %v", b.Name, err)
			}
		} else {
			if _, err := compilerstate.AddVariable(b.Name, b.Content, state); err != nil {
				log.Printf("warn: couldn't restore variable %s: %v", b.Name, err)
			}
		}
	}
}

func saveSessionBinding(dbFile string, b store.Binding) {
	if dbFile == "" {
		return
	}
	s, err := store.Open(dbFile)
	if err != nil {
		log.Printf("warn: couldn't open session db: %v", err)
		return
	}
	defer s.Close()

	if err := s.Save(context.Background(), "default", b); err != nil {
		log.Printf("warn: %v", err)
	}
}

func deleteSessionBinding(dbFile, name string) {
	if dbFile == "" {
		return
	}
	s, err := store.Open(dbFile)
	if err != nil {
		log.Printf("warn: couldn't open session db: %v", err)
		return
	}
	defer s.Close()

	if err := s.Delete(context.Background(), "default", name); err != nil {
		log.Printf("warn: %v", err)
	}
}

func showUsage() {
	fmt.Println("fxc - LaTeX implicit-curve compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  fxc compile <equation>        Compile an equation to shader text    (alias: c)")
	fmt.Println("  fxc repl                      Start interactive REPL                (alias: i)")
	fmt.Println("  fxc tree <equation>           Print the simplified AST              (alias: t)")
	fmt.Println("  fxc tree --bytecode <eq>      Print the bytecode disassembly")
	fmt.Println("  fxc vars [<name>=<content>]   List, add, or update a binding        (alias: v)")
	fmt.Println("  fxc vars delete <name>        Remove a binding")
	fmt.Println("  fxc serve                     Speak the JSON-lines protocol on stdio (alias: s)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --expr-idx <n>   expression index for the shader/bytecode backends (default 0)")
	fmt.Println("  --out <file>     write compile output to a file instead of stdout")
	fmt.Println("  --db <file>      persist/restore variable and function bindings via sqlite")
	fmt.Println()
	fmt.Println("  fxc --version")
	fmt.Println("  fxc help")
}
