// Package repl implements the interactive `fxc repl` subcommand: a
// bufio.Scanner read-eval-print loop over stdin, the same shape
// cmd/sentra's own internal/repl.Start used for its own scripting
// language before this rework. Each line is either a plain equation
// ("y=x^2"), a variable or function binding ("a=3", "fx=sin x"), or
// one of a handful of dot-commands ".vars", ".del <name>", ".exit".
package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"fxc/internal/compilerstate"
	"fxc/internal/store"
)

// Start runs the loop until stdin closes or the user types .exit. When
// dbFile is non-empty, bindings are restored from it on entry and every
// successful definition is persisted back to it.
func Start(dbFile string) {
	fmt.Println("fxc REPL | type .exit to quit, .help for commands")
	scanner := bufio.NewScanner(os.Stdin)

	state := compilerstate.New()
	var sess *store.Store
	if dbFile != "" {
		s, err := store.Open(dbFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warn: couldn't open %s: %v\n", dbFile, err)
		} else {
			sess = s
			defer sess.Close()
			restore(sess, state)
		}
	}

	exprIdx := 0
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ".exit":
			return
		case line == ".help":
			printHelp()
		case line == ".vars":
			printVars(state)
		case strings.HasPrefix(line, ".del "):
			name := strings.TrimSpace(strings.TrimPrefix(line, ".del "))
			compilerstate.DeleteVariable(name, state)
			compilerstate.DeleteFunction(name, state)
			if sess != nil {
				sess.Delete(context.Background(), "default", name)
			}
		default:
			handleLine(line, state, sess, exprIdx)
			exprIdx++
		}
	}
}

func handleLine(line string, state *compilerstate.CompilerState, sess *store.Store, exprIdx int) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) == 2 && isBindingName(strings.TrimSpace(parts[0])) {
		name := strings.TrimSpace(parts[0])
		content := strings.TrimSpace(parts[1])

		if len(name) == 2 {
			resp, err := compilerstate.AddFunction(name, content, state, exprIdx)
			if err != nil {
				fmt.Println(err)
				return
			}
			persist(sess, store.Binding{Name: name, Content: content, IsFunc: true})
			printResponse(resp)
			return
		}

		val, err := compilerstate.AddVariable(name, content, state)
		if err != nil {
			fmt.Println(err)
			return
		}
		persist(sess, store.Binding{Name: name, Content: content, IsFunc: false})
		fmt.Printf("%s = %v\n", name, val)
		return
	}

	resp, err := compilerstate.Process(line, state, exprIdx)
	if err != nil {
		fmt.Println(err)
		return
	}
	printResponse(resp)
}

func printResponse(resp compilerstate.Response) {
	if resp.Num != nil {
		fmt.Println(*resp.Num)
		return
	}
	fmt.Println(resp.Code)
}

// isBindingName reports whether the left side of an "=" reads like a
// binding target (one bare letter, or two letters for a function with
// its unknown) rather than part of a larger equation like "y=x^2".
func isBindingName(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return s != "x" && s != "y"
}

func printVars(state *compilerstate.CompilerState) {
	for name, v := range state.Variables {
		fmt.Printf("%s = %v\n", name, v)
	}
	for name := range state.Functions {
		fmt.Printf("%s(...) [function]\n", name)
	}
}

func printHelp() {
	fmt.Println("  <equation>        compile or evaluate, e.g. y=x^2, x^2+y^2-1")
	fmt.Println("  a=<content>       bind a variable")
	fmt.Println("  fx=<content>      bind a one-argument function (f is the name, x its unknown)")
	fmt.Println("  .vars             list current bindings")
	fmt.Println("  .del <name>       remove a binding")
	fmt.Println("  .exit             quit")
}

func persist(sess *store.Store, b store.Binding) {
	if sess == nil {
		return
	}
	if err := sess.Save(context.Background(), "default", b); err != nil {
		fmt.Fprintf(os.Stderr, "warn: couldn't save %s: %v\n", b.Name, err)
	}
}

func restore(sess *store.Store, state *compilerstate.CompilerState) {
	bindings, err := sess.Load(context.Background(), "default")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: couldn't load session: %v\n", err)
		return
	}
	for _, b := range bindings {
		if b.IsFunc {
			if _, err := compilerstate.AddFunction(b.Name, b.Content, state, 0); err != nil {
				fmt.Fprintf(os.Stderr, "warn: couldn't restore %s: %v\n", b.Name, err)
			}
		} else {
			if _, err := compilerstate.AddVariable(b.Name, b.Content, state); err != nil {
				fmt.Fprintf(os.Stderr, "warn: couldn't restore %s: %v\n", b.Name, err)
			}
		}
	}
}
