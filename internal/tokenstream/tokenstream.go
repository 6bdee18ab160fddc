// Package tokenstream implements spec.md §4.2, the TokenStream Adapter:
// the pre-tokenization string rewrites, the call into internal/lexer,
// and the recursive post-filtering of the resulting token tree.
package tokenstream

import (
	"strings"

	fxerrors "fxc/internal/errors"
	"fxc/internal/lexer"
)

// Build runs the full adapter pipeline over raw LaTeX source and returns
// the flat, filtered token slice build_tree consumes. Groups are left as
// lexer.KindGroup tokens whose Children have themselves been filtered.
func Build(source string) ([]lexer.Token, error) {
	rewritten, err := sanitize(source)
	if err != nil {
		return nil, err
	}

	scanner := lexer.New(rewritten)
	tokens, err := scanner.Tokenize()
	if err != nil {
		return nil, err
	}

	filtered := filter(tokens)
	return explode(filtered), nil
}

// sanitize applies the three pre-tokenization rewrites of spec.md §4.2,
// in order: '^' -> '?', "operatorname{NAME}" -> "NAME", and
// "\left(" / "\right)" -> "{" / "}".
func sanitize(eq string) (string, error) {
	eq = strings.ReplaceAll(eq, "^", "?")

	for {
		i := strings.Index(eq, "operatorname{")
		if i < 0 {
			break
		}
		rest := eq[i+len("operatorname{"):]
		j := strings.IndexByte(rest, '}')
		if j < 0 {
			return "", fxerrors.Parse("Missing '}'")
		}
		name := rest[:j]
		eq = eq[:i] + name + rest[j+1:]
	}

	eq = strings.ReplaceAll(eq, `\left(`, "{")
	eq = strings.ReplaceAll(eq, `\right)`, "}")

	return eq, nil
}

// filter drops whitespace tokens and the \cdot multiplication macro,
// descending into groups so nested structure is filtered the same way.
func filter(tokens []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == lexer.KindWhitespace {
			continue
		}
		if t.Kind == lexer.KindMacro && t.Text == "cdot" {
			continue
		}
		if t.Kind == lexer.KindGroup {
			t.Children = filter(t.Children)
		}
		out = append(out, t)
	}
	return out
}

// explode splits every multi-character CharTokens token into one
// single-character CharTokens token per rune, so that an identifier run
// like "ab" becomes two adjacent single-letter tokens that the AST
// builder then multiplies together (spec.md §4.2).
func explode(tokens []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == lexer.KindGroup {
			t.Children = explode(t.Children)
			out = append(out, t)
			continue
		}
		if t.Kind == lexer.KindCharTokens && len([]rune(t.Text)) > 1 {
			for _, r := range t.Text {
				out = append(out, lexer.Token{Kind: lexer.KindCharTokens, Text: string(r)})
			}
			continue
		}
		out = append(out, t)
	}
	return out
}
