// Package astbuilder implements spec.md §4.4: the mutually recursive
// descent parser (Parse -> BuildTree -> BuildTerm -> buildFactor) that
// turns a filtered token stream into an ast.Node.
package astbuilder

import (
	"strconv"
	"strings"

	"fxc/internal/ast"
	"fxc/internal/catalog"
	"fxc/internal/diff"
	fxerrors "fxc/internal/errors"
	"fxc/internal/lexer"
	"fxc/internal/terms"
	"fxc/internal/tokenstream"
)

// Functions is the user-defined function table: single-argument bodies
// keyed by function id, stored with their Unknown placeholder intact so
// buildFactor can substitute a fresh argument on each call.
type Functions map[string]ast.Node

// Parse is the top-level entry point. Equality is handled here, on the
// raw source string, before any tokenization happens (spec.md §4.4):
// a bare '=' splits the equation into two independently-parsed sides.
func Parse(source string, funcs Functions) (ast.Node, error) {
	if strings.Contains(source, "=") {
		parts := strings.Split(source, "=")
		if len(parts) > 2 {
			return nil, fxerrors.Math("there can't be more than one equal sign")
		}
		lhs, err := Parse(parts[0], funcs)
		if err != nil {
			return nil, err
		}
		rhs, err := Parse(parts[1], funcs)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryNode{Op: ast.Equal, Lhs: lhs, Rhs: rhs}, nil
	}

	tokens, err := tokenstream.Build(source)
	if err != nil {
		return nil, err
	}
	return BuildTree(tokens, funcs)
}

// BuildTree is the sum-of-terms layer.
func BuildTree(tokens []lexer.Token, funcs Functions) (ast.Node, error) {
	extracted := terms.Extract(tokens)
	if len(extracted) == 0 {
		return nil, fxerrors.Empty
	}

	// Extract returns terms in reverse source order; walk backwards to
	// rebuild them in source order, as the teacher-grounded original does.
	termNodes := make([]ast.Node, 0, len(extracted))
	for i := len(extracted) - 1; i >= 0; i-- {
		t := extracted[i]
		sub, err := BuildTerm(tokens[t.Start:t.End], funcs)
		if err != nil {
			return nil, err
		}
		if t.Subtract {
			sub = &ast.UnaryNode{Op: ast.Minus, Child: sub}
		}
		termNodes = append(termNodes, sub)
	}

	if len(termNodes) == 1 {
		return termNodes[0], nil
	}
	return &ast.NAryNode{Op: ast.Add, Children: termNodes}, nil
}

// BuildTerm is the product-of-factors layer.
func BuildTerm(tokens []lexer.Token, funcs Functions) (ast.Node, error) {
	c := &cursor{tokens: tokens}
	var factors []ast.Node
	for {
		factor, err := buildFactor(c, funcs)
		if err != nil {
			if fxerrors.IsEmpty(err) {
				break
			}
			return nil, err
		}
		factors = append(factors, factor)
	}

	switch len(factors) {
	case 0:
		return nil, fxerrors.Empty
	case 1:
		return factors[0], nil
	default:
		return &ast.NAryNode{Op: ast.Multiply, Children: factors}, nil
	}
}

// cursor is a simple lookahead-1 iterator over a token slice, used only
// within a single BuildTerm call so buildFactor calls can share position.
type cursor struct {
	tokens []lexer.Token
	pos    int
}

func (c *cursor) next() (lexer.Token, bool) {
	if c.pos >= len(c.tokens) {
		return lexer.Token{}, false
	}
	t := c.tokens[c.pos]
	c.pos++
	return t, true
}

func (c *cursor) peek() (lexer.Token, bool) {
	if c.pos >= len(c.tokens) {
		return lexer.Token{}, false
	}
	return c.tokens[c.pos], true
}

// buildFactor peels one atom off the front of c, then optionally absorbs
// one trailing infix/postfix operator (spec.md §4.4).
func buildFactor(c *cursor, funcs Functions) (ast.Node, error) {
	tok, ok := c.next()
	if !ok {
		return nil, fxerrors.Empty
	}

	node, err := buildAtom(tok, c, funcs)
	if err != nil {
		return nil, err
	}

	peeked, ok := c.peek()
	if !ok || peeked.Kind != lexer.KindPunct {
		return node, nil
	}
	c.next()

	entry, err := catalog.Lookup(peeked.Text)
	if err != nil {
		return nil, err
	}
	switch entry.Kind {
	case catalog.KindUnary:
		return &ast.UnaryNode{Op: entry.Unary, Child: node}, nil
	case catalog.KindBinary:
		rhs, err := buildFactor(c, funcs)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryNode{Op: entry.Binary, Lhs: node, Rhs: rhs}, nil
	default:
		return nil, fxerrors.Parse("%s isn't expected here in a factor after a symbol", peeked.Text)
	}
}

func buildAtom(tok lexer.Token, c *cursor, funcs Functions) (ast.Node, error) {
	switch tok.Kind {
	case lexer.KindGroup:
		return BuildTree(tok.Children, funcs)

	case lexer.KindNumber:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, fxerrors.Parse("couldn't parse number %s", tok.Text)
		}
		return &ast.Constant{Value: v}, nil

	case lexer.KindMacro:
		entry, err := catalog.Lookup(tok.Text)
		if err != nil {
			return nil, err
		}
		switch entry.Kind {
		case catalog.KindConstant:
			return &ast.Constant{Value: entry.Constant}, nil
		case catalog.KindUnary:
			child, err := buildFactor(c, funcs)
			if err != nil {
				return nil, err
			}
			return &ast.UnaryNode{Op: entry.Unary, Child: child}, nil
		case catalog.KindBinary:
			lhs, err := buildFactor(c, funcs)
			if err != nil {
				return nil, err
			}
			rhs, err := buildFactor(c, funcs)
			if err != nil {
				return nil, err
			}
			return &ast.BinaryNode{Op: entry.Binary, Lhs: lhs, Rhs: rhs}, nil
		default:
			return nil, fxerrors.Parse("this doesn't make sense inside a factor: %s", tok.Text)
		}

	case lexer.KindCharTokens:
		name := tok.Text
		switch {
		case name == "e":
			return &ast.Constant{Value: eulerE}, nil
		case name == "x" || name == "y":
			return &ast.Unknown{Name: name}, nil
		default:
			if body, ok := funcs[name]; ok {
				level := 0
				for {
					p, ok := c.peek()
					if ok && p.Kind == lexer.KindCharTokens && p.Text == "'" {
						c.next()
						level++
						continue
					}
					break
				}

				arg, err := buildFactor(c, funcs)
				if err != nil {
					return nil, err
				}

				derived := body.Clone()
				for i := 0; i < level; i++ {
					derived, err = diff.Differentiate(derived)
					if err != nil {
						return nil, err
					}
				}

				return ast.Substitute(derived, arg), nil
			}
			return &ast.Variable{Name: name}, nil
		}

	default:
		return nil, fxerrors.Parse("this shouldn't be in a factor: %v", tok)
	}
}

const eulerE = 2.718281828459045
