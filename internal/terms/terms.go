// Package terms implements spec.md §4.3, the Term Extractor: it walks a
// flat token slice and partitions it into additive terms tagged add/subtract.
package terms

import "fxc/internal/lexer"

// Term is an ephemeral record describing one additive term: the half-open
// range [Start, End) into the token slice it was extracted from, and
// whether the punctuation preceding it was a '-'.
type Term struct {
	Start, End int
	Subtract   bool
}

// Extract partitions tokens into terms at every top-level '+'/'-'
// punctuation token. The implied leading '+' before position 0 produces
// the first term; empty ranges are discarded. Terms are returned in
// reverse source order, matching the teacher-grounded original's
// scan-from-the-right construction (internal/parser/ast.go's Term
// record is the structural analogue in the teacher repo); callers that
// want source order should iterate the result backwards.
func Extract(tokens []lexer.Token) []Term {
	type op struct {
		index    int
		subtract bool
	}
	var ops []op
	for i, t := range tokens {
		if t.Kind == lexer.KindPunct && (t.Text == "+" || t.Text == "-") {
			ops = append(ops, op{index: i, subtract: t.Text == "-"})
		}
	}

	var result []Term
	last := len(tokens)
	for k := len(ops) - 1; k >= 0; k-- {
		start := ops[k].index + 1
		end := last
		if start < end {
			result = append(result, Term{Start: start, End: end, Subtract: ops[k].subtract})
		}
		last = ops[k].index
	}
	if 0 < last {
		result = append(result, Term{Start: 0, End: last, Subtract: false})
	}
	return result
}
