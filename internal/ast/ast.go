// Package ast defines the implicit-function expression tree shared by the
// simplifier, differentiator and both emission backends. Every node
// exclusively owns its children (no sharing); differentiation and
// substitution always produce fresh subtrees via Clone.
package ast

// UnaryOp enumerates the unary operators of spec.md §3.
type UnaryOp string

const (
	Minus UnaryOp = "Minus"
	Sin   UnaryOp = "Sin"
	Cos   UnaryOp = "Cos"
	Tan   UnaryOp = "Tan"
	Floor UnaryOp = "Floor"
	Abs   UnaryOp = "Abs"
	Ceil  UnaryOp = "Ceil"
	Log   UnaryOp = "Log"
	Ln    UnaryOp = "Ln"
	Sqrt  UnaryOp = "Sqrt"
	Fact  UnaryOp = "Fact"
)

// BinaryOp enumerates the binary operators of spec.md §3.
type BinaryOp string

const (
	Division BinaryOp = "Division"
	Power    BinaryOp = "Power"
	Equal    BinaryOp = "Equal"
)

// NAryOp enumerates the associative n-ary operators of spec.md §3.
type NAryOp string

const (
	Add      NAryOp = "Add"
	Multiply NAryOp = "Multiply"
)

// Node is the tagged-variant expression node. Concrete cases are
// *Constant, *Variable, *Unknown, *UnaryNode, *BinaryNode, *NAryNode.
// Accept dispatches to a Visitor the way internal/parser/ast.go's
// Expr.Accept does in the teacher repo; unlike the teacher, each Visit
// method here can fail (a node can reference an unbound variable, an
// unimplemented operator, and so on), so Accept returns an error too.
type Node interface {
	Accept(v Visitor) (interface{}, error)
	Clone() Node
}

// Visitor is the double-dispatch interface Accept calls into. The
// shader-text emitter, the bytecode emitter and the simplifier do not
// implement it; they walk the tree with type switches over Node.
type Visitor interface {
	VisitConstant(n *Constant) (interface{}, error)
	VisitVariable(n *Variable) (interface{}, error)
	VisitUnknown(n *Unknown) (interface{}, error)
	VisitUnary(n *UnaryNode) (interface{}, error)
	VisitBinary(n *BinaryNode) (interface{}, error)
	VisitNAry(n *NAryNode) (interface{}, error)
}

// Constant is a literal numeric value.
type Constant struct {
	Value float64
}

func (n *Constant) Accept(v Visitor) (interface{}, error) { return v.VisitConstant(n) }
func (n *Constant) Clone() Node                           { return &Constant{Value: n.Value} }

// Variable is a named scalar bound via CompilerState.Variables.
type Variable struct {
	Name string
}

func (n *Variable) Accept(v Visitor) (interface{}, error) { return v.VisitVariable(n) }
func (n *Variable) Clone() Node                           { return &Variable{Name: n.Name} }

// Unknown is a free variable, always "x" or "y".
type Unknown struct {
	Name string
}

func (n *Unknown) Accept(v Visitor) (interface{}, error) { return v.VisitUnknown(n) }
func (n *Unknown) Clone() Node                           { return &Unknown{Name: n.Name} }

// UnaryNode applies Op to Child. Child is nil only mid-construction;
// any node reached by the simplifier, differentiator or a backend MUST
// have it populated, per spec.md §3's ownership invariant.
type UnaryNode struct {
	Op    UnaryOp
	Child Node
}

func (n *UnaryNode) Accept(v Visitor) (interface{}, error) { return v.VisitUnary(n) }
func (n *UnaryNode) Clone() Node {
	var child Node
	if n.Child != nil {
		child = n.Child.Clone()
	}
	return &UnaryNode{Op: n.Op, Child: child}
}

// BinaryNode applies Op to Lhs and Rhs.
type BinaryNode struct {
	Op  BinaryOp
	Lhs Node
	Rhs Node
}

func (n *BinaryNode) Accept(v Visitor) (interface{}, error) { return v.VisitBinary(n) }
func (n *BinaryNode) Clone() Node {
	var lhs, rhs Node
	if n.Lhs != nil {
		lhs = n.Lhs.Clone()
	}
	if n.Rhs != nil {
		rhs = n.Rhs.Clone()
	}
	return &BinaryNode{Op: n.Op, Lhs: lhs, Rhs: rhs}
}

// NAryNode applies the associative Op across Children, which MUST number
// at least two once the tree is fully built (spec.md §3).
type NAryNode struct {
	Op       NAryOp
	Children []Node
}

func (n *NAryNode) Accept(v Visitor) (interface{}, error) { return v.VisitNAry(n) }
func (n *NAryNode) Clone() Node {
	children := make([]Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.Clone()
	}
	return &NAryNode{Op: n.Op, Children: children}
}

// HasUnknowns reports which of x, y appear anywhere in the tree
// (spec.md §4.7's ast_unknowns).
func HasUnknowns(n Node) (hasX, hasY bool) {
	switch t := n.(type) {
	case *Unknown:
		switch t.Name {
		case "x":
			return true, false
		case "y":
			return false, true
		default:
			return false, false
		}
	case *UnaryNode:
		if t.Child == nil {
			return false, false
		}
		return HasUnknowns(t.Child)
	case *BinaryNode:
		var x, y bool
		if t.Lhs != nil {
			lx, ly := HasUnknowns(t.Lhs)
			x, y = x || lx, y || ly
		}
		if t.Rhs != nil {
			rx, ry := HasUnknowns(t.Rhs)
			x, y = x || rx, y || ry
		}
		return x, y
	case *NAryNode:
		var x, y bool
		for _, c := range t.Children {
			cx, cy := HasUnknowns(c)
			x, y = x || cx, y || cy
		}
		return x, y
	default:
		return false, false
	}
}

// Substitute replaces every Unknown node in root (matching the
// function-definition placeholder, i.e. any Unknown at all, since a
// user function body has exactly one free unknown) with a clone of arg.
// Used when inlining a user-defined function call (spec.md §4.4).
func Substitute(root Node, arg Node) Node {
	switch t := root.(type) {
	case *Unknown:
		return arg.Clone()
	case *UnaryNode:
		var child Node
		if t.Child != nil {
			child = Substitute(t.Child, arg)
		}
		return &UnaryNode{Op: t.Op, Child: child}
	case *BinaryNode:
		var lhs, rhs Node
		if t.Lhs != nil {
			lhs = Substitute(t.Lhs, arg)
		}
		if t.Rhs != nil {
			rhs = Substitute(t.Rhs, arg)
		}
		return &BinaryNode{Op: t.Op, Lhs: lhs, Rhs: rhs}
	case *NAryNode:
		children := make([]Node, len(t.Children))
		for i, c := range t.Children {
			children[i] = Substitute(c, arg)
		}
		return &NAryNode{Op: t.Op, Children: children}
	default:
		return root.Clone()
	}
}
