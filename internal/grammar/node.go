package grammar

import (
	"math"
	"strconv"

	"github.com/roach88/layercast/internal/ir"
)

// Kind is the match class of a node.
type Kind int

const (
	KindRoot Kind = iota
	KindLiteral
	KindInt
	KindFloat
	KindString
	KindStringRest
)

// Placeholder tokens in a grammar description.
const (
	placeholderInt        = "INT"
	placeholderFloat      = "FLT"
	placeholderString     = "STR"
	placeholderStringRest = "STR_R"
)

func kindOf(token string) Kind {
	switch token {
	case placeholderInt:
		return KindInt
	case placeholderFloat:
		return KindFloat
	case placeholderString:
		return KindString
	case placeholderStringRest:
		return KindStringRest
	default:
		return KindLiteral
	}
}

// Node is one level of the compiled command tree.
// Nodes are immutable once Compile returns.
type Node struct {
	Kind     Kind
	Literal  string
	Flag     ir.Flag
	HasFlag  bool
	Children []*Node
}

// Label is how the node is shown to operators: literals verbatim,
// placeholders by the class of argument they expect.
func (n *Node) Label() string {
	switch n.Kind {
	case KindLiteral:
		return n.Literal
	case KindInt:
		return "<int>"
	case KindFloat:
		return "<float>"
	case KindString:
		return "<string>"
	case KindStringRest:
		return "<text...>"
	default:
		return ""
	}
}

func (n *Node) child(kind Kind, literal string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind && c.Literal == literal {
			return c
		}
	}
	return nil
}

// match picks the child that accepts token, honouring placeholder
// precedence.
func (n *Node) match(token string) *Node {
	for _, c := range n.Children {
		if c.Kind == KindLiteral && c.Literal == token {
			return c
		}
	}
	var byKind [KindStringRest + 1]*Node
	for _, c := range n.Children {
		if c.Kind != KindLiteral {
			byKind[c.Kind] = c
		}
	}
	if c := byKind[KindInt]; c != nil && isInt(token) {
		return c
	}
	if c := byKind[KindFloat]; c != nil && isFloat(token) {
		return c
	}
	if c := byKind[KindString]; c != nil {
		return c
	}
	return byKind[KindStringRest]
}

func (n *Node) acceptsRest() bool {
	return n.child(KindStringRest, "") != nil
}

func (n *Node) expected() []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Label()
	}
	return out
}

func isInt(token string) bool {
	_, err := strconv.Atoi(token)
	return err == nil
}

func isFloat(token string) bool {
	f, err := strconv.ParseFloat(token, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
