package grammar

import "github.com/roach88/layercast/internal/ir"

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Flags ir.FlagSet

	// Rest is the index of the first token swallowed by a STR_R node, or
	// -1 when every token matched its own node.
	Rest int
}

// Resolve walks tokens down the tree, one token per level, and returns the
// flags of every matched node. It is deterministic: the same tokens always
// give the same result.
func (g *Grammar) Resolve(tokens []string) (Resolution, error) {
	res := Resolution{Flags: ir.FlagSet{}, Rest: -1}
	node := g.root
	for i, tok := range tokens {
		next := node.match(tok)
		if next == nil {
			return Resolution{}, &NotRecognizedError{Token: tok, Position: i, Expected: node.expected()}
		}
		if next.HasFlag {
			res.Flags = res.Flags.With(next.Flag)
		}
		if next.Kind == KindStringRest {
			res.Rest = i
			return res, nil
		}
		node = next
	}
	if len(node.Children) > 0 && !node.acceptsRest() {
		return Resolution{}, &TooFewArgumentsError{Expected: node.expected()}
	}
	if node.acceptsRest() {
		if rest := node.child(KindStringRest, ""); rest.HasFlag {
			res.Flags = res.Flags.With(rest.Flag)
		}
		res.Rest = len(tokens)
	}
	return res, nil
}
