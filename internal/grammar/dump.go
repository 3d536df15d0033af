package grammar

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the tree one node per line, children indented under their
// parent, with flags shown as "/N".
func (g *Grammar) Dump(w io.Writer) error {
	for _, c := range g.root.Children {
		if err := dumpNode(w, c, 0); err != nil {
			return err
		}
	}
	return nil
}

func dumpNode(w io.Writer, n *Node, depth int) error {
	text := n.Label()
	if n.HasFlag {
		text += fmt.Sprintf(" /%d", n.Flag)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), text); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := dumpNode(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes below the root.
func (g *Grammar) Count() int {
	var walk func(*Node) int
	walk = func(n *Node) int {
		total := len(n.Children)
		for _, c := range n.Children {
			total += walk(c)
		}
		return total
	}
	return walk(g.root)
}
