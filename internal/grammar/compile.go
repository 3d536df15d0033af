package grammar

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/roach88/layercast/internal/ir"
)

//go:embed default.grammar
var defaultGrammar []byte

// EmbeddedName is the file name reported for the built-in grammar.
const EmbeddedName = "<embedded>"

// Grammar is a compiled command tree. It is immutable and safe for
// concurrent use.
type Grammar struct {
	root   *Node
	source string
}

// Empty returns a grammar that recognizes nothing.
func Empty() *Grammar {
	return &Grammar{root: &Node{Kind: KindRoot}, source: "<empty>"}
}

// Default compiles the built-in grammar.
func Default() *Grammar {
	g, err := Compile(EmbeddedName, bytes.NewReader(defaultGrammar))
	if err != nil {
		panic(fmt.Sprintf("embedded grammar: %v", err))
	}
	return g
}

// DefaultSource returns the text of the built-in grammar.
func DefaultSource() []byte {
	return bytes.Clone(defaultGrammar)
}

// CompileFile reads and compiles a grammar description from disk.
func CompileFile(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Compile(path, f)
}

// Source is the name the grammar was compiled from.
func (g *Grammar) Source() string { return g.source }

// Root returns the unlabeled root node.
func (g *Grammar) Root() *Node { return g.root }

// item is one token of a grammar line after flag markers are attached.
type item struct {
	token   string
	label   string
	flag    ir.Flag
	hasFlag bool
	line    int
}

type line struct {
	num   int
	items []item
}

type compiler struct {
	file   string
	labels map[string][]line
	paths  []line
}

// Compile builds a grammar from a line-oriented description.
func Compile(name string, r io.Reader) (*Grammar, error) {
	c := &compiler{file: name, labels: make(map[string][]line)}
	if err := c.scan(r); err != nil {
		return nil, err
	}

	root := &Node{Kind: KindRoot}
	for _, p := range c.paths {
		expanded, err := c.expand(p.items, nil)
		if err != nil {
			return nil, err
		}
		for _, path := range expanded {
			if err := c.insert(root, path); err != nil {
				return nil, err
			}
		}
	}
	return &Grammar{root: root, source: name}, nil
}

func (c *compiler) errorf(lineNum int, format string, args ...any) error {
	return &CompileError{File: c.file, Line: lineNum, Message: fmt.Sprintf(format, args...)}
}

func (c *compiler) scan(r io.Reader) error {
	sc := bufio.NewScanner(r)
	num := 0
	for sc.Scan() {
		num++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		items, err := c.parseLine(num, strings.Fields(text))
		if err != nil {
			return err
		}
		if head := items[0]; head.label != "" {
			if len(items) == 1 {
				return c.errorf(num, "label [%s] defined with no continuation", head.label)
			}
			c.labels[head.label] = append(c.labels[head.label], line{num: num, items: items[1:]})
			continue
		}
		c.paths = append(c.paths, line{num: num, items: items})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read grammar %s: %w", c.file, err)
	}
	return nil
}

func (c *compiler) parseLine(num int, fields []string) ([]item, error) {
	items := make([]item, 0, len(fields))
	for _, f := range fields {
		switch {
		case isFlagMarker(f):
			if len(items) == 0 || items[len(items)-1].label != "" {
				return nil, c.errorf(num, "flag %s must follow a token", f)
			}
			prev := &items[len(items)-1]
			if prev.hasFlag {
				return nil, c.errorf(num, "token %q has more than one flag", prev.token)
			}
			flag, err := ir.ParseFlag(f[1:])
			if err != nil {
				return nil, c.errorf(num, "invalid flag %s", f)
			}
			prev.flag, prev.hasFlag = flag, true
		case isLabel(f):
			items = append(items, item{label: f[1 : len(f)-1], line: num})
		default:
			if len(items) > 0 && items[len(items)-1].token == placeholderStringRest {
				return nil, c.errorf(num, "%s must be the last token", placeholderStringRest)
			}
			items = append(items, item{token: f, line: num})
		}
	}
	return items, nil
}

// expand replaces label references with each of the label's continuations.
// active holds the labels currently being expanded; meeting one again is a
// cycle.
func (c *compiler) expand(items []item, active []string) ([][]item, error) {
	for i, it := range items {
		if it.label == "" {
			continue
		}
		heads, err := c.expandLabel(it, active)
		if err != nil {
			return nil, err
		}
		tails, err := c.expand(items[i+1:], active)
		if err != nil {
			return nil, err
		}
		prefix := items[:i]
		var out [][]item
		for _, h := range heads {
			for _, t := range tails {
				path := make([]item, 0, len(prefix)+len(h)+len(t))
				path = append(path, prefix...)
				path = append(path, h...)
				path = append(path, t...)
				out = append(out, path)
			}
		}
		return out, nil
	}
	return [][]item{items}, nil
}

func (c *compiler) expandLabel(ref item, active []string) ([][]item, error) {
	for _, a := range active {
		if a == ref.label {
			chain := append(slices.Clone(active), ref.label)
			return nil, c.errorf(ref.line, "label [%s] references itself (%s)",
				ref.label, strings.Join(chain, " -> "))
		}
	}
	conts, ok := c.labels[ref.label]
	if !ok {
		return nil, c.errorf(ref.line, "undefined label [%s]", ref.label)
	}
	active = append(slices.Clip(active), ref.label)

	var out [][]item
	for _, cont := range conts {
		expanded, err := c.expand(cont.items, active)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func (c *compiler) insert(root *Node, path []item) error {
	node := root
	for i, it := range path {
		if node.Kind == KindStringRest {
			return c.errorf(it.line, "%s must be the last token", placeholderStringRest)
		}
		kind := kindOf(it.token)
		literal := ""
		if kind == KindLiteral {
			literal = it.token
		}
		next := node.child(kind, literal)
		if next == nil {
			next = &Node{Kind: kind, Literal: literal}
			node.Children = append(node.Children, next)
		}
		if it.hasFlag {
			if next.HasFlag && next.Flag != it.flag {
				return c.errorf(it.line, "token %q at depth %d has conflicting flags %d and %d",
					it.token, i+1, next.Flag, it.flag)
			}
			next.Flag, next.HasFlag = it.flag, true
		}
		node = next
	}
	return nil
}

func isFlagMarker(token string) bool {
	if len(token) < 2 || token[0] != '/' {
		return false
	}
	for _, r := range token[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLabel(token string) bool {
	return len(token) > 2 && token[0] == '[' && token[len(token)-1] == ']'
}
