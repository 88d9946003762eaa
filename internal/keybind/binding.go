package keybind

import (
	"github.com/dshills/keycmd/internal/input/key"
)

// Binding maps a key sequence to a command.
type Binding struct {
	// Keys is the canonical sequence string, e.g. "Ctrl+K B".
	Keys string

	// Command is the bound command name.
	Command string

	// Param is passed to the command on invocation, e.g. a snippet id.
	Param string

	// Sequence is the parsed form of Keys.
	Sequence *key.Sequence
}

func (b Binding) clone() Binding {
	b.Sequence = b.Sequence.Clone()
	return b
}

// Match describes how a sequence relates to the bound sequences.
type Match int

const (
	// MatchNone means nothing is bound to or below the sequence.
	MatchNone Match = iota

	// MatchPrefix means longer bindings start with the sequence.
	MatchPrefix

	// MatchExact means the sequence is bound.
	MatchExact
)

// String returns the match name.
func (m Match) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchExact:
		return "exact"
	default:
		return "none"
	}
}

// prefixTree indexes bindings chord by chord.
type prefixTree struct {
	root *prefixNode
}

type prefixNode struct {
	children map[string]*prefixNode
	binding  *Binding
}

func newPrefixTree() *prefixTree {
	return &prefixTree{root: newPrefixNode()}
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[string]*prefixNode)}
}

func (t *prefixTree) insert(b *Binding) {
	node := t.root
	for _, event := range b.Sequence.Events {
		chord := event.String()
		child, ok := node.children[chord]
		if !ok {
			child = newPrefixNode()
			node.children[chord] = child
		}
		node = child
	}
	node.binding = b
}

// remove clears the binding at seq and prunes empty nodes.
func (t *prefixTree) remove(seq *key.Sequence) {
	path := make([]*prefixNode, 0, seq.Len()+1)
	chords := make([]string, 0, seq.Len())
	path = append(path, t.root)

	node := t.root
	for _, event := range seq.Events {
		chord := event.String()
		child, ok := node.children[chord]
		if !ok {
			return
		}
		path = append(path, child)
		chords = append(chords, chord)
		node = child
	}
	node.binding = nil

	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		if current.binding != nil || len(current.children) > 0 {
			break
		}
		delete(path[i-1].children, chords[i-1])
	}
}

// find walks to the node for seq and collects the bindings passed on the
// way (strict prefixes of seq).
func (t *prefixTree) find(seq *key.Sequence) (node *prefixNode, prefixes []*Binding) {
	node = t.root
	for i, event := range seq.Events {
		if i > 0 && node.binding != nil {
			prefixes = append(prefixes, node.binding)
		}
		child, ok := node.children[event.String()]
		if !ok {
			return nil, prefixes
		}
		node = child
	}
	return node, prefixes
}

// below collects every binding strictly under node.
func (n *prefixNode) below(out []*Binding) []*Binding {
	for _, child := range n.children {
		if child.binding != nil {
			out = append(out, child.binding)
		}
		out = child.below(out)
	}
	return out
}
