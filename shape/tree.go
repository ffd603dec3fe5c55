// Package shape infers the type shape of a value tree.
//
// A Tree is an arena of type nodes. Every record, tuple, option and
// sequence position in the source value gets exactly one node, and every
// literal produced while building the tree points back at the node it was
// checked against, so declarations and literals always agree.
//
// Names are not stored. A node's name is derived from its position when
// asked for: the root name followed by one `__key` segment per record field
// and one `__index` segment per tuple slot on the way down. Option and
// sequence edges add nothing.
package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/markgen/value"
)

// NodeID indexes a node in a Tree.
type NodeID int

// NoNode marks a child position that has not been reached yet.
const NoNode NodeID = -1

// EdgeKind is how a node is reached from its parent.
type EdgeKind uint8

const (
	EdgeRoot  EdgeKind = iota
	EdgeField          // record field, named by Key
	EdgeSlot           // tuple slot, named by Index
	EdgeElem           // array or list element
	EdgeSome           // option payload
)

// Node is one type position.
type Node struct {
	Kind   value.Kind
	Parent NodeID
	Edge   EdgeKind
	Key    string
	Index  int

	// Children holds record fields (aligned with Keys), tuple slots, or the
	// single element/payload of a sequence/option. An option built from
	// None and an empty sequence have no children: their payload is unit.
	Children []NodeID
	Keys     []string

	// Length is the fixed length of an array.
	Length int
}

// Elem returns the element or payload node, or NoNode for an empty
// sequence or a None option.
func (n Node) Elem() NodeID {
	if len(n.Children) == 0 {
		return NoNode
	}
	return n.Children[0]
}

// Tree is the inferred shape of one value, or of a set of values sharing a
// type.
type Tree struct {
	name  string
	nodes []Node
}

// RootName is the caller-supplied name of the root type.
func (t *Tree) RootName() string { return t.name }

// Root returns the root node id.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id NodeID) Node { return t.nodes[id] }

// Records lists record nodes in discovery order: root first, then depth
// first through fields, tuple slots and first sequence elements.
func (t *Tree) Records() []NodeID {
	return t.OfKind(value.KindRecord)
}

// OfKind lists the nodes of the given kinds in discovery order.
func (t *Tree) OfKind(kinds ...value.Kind) []NodeID {
	var ids []NodeID
	for i, n := range t.nodes {
		for _, k := range kinds {
			if n.Kind == k {
				ids = append(ids, NodeID(i))
				break
			}
		}
	}
	return ids
}

// Segments returns the naming segments from the root to id.
func (t *Tree) Segments(id NodeID) []string {
	var segs []string
	for cur := id; cur != NoNode && cur != t.Root(); cur = t.nodes[cur].Parent {
		n := t.nodes[cur]
		switch n.Edge {
		case EdgeField:
			segs = append(segs, n.Key)
		case EdgeSlot:
			segs = append(segs, strconv.Itoa(n.Index))
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// Name derives the declaration name of a node from its position.
func (t *Tree) Name(id NodeID) string {
	segs := t.Segments(id)
	if len(segs) == 0 {
		return t.name
	}
	return t.name + "__" + strings.Join(segs, "__")
}

// Describe renders the type of a node for error messages.
func (t *Tree) Describe(id NodeID) string {
	if id == NoNode {
		return "()"
	}
	n := t.nodes[id]
	switch n.Kind {
	case value.KindRecord:
		return "struct " + t.Name(id)
	case value.KindOption:
		return "Option<" + t.Describe(n.Elem()) + ">"
	case value.KindList:
		return "Vec<" + t.Describe(n.Elem()) + ">"
	case value.KindArray:
		return fmt.Sprintf("[%s; %d]", t.Describe(n.Elem()), n.Length)
	case value.KindTuple:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = t.Describe(c)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return n.Kind.String()
}

// String dumps the tree, one node per line.
func (t *Tree) String() string {
	var b strings.Builder
	var dump func(id NodeID, depth int, label string)
	dump = func(id NodeID, depth int, label string) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(label)
		if id == NoNode {
			b.WriteString("()\n")
			return
		}
		n := t.nodes[id]
		if n.Kind == value.KindRecord {
			b.WriteString(t.Name(id))
		} else {
			b.WriteString(n.Kind.String())
		}
		if n.Kind == value.KindArray {
			fmt.Fprintf(&b, "[%d]", n.Length)
		}
		b.WriteString("\n")
		for i, c := range n.Children {
			switch n.Kind {
			case value.KindRecord:
				dump(c, depth+1, n.Keys[i]+": ")
			case value.KindTuple:
				dump(c, depth+1, strconv.Itoa(i)+": ")
			default:
				dump(c, depth+1, "")
			}
		}
	}
	dump(t.Root(), 0, "")
	return b.String()
}
