package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

// Literal is a value checked against a node of its Tree.
//
// Scalars keep their value in Value. Records hold one item per field in
// the node's key order, tuples one per slot, sequences one per element and
// options zero (None) or one (Some) item.
type Literal struct {
	Node  NodeID
	Value value.Value
	Items []Literal
}

// IsNone reports an absent option literal.
func (l Literal) IsNone() bool {
	return l.Value.Kind() == value.KindOption && len(l.Items) == 0
}

// Build infers the shape of v and binds v to it in a single pass.
func Build(name string, v value.Value) (*Tree, Literal, error) {
	t, lits, err := BuildAll(name, []value.Value{v})
	if err != nil {
		return nil, Literal{}, err
	}
	return t, lits[0], nil
}

// BuildAll infers one shape shared by all values. The first value decides
// the shape; every value, the first included, is then bound to it. Values
// that do not fit the shape are an error naming the offending path.
func BuildAll(name string, values []value.Value) (*Tree, []Literal, error) {
	if len(values) == 0 {
		return nil, nil, errors.NewEmptySourceError("no values to infer %s from", name)
	}

	b := &builder{t: &Tree{name: name}}
	root := b.add(values[0], NoNode, EdgeRoot, "", 0)

	lits := make([]Literal, 0, len(values))
	for i, v := range values {
		path := "$"
		if len(values) > 1 {
			path = "$[" + strconv.Itoa(i) + "]"
		}
		lit, err := b.walk(v, root, path)
		if err != nil {
			return nil, nil, err
		}
		lits = append(lits, lit)
	}
	return b.t, lits, nil
}

type builder struct {
	t *Tree
}

// add appends a node shaped like v. Its children are created lazily by
// walk, which keeps the arena in pre-order.
func (b *builder) add(v value.Value, parent NodeID, edge EdgeKind, key string, index int) NodeID {
	n := Node{
		Kind:   v.Kind(),
		Parent: parent,
		Edge:   edge,
		Key:    key,
		Index:  index,
	}
	switch v.Kind() {
	case value.KindRecord:
		n.Keys = v.Record().Keys()
		n.Children = pending(len(n.Keys))
	case value.KindTuple:
		n.Children = pending(len(v.Items()))
	case value.KindArray, value.KindList:
		if v.Len() > 0 {
			n.Children = pending(1)
		}
	case value.KindOption:
		if !v.IsNone() {
			n.Children = pending(1)
		}
	}
	if v.Kind() == value.KindArray {
		n.Length = v.Len()
	}
	b.t.nodes = append(b.t.nodes, n)
	return NodeID(len(b.t.nodes) - 1)
}

func pending(n int) []NodeID {
	ids := make([]NodeID, n)
	for i := range ids {
		ids[i] = NoNode
	}
	return ids
}

// child returns the i-th child of parent, creating it from v on first use.
func (b *builder) child(parent NodeID, i int, v value.Value, edge EdgeKind) NodeID {
	if id := b.t.nodes[parent].Children[i]; id != NoNode {
		return id
	}
	var key string
	if edge == EdgeField {
		key = b.t.nodes[parent].Keys[i]
	}
	id := b.add(v, parent, edge, key, i)
	b.t.nodes[parent].Children[i] = id
	return id
}

func (b *builder) walk(v value.Value, id NodeID, path string) (Literal, error) {
	n := b.t.nodes[id]
	if v.Kind() != n.Kind {
		return Literal{}, b.mismatch(id, path, describeValue(v))
	}
	lit := Literal{Node: id, Value: v}

	switch n.Kind {
	case value.KindOption:
		inner, ok := v.Elem()
		if !ok {
			return lit, nil
		}
		if len(n.Children) == 0 {
			return Literal{}, b.incompatible(id, path, "Some("+describeValue(inner)+")",
				"the first element is null, so its type is unknown; put a non-null element first")
		}
		c := b.child(id, 0, inner, EdgeSome)
		item, err := b.walk(inner, c, path)
		if err != nil {
			return Literal{}, err
		}
		lit.Items = []Literal{item}

	case value.KindTuple:
		items := v.Items()
		if len(items) != len(n.Children) {
			return Literal{}, b.mismatch(id, path, fmt.Sprintf("a tuple of %d", len(items)))
		}
		lit.Items = make([]Literal, len(items))
		for i, item := range items {
			c := b.child(id, i, item, EdgeSlot)
			sub, err := b.walk(item, c, path+"."+strconv.Itoa(i))
			if err != nil {
				return Literal{}, err
			}
			lit.Items[i] = sub
		}

	case value.KindArray, value.KindList:
		items := v.Items()
		if n.Kind == value.KindArray && len(items) != n.Length {
			return Literal{}, b.mismatch(id, path, fmt.Sprintf("an array of %d", len(items)))
		}
		if len(items) > 0 && len(n.Children) == 0 {
			return Literal{}, b.incompatible(id, path, describeValue(v),
				"the first element is empty, so its element type is unknown; put a non-empty element first")
		}
		lit.Items = make([]Literal, len(items))
		for i, item := range items {
			c := b.child(id, 0, item, EdgeElem)
			sub, err := b.walk(item, c, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return Literal{}, err
			}
			lit.Items[i] = sub
		}

	case value.KindRecord:
		rec := v.Record()
		if !sameKeys(n.Keys, rec) {
			return Literal{}, b.mismatch(id, path, "fields ["+strings.Join(rec.Keys(), ", ")+"]")
		}
		lit.Items = make([]Literal, len(n.Keys))
		for i, key := range n.Keys {
			field, _ := rec.Get(key)
			c := b.child(id, i, field, EdgeField)
			sub, err := b.walk(field, c, path+"."+key)
			if err != nil {
				return Literal{}, err
			}
			lit.Items[i] = sub
		}
	}
	return lit, nil
}

func sameKeys(keys []string, rec *value.Record) bool {
	if rec.Len() != len(keys) {
		return false
	}
	for _, k := range keys {
		if !rec.Has(k) {
			return false
		}
	}
	return true
}

func (b *builder) mismatch(id NodeID, path, found string) error {
	return b.incompatible(id, path, found, "every element of a sequence must have the same type as the first")
}

func (b *builder) incompatible(id NodeID, path, found, hint string) error {
	expected := b.t.Describe(id)
	if n := b.t.nodes[id]; n.Kind == value.KindRecord {
		expected += " with fields [" + strings.Join(n.Keys, ", ") + "]"
	}
	err := errors.NewIncompatibleShapeError("at %s: expected %s but found %s", path, expected, found)
	return errors.WithHint(err, hint)
}

// describeValue renders the type a value would have on its own.
func describeValue(v value.Value) string {
	switch v.Kind() {
	case value.KindRecord:
		return "struct with fields [" + strings.Join(v.Record().Keys(), ", ") + "]"
	case value.KindOption:
		if inner, ok := v.Elem(); ok {
			return "Some(" + describeValue(inner) + ")"
		}
		return "None"
	case value.KindList, value.KindArray, value.KindTuple:
		items := v.Items()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = describeValue(item)
		}
		if v.Kind() == value.KindTuple {
			return "(" + strings.Join(parts, ", ") + ")"
		}
		if len(parts) == 0 {
			return "[]"
		}
		return "[" + parts[0] + ", ...]"
	}
	return v.Kind().String()
}
