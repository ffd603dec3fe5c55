package rust

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/shape"
	"github.com/teranos/markgen/value"
)

const (
	cowBorrowed = "std::borrow::Cow::Borrowed"
	indentUnit  = "    "
)

func pad(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

// typeOf renders the Rust type of a node. NoNode is the unit payload of a
// None option or an empty sequence.
func typeOf(t *shape.Tree, id shape.NodeID) string {
	if id == shape.NoNode {
		return "()"
	}
	n := t.Node(id)
	switch n.Kind {
	case value.KindRecord:
		return t.Name(id)
	case value.KindString:
		return "std::borrow::Cow<'static, str>"
	case value.KindOption:
		return "Option<" + typeOf(t, n.Elem()) + ">"
	case value.KindList:
		return "std::borrow::Cow<'static, [" + typeOf(t, n.Elem()) + "]>"
	case value.KindArray:
		return fmt.Sprintf("[%s; %d]", typeOf(t, n.Elem()), n.Length)
	case value.KindTuple:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = typeOf(t, c)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	// Scalars are named by their kind.
	return n.Kind.String()
}

// hasRecord reports whether a record type occurs at or below id.
func hasRecord(t *shape.Tree, id shape.NodeID) bool {
	if id == shape.NoNode {
		return false
	}
	n := t.Node(id)
	if n.Kind == value.KindRecord {
		return true
	}
	for _, c := range n.Children {
		if hasRecord(t, c) {
			return true
		}
	}
	return false
}

// literal renders l as a Rust expression. Records, and sequences holding
// records, span several lines: continuation lines are indented relative to
// depth and the first line carries no indentation.
func literal(t *shape.Tree, l shape.Literal, depth int) (string, error) {
	n := t.Node(l.Node)
	v := l.Value

	switch n.Kind {
	case value.KindUnit:
		return "()", nil
	case value.KindBool:
		return strconv.FormatBool(v.BoolValue()), nil
	case value.KindChar:
		return quoteChar(v.CharValue()), nil
	case value.KindString:
		return cowBorrowed + "(" + quoteString(v.Text()) + ")", nil
	case value.KindF32, value.KindF64:
		return floatLiteral(v.FloatValue(), n.Kind), nil
	case value.KindOption:
		if len(l.Items) == 0 {
			return "None", nil
		}
		inner, err := literal(t, l.Items[0], depth)
		if err != nil {
			return "", err
		}
		return "Some(" + inner + ")", nil
	case value.KindTuple:
		if len(l.Items) == 1 && !hasRecord(t, l.Node) {
			inner, err := literal(t, l.Items[0], depth)
			if err != nil {
				return "", err
			}
			return "(" + inner + ",)", nil
		}
		return sequence(t, l, depth, "(", ")")
	case value.KindArray:
		return sequence(t, l, depth, "[", "]")
	case value.KindList:
		return sequence(t, l, depth, cowBorrowed+"(&[", "])")
	case value.KindRecord:
		return record(t, l, depth)
	}

	switch {
	case n.Kind.IsWide():
		return v.WideValue().String() + n.Kind.String(), nil
	case n.Kind.IsSigned():
		return strconv.FormatInt(v.IntValue(), 10) + n.Kind.String(), nil
	case n.Kind.IsUnsigned():
		return strconv.FormatUint(v.UintValue(), 10) + n.Kind.String(), nil
	}
	return "", errors.NewUnsupportedError("no Rust literal for %s", n.Kind)
}

func floatLiteral(f float64, kind value.Kind) string {
	suffix := kind.String()
	switch {
	case math.IsNaN(f):
		return suffix + "::NAN"
	case math.IsInf(f, 1):
		return suffix + "::INFINITY"
	case math.IsInf(f, -1):
		return suffix + "::NEG_INFINITY"
	}
	bits := 64
	if kind == value.KindF32 {
		bits = 32
	}
	return strconv.FormatFloat(f, 'g', -1, bits) + suffix
}

func sequence(t *shape.Tree, l shape.Literal, depth int, open, close string) (string, error) {
	if !hasRecord(t, l.Node) {
		parts := make([]string, len(l.Items))
		for i, item := range l.Items {
			s, err := literal(t, item, depth)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return open + strings.Join(parts, ", ") + close, nil
	}

	var sb strings.Builder
	sb.WriteString(open)
	sb.WriteString("\n")
	for _, item := range l.Items {
		s, err := literal(t, item, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(pad(depth + 1))
		sb.WriteString(s)
		sb.WriteString(",\n")
	}
	sb.WriteString(pad(depth))
	sb.WriteString(close)
	return sb.String(), nil
}

func record(t *shape.Tree, l shape.Literal, depth int) (string, error) {
	n := t.Node(l.Node)
	name := t.Name(l.Node)
	if len(n.Keys) == 0 {
		return name + " {}", nil
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" {\n")
	for i, key := range n.Keys {
		ident, err := fieldIdent(key)
		if err != nil {
			return "", err
		}
		s, err := literal(t, l.Items[i], depth+1)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s%s: %s,\n", pad(depth+1), ident, s)
	}
	sb.WriteString(pad(depth))
	sb.WriteString("}")
	return sb.String(), nil
}
