package golang

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/shape"
	"github.com/teranos/markgen/value"
)

// Go keywords cannot be type names.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// TypeMapping defines how scalar kinds map to Go types
var TypeMapping = map[value.Kind]string{
	value.KindUnit:   "struct{}",
	value.KindBool:   "bool",
	value.KindChar:   "rune",
	value.KindI8:     "int8",
	value.KindI16:    "int16",
	value.KindI32:    "int32",
	value.KindI64:    "int64",
	value.KindISize:  "int",
	value.KindU8:     "uint8",
	value.KindU16:    "uint16",
	value.KindU32:    "uint32",
	value.KindU64:    "uint64",
	value.KindUSize:  "uint",
	value.KindF32:    "float32",
	value.KindF64:    "float64",
	value.KindString: "string",
}

func checkName(name string) error {
	if problem := casing.IdentProblem(name); problem != "" {
		return errors.NewNameError(name, problem)
	}
	if goKeywords[name] {
		return errors.NewNameError(name, "is a Go keyword")
	}
	return nil
}

func unsupportedWide(kind value.Kind) error {
	err := errors.NewUnsupportedError("Go has no %s type", kind)
	return errors.WithHint(err, "use the rust language for this job or lower default_int_size")
}

// typeOf renders the Go type of a node. Records and tuples are named types.
func typeOf(t *shape.Tree, id shape.NodeID) (string, error) {
	if id == shape.NoNode {
		return "struct{}", nil
	}
	n := t.Node(id)
	switch n.Kind {
	case value.KindRecord, value.KindTuple:
		return t.Name(id), nil
	case value.KindOption:
		inner, err := typeOf(t, n.Elem())
		return "*" + inner, err
	case value.KindList:
		inner, err := typeOf(t, n.Elem())
		return "[]" + inner, err
	case value.KindArray:
		inner, err := typeOf(t, n.Elem())
		return fmt.Sprintf("[%d]%s", n.Length, inner), err
	}
	if n.Kind.IsWide() {
		return "", unsupportedWide(n.Kind)
	}
	if s, ok := TypeMapping[n.Kind]; ok {
		return s, nil
	}
	return "", errors.NewUnsupportedError("no Go type for %s", n.Kind)
}

// fieldNames returns the exported Go field names of a record node, in key
// order. Keys that collapse to the same name are a naming error.
func fieldNames(t *shape.Tree, id shape.NodeID) ([]string, error) {
	n := t.Node(id)
	names := make([]string, len(n.Keys))
	seen := make(map[string]string, len(n.Keys))
	for i, key := range n.Keys {
		name := casing.ToPascalCase(key)
		if problem := casing.IdentProblem(name); problem != "" {
			err := errors.NewNameError(key, problem)
			return nil, errors.WithHint(err, "rename the key; keys are used as field names")
		}
		if prev, ok := seen[name]; ok {
			return nil, errors.NewNameError(key, fmt.Sprintf("field name %s is also used by key %q", name, prev))
		}
		seen[name] = key
		names[i] = name
	}
	return names, nil
}

// literals renders Go expressions and records which imports they need.
type literals struct {
	tree     *shape.Tree
	needMath bool
}

func (w *literals) literal(l shape.Literal) (string, error) {
	t := w.tree
	n := t.Node(l.Node)
	v := l.Value

	switch n.Kind {
	case value.KindUnit:
		return "struct{}{}", nil
	case value.KindBool:
		return strconv.FormatBool(v.BoolValue()), nil
	case value.KindChar:
		return strconv.QuoteRune(v.CharValue()), nil
	case value.KindString:
		return strconv.Quote(v.Text()), nil
	case value.KindF32, value.KindF64:
		return w.float(v.FloatValue(), n.Kind), nil
	case value.KindOption:
		return w.option(l)
	case value.KindTuple:
		return w.tuple(l)
	case value.KindArray, value.KindList:
		typ, err := typeOf(t, l.Node)
		if err != nil {
			return "", err
		}
		return w.elements(typ, l)
	case value.KindRecord:
		return w.record(l)
	}

	switch {
	case n.Kind.IsWide():
		return "", unsupportedWide(n.Kind)
	case n.Kind.IsSigned():
		return strconv.FormatInt(v.IntValue(), 10), nil
	case n.Kind.IsUnsigned():
		return strconv.FormatUint(v.UintValue(), 10), nil
	}
	return "", errors.NewUnsupportedError("no Go literal for %s", n.Kind)
}

func (w *literals) float(f float64, kind value.Kind) string {
	var s string
	switch {
	case math.IsNaN(f):
		s = "math.NaN()"
	case math.IsInf(f, 1):
		s = "math.Inf(1)"
	case math.IsInf(f, -1):
		s = "math.Inf(-1)"
	case f == 0 && math.Signbit(f):
		s = "math.Copysign(0, -1)"
	default:
		bits := 64
		if kind == value.KindF32 {
			bits = 32
		}
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	w.needMath = true
	if kind == value.KindF32 {
		return "float32(" + s + ")"
	}
	return s
}

// option renders None as nil. Composite payloads are addressed directly;
// anything else goes through a function literal because Go cannot take the
// address of a constant.
func (w *literals) option(l shape.Literal) (string, error) {
	if len(l.Items) == 0 {
		return "nil", nil
	}
	inner := l.Items[0]
	lit, err := w.literal(inner)
	if err != nil {
		return "", err
	}
	switch w.tree.Node(inner.Node).Kind {
	case value.KindRecord, value.KindTuple:
		return "&" + lit, nil
	}
	typ, err := typeOf(w.tree, inner.Node)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func() *%s { var v %s = %s; return &v }()", typ, typ, lit), nil
}

func (w *literals) tuple(l shape.Literal) (string, error) {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		lit, err := w.literal(item)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("F%d: %s", i, lit)
	}
	return w.tree.Name(l.Node) + w.braces(l.Node, parts), nil
}

func (w *literals) elements(typ string, l shape.Literal) (string, error) {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		lit, err := w.literal(item)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return typ + w.braces(l.Node, parts), nil
}

func (w *literals) record(l shape.Literal) (string, error) {
	names, err := fieldNames(w.tree, l.Node)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		lit, err := w.literal(item)
		if err != nil {
			return "", err
		}
		parts[i] = names[i] + ": " + lit
	}
	if len(parts) == 0 {
		return w.tree.Name(l.Node) + "{}", nil
	}
	return w.tree.Name(l.Node) + "{\n" + strings.Join(parts, ",\n") + ",\n}", nil
}

// braces lays out composite elements on one line unless they hold records.
func (w *literals) braces(id shape.NodeID, parts []string) string {
	if len(parts) == 0 {
		return "{}"
	}
	if !hasRecord(w.tree, id) {
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "{\n" + strings.Join(parts, ",\n") + ",\n}"
}

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
