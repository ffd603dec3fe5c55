package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

func rec(fields ...value.Field) value.Value {
	return value.Struct(value.RecordOf(fields...))
}

func f(key string, v value.Value) value.Field {
	return value.Field{Key: key, Value: v}
}

func i64(n int64) value.Value { return value.Int(value.KindI64, n) }

func recordNames(t *Tree) []string {
	var names []string
	for _, id := range t.Records() {
		names = append(names, t.Name(id))
	}
	return names
}

func TestNestedRecordName(t *testing.T) {
	tree, _, err := Build("Root", rec(f("a", rec(f("b", i64(1))))))
	require.NoError(t, err)
	assert.Equal(t, []string{"Root", "Root__a"}, recordNames(tree))
}

func TestTupleSlotName(t *testing.T) {
	v := rec(f("a", value.Tuple(i64(1), rec(f("b", i64(1))))))
	tree, _, err := Build("Root", v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Root", "Root__a__1"}, recordNames(tree))
}

func TestTransparentEdges(t *testing.T) {
	v := rec(
		f("maybe", value.Some(rec(f("x", i64(1))))),
		f("many", value.List(rec(f("y", i64(1))), rec(f("y", i64(2))))),
		f("fixed", value.Array(value.Tuple(rec(f("z", i64(1)))))),
	)
	tree, _, err := Build("Cfg", v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cfg", "Cfg__maybe", "Cfg__many", "Cfg__fixed__0"}, recordNames(tree))
}

func TestDiscoveryOrderIsPreOrder(t *testing.T) {
	v := rec(
		f("a", rec(f("deep", rec(f("x", i64(1)))))),
		f("b", rec(f("y", i64(2)))),
	)
	tree, _, err := Build("R", v)
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "R__a", "R__a__deep", "R__b"}, recordNames(tree))
}

func TestIdenticalShapesStayDistinct(t *testing.T) {
	v := rec(f("left", rec(f("x", i64(1)))), f("right", rec(f("x", i64(2)))))
	tree, _, err := Build("Pair", v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pair", "Pair__left", "Pair__right"}, recordNames(tree))
}

func TestLiteralsPointAtTheirNodes(t *testing.T) {
	v := rec(f("name", value.String("x")), f("list", value.List(i64(1), i64(2))))
	tree, lit, err := Build("Root", v)
	require.NoError(t, err)

	assert.Equal(t, tree.Root(), lit.Node)
	require.Len(t, lit.Items, 2)

	list := lit.Items[1]
	assert.Equal(t, value.KindList, tree.Node(list.Node).Kind)
	require.Len(t, list.Items, 2)
	assert.Equal(t, list.Items[0].Node, list.Items[1].Node, "elements share the element node")
	assert.Equal(t, int64(2), list.Items[1].Value.IntValue())
}

func TestRecordLiteralFollowsDeclaredOrder(t *testing.T) {
	first := rec(f("a", i64(1)), f("b", i64(2)))
	second := rec(f("b", i64(4)), f("a", i64(3)))

	tree, lits, err := BuildAll("Row", []value.Value{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tree.Node(tree.Root()).Keys)
	assert.Equal(t, int64(3), lits[1].Items[0].Value.IntValue())
	assert.Equal(t, int64(4), lits[1].Items[1].Value.IntValue())
}

func TestEmptySequencesAndNone(t *testing.T) {
	v := rec(f("none", value.None()), f("empty", value.List()), f("arr", value.Array()))
	tree, _, err := Build("E", v)
	require.NoError(t, err)

	root := tree.Node(tree.Root())
	assert.Equal(t, "Option<()>", tree.Describe(root.Children[0]))
	assert.Equal(t, "Vec<()>", tree.Describe(root.Children[1]))
	assert.Equal(t, "[(); 0]", tree.Describe(root.Children[2]))
}

func TestIncompatibleElements(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		path string
	}{
		{"scalar kinds", value.List(i64(1), value.String("x")), "$[1]"},
		{"int widths", value.List(value.Int(value.KindI8, 1), value.Int(value.KindI16, 300)), "$[1]"},
		{"record keys", value.List(rec(f("a", i64(1))), rec(f("b", i64(1)))), "$[1]"},
		{"nested field", value.List(rec(f("a", i64(1))), rec(f("a", value.Bool(true)))), "$[1].a"},
		{"none first", value.List(value.None(), value.Some(i64(1))), "$[1]"},
		{"empty first", value.List(value.List(), value.List(i64(1))), "$[1]"},
		{"array length", value.List(value.Array(i64(1)), value.Array(i64(1), i64(2))), "$[1]"},
		{"tuple arity", value.List(value.Tuple(i64(1)), value.Tuple(i64(1), i64(2))), "$[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Build("Root", tt.v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrIncompatibleShape))
			assert.Contains(t, err.Error(), "at "+tt.path+":")
		})
	}
}

func TestPayloadlessFirstElementHint(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		hint string
	}{
		{"null first", rec(f("a", value.List(value.None(), value.Some(i64(1))))), "put a non-null element first"},
		{"empty first", value.List(value.List(), value.List(i64(1))), "put a non-empty element first"},
		{"kind mismatch", value.List(i64(1), value.String("x")), "same type as the first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Build("Root", tt.v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrIncompatibleShape))
			hints := errors.GetAllHints(err)
			require.Len(t, hints, 1)
			assert.Contains(t, hints[0], tt.hint)
		})
	}
}

func TestBuildAllEmpty(t *testing.T) {
	_, _, err := BuildAll("Root", nil)
	assert.True(t, errors.Is(err, errors.ErrEmptySource))
}

func TestBuildAllPaths(t *testing.T) {
	_, _, err := BuildAll("Row", []value.Value{rec(f("a", i64(1))), rec(f("a", value.String("x")))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at $[1].a: expected i64 but found String")
}

func TestUnifiedOptionalsBind(t *testing.T) {
	items := []value.Value{i64(1), value.None()}
	require.NoError(t, value.Unify(items))

	tree, lit, err := Build("Root", value.List(items...))
	require.NoError(t, err)
	assert.Equal(t, "Vec<Option<i64>>", tree.Describe(tree.Root()))
	assert.True(t, lit.Items[1].IsNone())
	assert.False(t, lit.Items[0].IsNone())
}

func TestDump(t *testing.T) {
	v := rec(f("a", value.Tuple(i64(1), rec(f("b", value.Array(i64(1), i64(2)))))))
	tree, _, err := Build("R", v)
	require.NoError(t, err)

	want := "R\n" +
		"  a: tuple\n" +
		"    0: i64\n" +
		"    1: R__a__1\n" +
		"      b: array[2]\n" +
		"        i64\n"
	assert.Equal(t, want, tree.String())
}
