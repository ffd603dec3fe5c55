package value

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnit, "()"},
		{KindI8, "i8"},
		{KindUSize, "usize"},
		{KindString, "String"},
		{KindOption, "Option"},
		{KindTuple, "tuple"},
		{KindArray, "array"},
		{KindList, "Vec"},
		{KindRecord, "struct"},
		{Kind(200), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindI128.IsSigned())
	assert.True(t, KindI128.IsWide())
	assert.False(t, KindU64.IsSigned())
	assert.True(t, KindU64.IsUnsigned())
	assert.True(t, KindF32.IsFloat())
	assert.True(t, KindString.IsScalar())
	assert.False(t, KindOption.IsScalar())
	assert.True(t, KindList.IsSequence())
	assert.False(t, KindRecord.IsSequence())
}

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("Second", Int(KindI64, 2))
	r.Set("First", Int(KindI64, 1))
	r.Set("Second", Int(KindI64, 20))

	assert.Equal(t, []string{"Second", "First"}, r.Keys())
	v, ok := r.Get("Second")
	require.True(t, ok)
	assert.Equal(t, int64(20), v.IntValue())
	assert.True(t, r.Has("First"))
	assert.False(t, r.Has("Third"))
	assert.Equal(t, 2, r.Len())
}

func TestNilRecord(t *testing.T) {
	var r *Record
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Keys())
	assert.False(t, r.Has("x"))

	v := Struct(nil)
	assert.Equal(t, 0, v.Len())
}

func TestOptional(t *testing.T) {
	some := Some(String("x"))
	inner, ok := some.Elem()
	require.True(t, ok)
	assert.Equal(t, "x", inner.Text())
	assert.False(t, some.IsNone())

	_, ok = None().Elem()
	assert.False(t, ok)
	assert.True(t, None().IsNone())
	assert.Nil(t, some.Items())
}

func TestWideIntegers(t *testing.T) {
	n, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	require.True(t, ok)

	v := Wide(KindI128, n)
	n.SetInt64(0)
	assert.Equal(t, "170141183460469231731687303715884105727", v.WideValue().String(), "value owns a copy")

	assert.Equal(t, "5", Int(KindI128, 5).WideValue().String())
	assert.Equal(t, "7", Uint(KindU128, 7).WideValue().String())
}

func TestFloat32Rounding(t *testing.T) {
	v := Float(KindF32, 0.1)
	assert.Equal(t, float64(float32(0.1)), v.FloatValue())
}

func TestCloneIsDeep(t *testing.T) {
	original := Struct(RecordOf(
		Field{Key: "list", Value: List(Int(KindI64, 1))},
	))

	clone := original.Clone()
	list, _ := clone.Record().Get("list")
	list.Items()[0] = Int(KindI64, 99)

	orig, _ := original.Record().Get("list")
	assert.Equal(t, int64(1), orig.Items()[0].IntValue())
	assert.Equal(t, int64(99), list.Items()[0].IntValue())
}
