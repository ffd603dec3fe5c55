// Package value is the format-agnostic data model that every markup adapter
// decodes into and every code generator reads from.
//
// A Value is a tagged union: Kind says which of the accessors is meaningful.
// Records keep their keys in insertion order because that order becomes the
// field order of generated declarations.
package value

import (
	"math/big"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindChar
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindISize
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindUSize
	KindF32
	KindF64
	KindString
	KindOption
	KindTuple
	KindArray
	KindList
	KindRecord
)

var kindNames = [...]string{
	KindUnit:   "()",
	KindBool:   "bool",
	KindChar:   "char",
	KindI8:     "i8",
	KindI16:    "i16",
	KindI32:    "i32",
	KindI64:    "i64",
	KindI128:   "i128",
	KindISize:  "isize",
	KindU8:     "u8",
	KindU16:    "u16",
	KindU32:    "u32",
	KindU64:    "u64",
	KindU128:   "u128",
	KindUSize:  "usize",
	KindF32:    "f32",
	KindF64:    "f64",
	KindString: "String",
	KindOption: "Option",
	KindTuple:  "tuple",
	KindArray:  "array",
	KindList:   "Vec",
	KindRecord: "struct",
}

// String returns the short tag used in error messages.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128, KindISize:
		return true
	}
	return false
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindU8, KindU16, KindU32, KindU64, KindU128, KindUSize:
		return true
	}
	return false
}

// IsWide reports whether k is a 128-bit integer kind.
func (k Kind) IsWide() bool {
	return k == KindI128 || k == KindU128
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

// IsScalar reports whether k holds no nested values.
func (k Kind) IsScalar() bool {
	return k <= KindString
}

// IsSequence reports whether k is a tuple, array or list.
func (k Kind) IsSequence() bool {
	return k == KindTuple || k == KindArray || k == KindList
}

// Value is one node of a parsed document.
type Value struct {
	kind  Kind
	b     bool
	c     rune
	i     int64
	u     uint64
	wide  *big.Int
	f     float64
	s     string
	items []Value
	rec   *Record
}

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Char returns a character value.
func Char(c rune) Value { return Value{kind: KindChar, c: c} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns a signed integer of the given kind. Wide kinds are stored as
// big integers so Int(KindI128, n) is equivalent to Wide(KindI128, big.NewInt(n)).
func Int(kind Kind, n int64) Value {
	if kind == KindI128 {
		return Value{kind: kind, wide: big.NewInt(n)}
	}
	return Value{kind: kind, i: n}
}

// Uint returns an unsigned integer of the given kind.
func Uint(kind Kind, n uint64) Value {
	if kind == KindU128 {
		return Value{kind: kind, wide: new(big.Int).SetUint64(n)}
	}
	return Value{kind: kind, u: n}
}

// Wide returns a 128-bit integer value. The big.Int is copied.
func Wide(kind Kind, n *big.Int) Value {
	return Value{kind: kind, wide: new(big.Int).Set(n)}
}

// Float returns a floating point value of the given kind. F32 values are
// rounded to single precision on construction.
func Float(kind Kind, f float64) Value {
	if kind == KindF32 {
		f = float64(float32(f))
	}
	return Value{kind: kind, f: f}
}

// Some wraps v as a present optional value.
func Some(v Value) Value { return Value{kind: KindOption, items: []Value{v}} }

// None returns an absent optional value.
func None() Value { return Value{kind: KindOption} }

// Tuple returns a heterogeneous fixed-size sequence.
func Tuple(items ...Value) Value { return Value{kind: KindTuple, items: items} }

// Array returns a fixed-length homogeneous sequence.
func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// List returns a variable-length homogeneous sequence.
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Struct returns a record value. A nil record is treated as empty.
func Struct(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindRecord, rec: r}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// BoolValue returns the payload of a KindBool value.
func (v Value) BoolValue() bool { return v.b }

// CharValue returns the payload of a KindChar value.
func (v Value) CharValue() rune { return v.c }

// Text returns the payload of a KindString value.
func (v Value) Text() string { return v.s }

// IntValue returns the payload of a signed integer of at most 64 bits.
func (v Value) IntValue() int64 { return v.i }

// UintValue returns the payload of an unsigned integer of at most 64 bits.
func (v Value) UintValue() uint64 { return v.u }

// WideValue returns a copy of the payload of a 128-bit integer.
func (v Value) WideValue() *big.Int {
	if v.wide == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.wide)
}

// FloatValue returns the payload of a floating point value.
func (v Value) FloatValue() float64 { return v.f }

// Elem returns the payload of an optional value and whether it is present.
func (v Value) Elem() (Value, bool) {
	if v.kind != KindOption || len(v.items) == 0 {
		return Value{}, false
	}
	return v.items[0], true
}

// Items returns the elements of a tuple, array or list. The returned slice
// aliases v, so callers may rewrite elements in place.
func (v Value) Items() []Value {
	if v.kind == KindOption {
		return nil
	}
	return v.items
}

// Record returns the payload of a KindRecord value.
func (v Value) Record() *Record { return v.rec }

// Len returns the number of elements of a sequence or fields of a record.
func (v Value) Len() int {
	switch v.kind {
	case KindRecord:
		return v.rec.Len()
	case KindTuple, KindArray, KindList:
		return len(v.items)
	}
	return 0
}

// IsNone reports whether v is an absent optional value.
func (v Value) IsNone() bool {
	return v.kind == KindOption && len(v.items) == 0
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	if v.wide != nil {
		out.wide = new(big.Int).Set(v.wide)
	}
	if v.items != nil {
		out.items = make([]Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	}
	if v.rec != nil {
		rec := NewRecord()
		for _, f := range v.rec.fields {
			rec.Set(f.Key, f.Value.Clone())
		}
		out.rec = rec
	}
	return out
}
