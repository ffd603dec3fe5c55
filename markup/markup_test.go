package markup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

func field(t *testing.T, v value.Value, key string) value.Value {
	t.Helper()
	require.Equal(t, value.KindRecord, v.Kind(), "expected a record")
	f, ok := v.Record().Get(key)
	require.True(t, ok, "missing key %q", key)
	return f
}

// ============================================================================
// Format detection
// ============================================================================

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.json", FormatJSON},
		{"dir/config.YAML", FormatYAML},
		{"config.yml", FormatYAML},
		{"Cargo.toml", FormatTOML},
		{"levels.ron", FormatRON},
		{"blob.msgpack", FormatMsgpack},
		{"blob.mpk", FormatMsgpack},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatFromPath("notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.Contains(t, errors.GetAllHints(err), "set the job's format explicitly")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("xml")
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

// ============================================================================
// JSON
// ============================================================================

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": null}}`), FormatJSON, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Record().Keys())
	mid := field(t, v, "mid")
	assert.Equal(t, []string{"b", "a"}, mid.Record().Keys())
	assert.True(t, field(t, mid, "a").IsNone())
}

func TestParseJSONScalars(t *testing.T) {
	src := `{
		"null_field": null,
		"bool_field": true,
		"signed_field": -100,
		"big_field": 18446744073709551615,
		"float_field": 2.5,
		"string_field": "he said \"hi\"\n",
		"sequence": [1, 2, 3]
	}`
	v, err := Parse([]byte(src), FormatJSON, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, field(t, v, "null_field").IsNone())
	assert.True(t, field(t, v, "bool_field").BoolValue())
	assert.Equal(t, value.Int(value.KindI64, -100), field(t, v, "signed_field"))

	big := field(t, v, "big_field")
	assert.Equal(t, value.KindI128, big.Kind(), "promoted past i64")
	assert.Equal(t, "18446744073709551615", big.WideValue().String())

	assert.Equal(t, value.Float(value.KindF64, 2.5), field(t, v, "float_field"))
	assert.Equal(t, "he said \"hi\"\n", field(t, v, "string_field").Text())

	seq := field(t, v, "sequence")
	assert.Equal(t, value.KindList, seq.Kind())
	assert.Len(t, seq.Items(), 3)
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"malformed", `{"a": }`},
		{"trailing", `{"a": 1} {}`},
		{"duplicate", `{"a": 1, "a": 2}`},
		{"too big", `{"a": 340282366920938463463374607431768211456}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), FormatJSON, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrParse), "got %v", err)
		})
	}
}

// ============================================================================
// Numeric policy
// ============================================================================

func TestPreferredIntWidthPromotes(t *testing.T) {
	opts := Options{IntSize: value.KindI8, FloatSize: value.KindF64}

	v, err := Parse([]byte(`[100, 300, 70000, 5000000000]`), FormatJSON, opts)
	require.NoError(t, err)

	kinds := []value.Kind{}
	for _, item := range v.Items() {
		kinds = append(kinds, item.Kind())
	}
	assert.Equal(t, []value.Kind{value.KindI8, value.KindI16, value.KindI32, value.KindI64}, kinds)
}

func TestPreferredFloatWidth(t *testing.T) {
	opts := Options{IntSize: value.KindI64, FloatSize: value.KindF32}

	v, err := Parse([]byte(`[1.5, 1e300]`), FormatJSON, opts)
	require.NoError(t, err)

	assert.Equal(t, value.KindF32, v.Items()[0].Kind())
	assert.Equal(t, value.KindF64, v.Items()[1].Kind(), "out of f32 range")
}

func TestArraySizeThreshold(t *testing.T) {
	opts := Options{MaxArraySize: 3}

	v, err := Parse([]byte(`{"three": [1, 2, 3], "four": [1, 2, 3, 4], "empty": []}`), FormatJSON, opts)
	require.NoError(t, err)

	assert.Equal(t, value.KindArray, field(t, v, "three").Kind())
	assert.Equal(t, value.KindList, field(t, v, "four").Kind())
	assert.Equal(t, value.KindArray, field(t, v, "empty").Kind())

	v, err = Parse([]byte(`[1, 2]`), FormatJSON, Options{})
	require.NoError(t, err)
	assert.Equal(t, value.KindList, v.Kind(), "zero threshold disables arrays")

	v, err = Parse([]byte(`{"empty": []}`), FormatJSON, Options{})
	require.NoError(t, err)
	assert.Equal(t, value.KindList, field(t, v, "empty").Kind(), "zero threshold keeps empty sequences as lists")
}

func TestInvalidOptions(t *testing.T) {
	_, err := Parse([]byte(`1`), FormatJSON, Options{IntSize: value.KindU8})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	_, err = Parse([]byte(`1`), FormatJSON, Options{MaxArraySize: -1})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

func TestParseIntAndFloatSize(t *testing.T) {
	k, err := ParseIntSize("I32")
	require.NoError(t, err)
	assert.Equal(t, value.KindI32, k)

	k, err = ParseFloatSize("")
	require.NoError(t, err)
	assert.Equal(t, value.KindF64, k)

	_, err = ParseIntSize("u8")
	assert.Error(t, err)
}

// ============================================================================
// YAML
// ============================================================================

func TestParseYAML(t *testing.T) {
	src := `
name: example
count: 3
ratio: 0.5
enabled: yes_but_a_string
when: 2001-12-14
nothing: ~
tagged: !custom 7
list:
  - a
  - b
`
	v, err := Parse([]byte(src), FormatYAML, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "count", "ratio", "enabled", "when", "nothing", "tagged", "list"}, v.Record().Keys())
	assert.Equal(t, value.Int(value.KindI64, 3), field(t, v, "count"))
	assert.Equal(t, value.KindF64, field(t, v, "ratio").Kind())
	assert.Equal(t, "2001-12-14", field(t, v, "when").Text())
	assert.True(t, field(t, v, "nothing").IsNone())
	assert.Equal(t, value.Int(value.KindI64, 7), field(t, v, "tagged"), "custom tags are dropped")
	assert.Equal(t, value.KindList, field(t, v, "list").Kind())
}

func TestParseYAMLMergeKeys(t *testing.T) {
	src := `
base: &base
  speed: 1
  name: base
fast:
  <<: *base
  speed: 5
`
	v, err := Parse([]byte(src), FormatYAML, DefaultOptions())
	require.NoError(t, err)

	fast := field(t, v, "fast")
	assert.Equal(t, []string{"speed", "name"}, fast.Record().Keys())
	assert.Equal(t, int64(5), field(t, fast, "speed").IntValue())
	assert.Equal(t, "base", field(t, fast, "name").Text())
}

func TestParseYAMLNonStringKey(t *testing.T) {
	_, err := Parse([]byte("1: one\n"), FormatYAML, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
	assert.Contains(t, err.Error(), "expected a string key")
}

func TestParseYAMLEmptyDocument(t *testing.T) {
	v, err := Parse([]byte(""), FormatYAML, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

// ============================================================================
// TOML
// ============================================================================

func TestParseTOMLKeepsDocumentOrder(t *testing.T) {
	src := `
title = "demo"
zeta = 1
alpha = 2
born = 1979-05-27
at = 1979-05-27T07:32:00Z

[server]
port = 8080
host = "localhost"

[[points]]
y = 2
x = 1

[[points]]
y = 4
x = 3
`
	v, err := Parse([]byte(src), FormatTOML, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "zeta", "alpha", "born", "at", "server", "points"}, v.Record().Keys())
	assert.Equal(t, []string{"port", "host"}, field(t, v, "server").Record().Keys())
	assert.Equal(t, "1979-05-27", field(t, v, "born").Text())
	assert.Equal(t, "1979-05-27T07:32:00Z", field(t, v, "at").Text())

	points := field(t, v, "points")
	require.Equal(t, value.KindList, points.Kind())
	assert.Equal(t, []string{"y", "x"}, points.Items()[1].Record().Keys())
}

func TestParseTOMLError(t *testing.T) {
	_, err := Parse([]byte("a = "), FormatTOML, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
}

// ============================================================================
// RON
// ============================================================================

func TestParseRON(t *testing.T) {
	src := `#![enable(implicit_some)]
// A level definition
Level(
    name: "intro",
    size: (10, 20),
    spawn: Some((x: 1, y: 2)),
    boss: None,
    tiles: ['#', '.', '\''],
    weights: {"easy": 1.5, "hard": 3.0},
    kind: Dungeon,
    seed: 255u8,
    big: 1_000,
    raw: r#"C:\path"#,
    /* nested /* comment */ here */
    empty: (),
)`
	v, err := Parse([]byte(src), FormatRON, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"name", "size", "spawn", "boss", "tiles", "weights", "kind", "seed", "big", "raw", "empty"},
		v.Record().Keys())

	size := field(t, v, "size")
	require.Equal(t, value.KindTuple, size.Kind())
	assert.Equal(t, int64(20), size.Items()[1].IntValue())

	spawn, ok := field(t, v, "spawn").Elem()
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, spawn.Record().Keys())

	assert.True(t, field(t, v, "boss").IsNone())
	assert.Equal(t, '\'', field(t, v, "tiles").Items()[2].CharValue())
	assert.Equal(t, []string{"easy", "hard"}, field(t, v, "weights").Record().Keys())
	assert.Equal(t, "Dungeon", field(t, v, "kind").Text())
	assert.Equal(t, value.Uint(value.KindU8, 255), field(t, v, "seed"))
	assert.Equal(t, value.Int(value.KindI64, 1000), field(t, v, "big"))
	assert.Equal(t, `C:\path`, field(t, v, "raw").Text())
	assert.Equal(t, value.KindUnit, field(t, v, "empty").Kind())
}

func TestParseRONErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"map key not string", `{1: 2}`},
		{"suffix overflow", `(a: 256u8)`},
		{"unknown suffix", `(a: 5q)`},
		{"unterminated", `(a: "x`},
		{"trailing", `(a: 1) (b: 2)`},
		{"missing comma", `[1 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), FormatRON, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrParse), "got %v", err)
		})
	}
}

// ============================================================================
// MessagePack
// ============================================================================

func TestParseMsgpackKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(3))
	require.NoError(t, enc.EncodeString("zeta"))
	require.NoError(t, enc.EncodeInt(-3))
	require.NoError(t, enc.EncodeString("alpha"))
	require.NoError(t, enc.EncodeArrayLen(2))
	require.NoError(t, enc.EncodeString("x"))
	require.NoError(t, enc.EncodeNil())
	require.NoError(t, enc.EncodeString("blob"))
	require.NoError(t, enc.EncodeBytes([]byte{1, 2}))

	v, err := Parse(buf.Bytes(), FormatMsgpack, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "blob"}, v.Record().Keys())
	assert.Equal(t, value.Int(value.KindI64, -3), field(t, v, "zeta"))
	assert.True(t, field(t, v, "alpha").Items()[1].IsNone())
	assert.Equal(t, value.Uint(value.KindU8, 2), field(t, v, "blob").Items()[1])
}

func TestParseMsgpackNonStringKey(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(1))
	require.NoError(t, enc.EncodeInt(1))
	require.NoError(t, enc.EncodeBool(true))

	_, err := Parse(buf.Bytes(), FormatMsgpack, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
}

func TestParseMsgpackOversizedHeaders(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
	}{
		{"array32", []byte{0xdd, 0xff, 0xff, 0xff, 0xff}},
		{"array16", []byte{0xdc, 0x00, 0x10, 0x01}},
		{"map32", []byte{0xdf, 0xff, 0xff, 0xff, 0xff}},
		{"bin32", []byte{0xc6, 0xff, 0xff, 0xff, 0xff}},
		{"str32", []byte{0xdb, 0xff, 0xff, 0xff, 0xff}},
		{"nested", []byte{0x91, 0xdd, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, FormatMsgpack, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrParse), "got %v", err)
		})
	}
}

// ============================================================================
// Files
// ============================================================================

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	v, err := ParseFile(path, FormatAuto, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.Record().Keys())

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"), FormatAuto, DefaultOptions())
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.UnwrapAll(err)))
	assert.Equal(t, "", errors.Kind(err))

	_, err = Parse([]byte("{}"), FormatAuto, DefaultOptions())
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}
