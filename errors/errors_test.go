package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsKind(t *testing.T) {
	err := NewParseError("unexpected token %q", "}")
	err = Wrap(err, "parsing data/config.json")
	err = Wrap(err, "job config")

	assert.True(t, Is(err, ErrParse))
	assert.False(t, Is(err, ErrShape))
	assert.Equal(t, "job config: parsing data/config.json: unexpected token \"}\"", err.Error())
}

func TestWrapParse(t *testing.T) {
	assert.Nil(t, WrapParse(nil, "yaml"))

	base := New("line 3: mapping values are not allowed")
	err := WrapParse(base, "yaml")

	assert.True(t, Is(err, ErrParse))
	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "yaml")
}

func TestShapeError(t *testing.T) {
	err := Wrap(NewShapeError("a struct", "i64"), "generating Config")

	require.True(t, Is(err, ErrShape))

	var shapeErr *ShapeError
	require.True(t, As(err, &shapeErr))
	assert.Equal(t, "i64", shapeErr.Actual)
	assert.Contains(t, err.Error(), "expected value to be a struct but found `i64` instead")
}

func TestNameError(t *testing.T) {
	err := NewNameError("2fast", "must not start with a digit")

	require.True(t, Is(err, ErrInvalidName))

	var nameErr *NameError
	require.True(t, As(err, &nameErr))
	assert.Equal(t, "2fast", nameErr.Name)
	assert.Equal(t, `invalid identifier "2fast": must not start with a digit`, err.Error())
	assert.Equal(t, `invalid identifier "x y"`, (&NameError{Name: "x y"}).Error())
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"parse", NewParseError("bad"), "parse"},
		{"shape", NewShapeError("a struct", "Vec"), "shape"},
		{"empty", NewEmptySourceError("no entries"), "empty_source"},
		{"name", NewNameError("", "empty"), "invalid_name"},
		{"incompatible", NewIncompatibleShapeError("i64 vs f64"), "incompatible_shape"},
		{"unsupported", NewUnsupportedError("i128"), "unsupported"},
		{"wrapped", Wrap(NewUnsupportedError("i128"), "go backend"), "unsupported"},
		{"io", Wrap(fs.ErrNotExist, "reading source"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestIOErrorsPassThrough(t *testing.T) {
	err := Wrap(fs.ErrNotExist, "reading data/missing.toml")

	assert.True(t, Is(err, fs.ErrNotExist))
	assert.False(t, IsAny(err, ErrParse, ErrShape, ErrEmptySource, ErrInvalidName, ErrUnsupported))
}

func TestHints(t *testing.T) {
	err := WithHint(NewIncompatibleShapeError("element 1 is f64"), "make every element the same kind")
	err = Wrap(err, "layer")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "make every element the same kind", hints[0])
	assert.True(t, Is(err, ErrIncompatibleShape))
}

func TestStackTrace(t *testing.T) {
	err := NewShapeError("a struct", "bool")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func ExampleNewShapeError() {
	err := NewShapeError("a struct", "String")
	fmt.Println(err)
	// Output: expected value to be a struct but found `String` instead
}

func ExampleWrap() {
	err := Wrap(NewEmptySourceError("expected values in map, but it was empty"), "job colours")
	fmt.Println(err)
	// Output: job colours: expected values in map, but it was empty
}
