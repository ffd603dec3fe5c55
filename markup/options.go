package markup

import (
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

// Options is the numeric policy applied while decoding.
type Options struct {
	// IntSize is the preferred integer kind. Integers that do not fit are
	// promoted to the next wider signed kind.
	IntSize value.Kind

	// FloatSize is the preferred float kind (KindF32 or KindF64).
	FloatSize value.Kind

	// MaxArraySize is the longest sequence decoded as a fixed-length array.
	// Longer sequences become lists. Zero disables fixed-length arrays.
	MaxArraySize int
}

// DefaultOptions returns i64 integers, f64 floats and no fixed arrays.
func DefaultOptions() Options {
	return Options{
		IntSize:   value.KindI64,
		FloatSize: value.KindF64,
	}
}

// normalize fills zero-valued sizes with the defaults.
func (o Options) normalize() Options {
	if o.IntSize == value.KindUnit {
		o.IntSize = value.KindI64
	}
	if o.FloatSize == value.KindUnit {
		o.FloatSize = value.KindF64
	}
	return o
}

// Validate reports options the decoders cannot honour.
func (o Options) Validate() error {
	switch o.IntSize {
	case value.KindI8, value.KindI16, value.KindI32, value.KindI64, value.KindI128, value.KindISize:
	default:
		return errors.NewUnsupportedError("default int size must be a signed integer kind, got %s", o.IntSize)
	}
	if !o.FloatSize.IsFloat() {
		return errors.NewUnsupportedError("default float size must be f32 or f64, got %s", o.FloatSize)
	}
	if o.MaxArraySize < 0 {
		return errors.NewUnsupportedError("max array size must not be negative, got %d", o.MaxArraySize)
	}
	return nil
}

// ParseIntSize converts a config name such as "i32" to a kind.
func ParseIntSize(name string) (value.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "i8":
		return value.KindI8, nil
	case "i16":
		return value.KindI16, nil
	case "i32":
		return value.KindI32, nil
	case "", "i64":
		return value.KindI64, nil
	case "i128":
		return value.KindI128, nil
	case "isize":
		return value.KindISize, nil
	}
	return 0, errors.NewUnsupportedError("unknown int size %q", name)
}

// ParseFloatSize converts a config name such as "f32" to a kind.
func ParseFloatSize(name string) (value.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "f32":
		return value.KindF32, nil
	case "", "f64":
		return value.KindF64, nil
	}
	return 0, errors.NewUnsupportedError("unknown float size %q", name)
}

func (o Options) sequence(items []value.Value) value.Value {
	if o.MaxArraySize > 0 && len(items) <= o.MaxArraySize {
		return value.Array(items...)
	}
	return value.List(items...)
}
