package markup

import (
	"bytes"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

func parseMsgpack(src []byte, opts Options) (value.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(src))
	v, err := msgpackValue(dec, len(src), opts)
	if err != nil {
		return value.Value{}, err
	}
	if _, err := dec.PeekCode(); err != io.EOF {
		return value.Value{}, errors.NewParseError("msgpack: unexpected data after the top-level value")
	}
	return v, nil
}

// size is the length of the whole input. Every element takes at least one
// byte, so a container claiming more elements than that is malformed.
func msgpackValue(dec *msgpack.Decoder, size int, opts Options) (value.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "msgpack")
	}

	switch {
	case code == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack nil")
		}
		return value.None(), nil

	case code == msgpcode.True || code == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack bool")
		}
		return value.Bool(b), nil

	case code == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack integer")
		}
		return fitUint(u, opts.IntSize), nil

	case msgpcode.IsFixedNum(code),
		code == msgpcode.Uint8, code == msgpcode.Uint16, code == msgpcode.Uint32,
		code == msgpcode.Int8, code == msgpcode.Int16, code == msgpcode.Int32, code == msgpcode.Int64:
		n, err := dec.DecodeInt64()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack integer")
		}
		return fitInt(n, opts.IntSize), nil

	case code == msgpcode.Float || code == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack float")
		}
		return fitFloat(f, opts.FloatSize), nil

	case msgpcode.IsString(code):
		s, err := dec.DecodeString()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack string")
		}
		return value.String(s), nil

	case msgpcode.IsBin(code):
		b, err := dec.DecodeBytes()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack binary")
		}
		items := make([]value.Value, len(b))
		for i, octet := range b {
			items[i] = value.Uint(value.KindU8, uint64(octet))
		}
		return opts.sequence(items), nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack array")
		}
		if n > size {
			return value.Value{}, errors.NewParseError("msgpack: array of %d elements in %d bytes of input", n, size)
		}
		items := make([]value.Value, 0, max(n, 0))
		for i := 0; i < n; i++ {
			v, err := msgpackValue(dec, size, opts)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return opts.sequence(items), nil

	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		return msgpackMap(dec, size, opts)
	}

	// Extensions: only the timestamp extension has a meaning here.
	raw, err := dec.DecodeInterface()
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "msgpack")
	}
	if t, ok := raw.(time.Time); ok {
		return value.String(t.UTC().Format(time.RFC3339Nano)), nil
	}
	return value.Value{}, errors.NewUnsupportedError("msgpack value of type %T", raw)
}

func msgpackMap(dec *msgpack.Decoder, size int, opts Options) (value.Value, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "msgpack map")
	}
	if n > size {
		return value.Value{}, errors.NewParseError("msgpack: map of %d entries in %d bytes of input", n, size)
	}

	rec := value.NewRecord()
	for i := 0; i < n; i++ {
		code, err := dec.PeekCode()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack map")
		}
		if !msgpcode.IsString(code) {
			return value.Value{}, errors.NewParseError("msgpack: expected a string key in mapping")
		}
		key, err := dec.DecodeString()
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "msgpack key")
		}
		if rec.Has(key) {
			return value.Value{}, errors.NewParseError("msgpack: duplicate key %q", key)
		}
		v, err := msgpackValue(dec, size, opts)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "at key %q", key)
		}
		rec.Set(key, v)
	}
	return value.Struct(rec), nil
}
