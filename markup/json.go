package markup

import (
	"encoding/json"

	"github.com/buger/jsonparser"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

func parseJSON(src []byte, opts Options) (value.Value, error) {
	// jsonparser walks objects in document order but is lenient about
	// syntax, so the document is validated up front.
	if !json.Valid(src) {
		var probe interface{}
		if err := json.Unmarshal(src, &probe); err != nil {
			return value.Value{}, errors.WrapParse(err, "invalid json")
		}
		return value.Value{}, errors.NewParseError("invalid json")
	}

	data, dataType, _, err := jsonparser.Get(src)
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "invalid json")
	}
	return jsonValue(data, dataType, opts)
}

func jsonValue(data []byte, dataType jsonparser.ValueType, opts Options) (value.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return value.None(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "json boolean")
		}
		return value.Bool(b), nil
	case jsonparser.Number:
		return parseNumber(string(data), opts)
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return value.Value{}, errors.WrapParse(err, "json string")
		}
		return value.String(s), nil
	case jsonparser.Array:
		return jsonArray(data, opts)
	case jsonparser.Object:
		return jsonObject(data, opts)
	}
	return value.Value{}, errors.NewParseError("unexpected json value %q", string(data))
}

func jsonArray(data []byte, opts Options) (value.Value, error) {
	items := []value.Value{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(elem []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = errors.WrapParse(err, "json array")
			return
		}
		v, err := jsonValue(elem, dataType, opts)
		if err != nil {
			firstErr = err
			return
		}
		items = append(items, v)
	})
	if firstErr != nil {
		return value.Value{}, firstErr
	}
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "json array")
	}
	return opts.sequence(items), nil
}

func jsonObject(data []byte, opts Options) (value.Value, error) {
	rec := value.NewRecord()
	err := jsonparser.ObjectEach(data, func(rawKey []byte, elem []byte, dataType jsonparser.ValueType, _ int) error {
		key, err := jsonparser.ParseString(rawKey)
		if err != nil {
			return errors.WrapParse(err, "json key")
		}
		if rec.Has(key) {
			return errors.NewParseError("duplicate key %q", key)
		}
		v, err := jsonValue(elem, dataType, opts)
		if err != nil {
			return errors.Wrapf(err, "at key %q", key)
		}
		rec.Set(key, v)
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrParse) {
			return value.Value{}, err
		}
		return value.Value{}, errors.WrapParse(err, "json object")
	}
	return value.Struct(rec), nil
}
