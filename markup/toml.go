package markup

import (
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

// tomlOrder records the position at which every dotted key path first
// appears in the document.
type tomlOrder map[string]int

func parseTOML(src []byte, opts Options) (value.Value, error) {
	var raw map[string]interface{}
	meta, err := toml.Decode(string(src), &raw)
	if err != nil {
		return value.Value{}, errors.WrapParse(err, "invalid toml")
	}

	order := make(tomlOrder)
	for i, key := range meta.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := order[path]; !seen {
			order[path] = i
		}
	}
	return tomlTable(raw, nil, order, opts)
}

// tomlTable converts a decoded table. Keys keep document order; keys the
// metadata does not know about (some inline table forms) follow in sorted
// order so output stays deterministic.
func tomlTable(table map[string]interface{}, path []string, order tomlOrder, opts Options) (value.Value, error) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	position := func(k string) (int, bool) {
		p, ok := order[strings.Join(append(append([]string{}, path...), k), "\x00")]
		return p, ok
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, oki := position(keys[i])
		pj, okj := position(keys[j])
		switch {
		case oki && okj:
			return pi < pj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})

	rec := value.NewRecord()
	for _, k := range keys {
		v, err := tomlValue(table[k], append(append([]string{}, path...), k), order, opts)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "at key %q", k)
		}
		rec.Set(k, v)
	}
	return value.Struct(rec), nil
}

func tomlValue(raw interface{}, path []string, order tomlOrder, opts Options) (value.Value, error) {
	switch x := raw.(type) {
	case bool:
		return value.Bool(x), nil
	case int64:
		return fitInt(x, opts.IntSize), nil
	case float64:
		return fitFloat(x, opts.FloatSize), nil
	case string:
		return value.String(x), nil
	case time.Time:
		return value.String(tomlDatetime(x)), nil
	case map[string]interface{}:
		return tomlTable(x, path, order, opts)
	case []map[string]interface{}:
		items := make([]value.Value, 0, len(x))
		for _, table := range x {
			v, err := tomlTable(table, path, order, opts)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return opts.sequence(items), nil
	case []interface{}:
		items := make([]value.Value, 0, len(x))
		for _, elem := range x {
			v, err := tomlValue(elem, path, order, opts)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return opts.sequence(items), nil
	}
	return value.Value{}, errors.NewParseError("unsupported toml value of type %T", raw)
}

// tomlDatetime renders a datetime the way it is written in TOML, keeping
// local dates and times free of a zone.
func tomlDatetime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}
