package markup

import (
	"math/big"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

func parseYAML(src []byte, opts Options) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return value.Value{}, errors.WrapParse(err, "invalid yaml")
	}
	// An empty document decodes to a zero node.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.None(), nil
	}
	return yamlValue(doc.Content[0], opts)
}

func yamlValue(node *yaml.Node, opts Options) (value.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return value.None(), nil
		}
		return yamlValue(node.Content[0], opts)
	case yaml.AliasNode:
		return yamlValue(node.Alias, opts)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := yamlValue(child, opts)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return opts.sequence(items), nil
	case yaml.MappingNode:
		rec := value.NewRecord()
		if err := yamlMapping(node, rec, opts); err != nil {
			return value.Value{}, err
		}
		return value.Struct(rec), nil
	case yaml.ScalarNode:
		return yamlScalar(node, opts)
	}
	return value.Value{}, errors.NewParseError("line %d: unexpected yaml node", node.Line)
}

// yamlMapping adds the pairs of node to rec. Merge keys (<<) contribute the
// fields of the merged mappings that are not set explicitly.
func yamlMapping(node *yaml.Node, rec *value.Record, opts Options) error {
	var merged []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Tag == "!!merge" {
			merged = append(merged, valNode)
			continue
		}
		if keyNode.Kind != yaml.ScalarNode || keyNode.ShortTag() != "!!str" {
			return errors.WithHint(
				errors.NewParseError("line %d: expected a string key in mapping", keyNode.Line),
				"quote the key to make it a string")
		}

		key := keyNode.Value
		if rec.Has(key) {
			return errors.NewParseError("line %d: duplicate key %q", keyNode.Line, key)
		}
		v, err := yamlValue(valNode, opts)
		if err != nil {
			return errors.Wrapf(err, "at key %q", key)
		}
		rec.Set(key, v)
	}

	for _, m := range merged {
		if err := yamlMerge(m, rec, opts); err != nil {
			return err
		}
	}
	return nil
}

func yamlMerge(node *yaml.Node, rec *value.Record, opts Options) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		extra := value.NewRecord()
		if err := yamlMapping(node, extra, opts); err != nil {
			return err
		}
		for _, f := range extra.Fields() {
			if !rec.Has(f.Key) {
				rec.Set(f.Key, f.Value)
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, child := range node.Content {
			if err := yamlMerge(child, rec, opts); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.NewParseError("line %d: merge key must reference a mapping", node.Line)
}

func yamlScalar(node *yaml.Node, opts Options) (value.Value, error) {
	tag := node.ShortTag()
	if strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!") {
		// Custom tags are dropped and the scalar is resolved as if untagged.
		plain := *node
		plain.Tag = ""
		plain.Style &^= yaml.TaggedStyle
		return yamlScalar(&plain, opts)
	}

	switch tag {
	case "!!null":
		return value.None(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return value.Value{}, errors.WrapParse(err, "yaml boolean")
		}
		return value.Bool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err == nil {
			return fitInt(n, opts.IntSize), nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return fitUint(u, opts.IntSize), nil
		}
		if n, ok := new(big.Int).SetString(node.Value, 0); ok {
			return fitBig(n, opts.IntSize)
		}
		return value.Value{}, errors.NewParseError("line %d: integer %s does not fit in any supported width", node.Line, node.Value)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return value.Value{}, errors.WrapParse(err, "yaml float")
		}
		return fitFloat(f, opts.FloatSize), nil
	}
	// Strings, timestamps, binary and custom tags keep their source text.
	return value.String(node.Value), nil
}
