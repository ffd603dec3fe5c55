// Package markup decodes markup documents into the generic value model.
//
// Every decoder keeps mapping keys in document order and applies the same
// numeric policy (see Options), so a document produces the same value tree
// whichever format it is written in.
package markup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
	"github.com/teranos/markgen/value"
)

// Format names a supported markup format.
type Format string

const (
	FormatAuto    Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatRON     Format = "ron"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatRON, FormatMsgpack}

var extensions = map[string]Format{
	".json":    FormatJSON,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".toml":    FormatTOML,
	".ron":     FormatRON,
	".msgpack": FormatMsgpack,
	".mpk":     FormatMsgpack,
}

// ParseFormat converts a format name. The empty string is FormatAuto.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == FormatAuto {
		return f, nil
	}
	if f == "yml" {
		return FormatYAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.NewUnsupportedError("unknown format %q", name)
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	err := errors.NewUnsupportedError("file extension %q of %s not recognized", ext, path)
	return "", errors.WithHint(err, "set the job's format explicitly")
}

// Parse decodes src as the given format. FormatAuto is not accepted here
// because there is no path to detect it from.
func Parse(src []byte, format Format, opts Options) (value.Value, error) {
	opts = opts.normalize()
	if err := opts.Validate(); err != nil {
		return value.Value{}, err
	}

	switch format {
	case FormatJSON:
		return parseJSON(src, opts)
	case FormatYAML:
		return parseYAML(src, opts)
	case FormatTOML:
		return parseTOML(src, opts)
	case FormatRON:
		return parseRON(src, opts)
	case FormatMsgpack:
		return parseMsgpack(src, opts)
	case FormatAuto:
		return value.Value{}, errors.NewUnsupportedError("format must be known to parse a source without a path")
	}
	return value.Value{}, errors.NewUnsupportedError("unknown format %q", string(format))
}

// ParseFile reads and decodes path. With FormatAuto the format is detected
// from the extension. I/O errors are returned unmarked.
func ParseFile(path string, format Format, opts Options) (value.Value, error) {
	if format == FormatAuto {
		detected, err := FormatFromPath(path)
		if err != nil {
			return value.Value{}, err
		}
		format = detected
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "failed to read %s", path)
	}

	v, err := Parse(src, format, opts)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "failed to parse %s", path)
	}

	logger.ComponentLogger("markup").Debugw("Parsed source",
		logger.FieldSource, path,
		logger.FieldFormat, string(format),
		logger.FieldKind, v.Kind().String())
	return v, nil
}
