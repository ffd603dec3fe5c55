package codegen

import (
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/markup"
)

// SerdeSupport selects which serialization capabilities generated types get.
type SerdeSupport int

const (
	SerdeNo SerdeSupport = iota
	SerdeYes
	SerdeSerialize
	SerdeDeserialize
)

// ParseSerde converts a config value ("no", "yes", "serialize",
// "deserialize") to a SerdeSupport.
func ParseSerde(s string) (SerdeSupport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no", "false":
		return SerdeNo, nil
	case "yes", "true":
		return SerdeYes, nil
	case "serialize":
		return SerdeSerialize, nil
	case "deserialize":
		return SerdeDeserialize, nil
	}
	return SerdeNo, errors.NewUnsupportedError("unknown serde setting %q", s)
}

func (s SerdeSupport) String() string {
	switch s {
	case SerdeYes:
		return "yes"
	case SerdeSerialize:
		return "serialize"
	case SerdeDeserialize:
		return "deserialize"
	}
	return "no"
}

// Serialize reports whether generated types can be serialized.
func (s SerdeSupport) Serialize() bool { return s == SerdeYes || s == SerdeSerialize }

// Deserialize reports whether generated types can be deserialized.
func (s SerdeSupport) Deserialize() bool { return s == SerdeYes || s == SerdeDeserialize }

// StructOptions controls struct declarations.
type StructOptions struct {
	// Derives is applied to the root struct and every nested struct.
	Derives []string
	// DataConst names the constant holding the parsed value. Empty disables it.
	DataConst string
}

// EnumOptions controls enum declarations. Empty names disable the item.
type EnumOptions struct {
	Derives []string

	ImplDefault bool // default is the first variant
	ImplDisplay bool // prints the variant name
	ImplFromStr bool // parses an exact variant name

	AllVariantsConst string
	AllValuesConst   string
	GetValueFn       string

	// ValuesStructName names the values type. Empty means "{Enum}__Value".
	ValuesStructName string
	ValuesStruct     StructOptions
}

// FileOptions controls the items of an enum generated from file names.
// Empty names disable the item.
type FileOptions struct {
	PathsConst string
	GetPathFn  string

	StringsConst string
	GetStringFn  string

	BytesConst string
	GetBytesFn string
}

// Options is the full set of generation settings for one call.
type Options struct {
	// SourcePathConst names the constant holding the source path. Empty
	// disables it.
	SourcePathConst string
	Serde           SerdeSupport

	// Parse is the numeric policy used when a generation call reads files.
	Parse markup.Options
	// Format of files read by the directory entry points. FormatAuto
	// detects it per file.
	Format markup.Format

	Structs StructOptions
	Enums   EnumOptions
	Files   FileOptions

	// IncludeBase is the directory that compiled-in file paths are made
	// relative to, normally the destination directory. Empty keeps the
	// paths as listed.
	IncludeBase string

	// PathBase is the directory that recorded paths of directory sources
	// (the source path constant, file path constants and variant comments)
	// are made relative to. Empty keeps the paths as listed.
	PathBase string
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SourcePathConst: "SOURCE_PATH",
		Serde:           SerdeNo,
		Parse:           markup.DefaultOptions(),
		Structs: StructOptions{
			Derives:   []string{"Debug"},
			DataConst: "DATA",
		},
		Enums: EnumOptions{
			Derives:          []string{"Debug", "Clone", "Copy", "PartialEq", "Eq", "Hash"},
			ImplDefault:      true,
			ImplDisplay:      true,
			ImplFromStr:      true,
			AllVariantsConst: "ALL",
			AllValuesConst:   "VALUES",
			GetValueFn:       "get",
			ValuesStruct: StructOptions{
				Derives: []string{"Debug"},
			},
		},
		Files: FileOptions{
			PathsConst: "FILE_PATHS",
			GetPathFn:  "path",
		},
	}
}

// SerdeOptions returns DefaultOptions with full serde support.
func SerdeOptions() Options {
	o := DefaultOptions()
	o.Serde = SerdeYes
	return o
}

// MinimalOptions disables every derive and auxiliary item.
func MinimalOptions() Options {
	return Options{
		Parse: markup.DefaultOptions(),
	}
}

// valuesStructName resolves the name of the values type of an enum.
func (o EnumOptions) valuesStructName(enum string) string {
	if o.ValuesStructName != "" {
		return o.ValuesStructName
	}
	return enum + "__Value"
}

// deriveList returns derives extended with the serde traits selected by
// serde. When requireDebug is set, Debug is appended if missing. The input
// slice is never modified.
func deriveList(derives []string, serde SerdeSupport, requireDebug bool) []string {
	out := make([]string, 0, len(derives)+3)
	out = append(out, derives...)
	if serde.Serialize() {
		out = appendMissing(out, "serde::Serialize")
	}
	if serde.Deserialize() {
		out = appendMissing(out, "serde::Deserialize")
	}
	if requireDebug {
		out = appendMissing(out, "Debug")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendMissing(list []string, name string) []string {
	for _, have := range list {
		if have == name {
			return list
		}
	}
	return append(list, name)
}
