// Package codegen turns parsed values into declarations and hands them to a
// language backend.
//
// The entry points (GenerateStruct, GenerateEnumFromKeys, ...) do all the
// language-neutral work: unifying sibling values, inferring one shape tree,
// binding literals to it and resolving options into plain declarations. A
// Generator then only renders those declarations as source text.
package codegen

import (
	"github.com/teranos/markgen/shape"
)

// Generator renders declarations in one target language.
// Each target language (Rust, Go) implements this interface.
type Generator interface {
	// Language returns the language name (e.g., "rust", "go")
	Language() string

	// FileExtension returns the file extension without the dot (e.g., "rs")
	FileExtension() string

	// CheckTypeName reports whether name can be used as a type name.
	CheckTypeName(name string) error

	// GenerateFile renders a complete output file. It fails with a naming
	// error for keys the language cannot express as identifiers.
	GenerateFile(f *File) (string, error)
}

// File is the output of one generation call.
type File struct {
	// Source is the path the declarations were generated from, printed in
	// the file header.
	Source string
	Items  []Item
}

// Item is a top-level declaration: *Struct or *Enum.
type Item interface {
	item()
}

// Struct declares the record types of a shape tree and, optionally, data
// bound to them.
//
// With Data set, the data constant holds one value of the root type and is
// attached to it together with the source path constant. With Rows set, the
// data constant is a free-standing list of root-type values and the root
// type may be any shape.
type Struct struct {
	Tree    *shape.Tree
	Derives []string
	Serde   SerdeSupport

	SourcePathConst string
	SourcePath      string

	DataConst string
	Data      *shape.Literal
	Rows      []shape.Literal
}

// IsTable reports whether the data constant is a list of rows.
func (s *Struct) IsTable() bool { return s.Rows != nil }

// Variant is one case of an enum.
type Variant struct {
	Name string
	// Comment is attached to the variant, e.g. "From data/a.yaml".
	Comment string
}

// Enum declares a closed set of variants with optional per-variant data.
type Enum struct {
	Name     string
	Derives  []string
	Serde    SerdeSupport
	Variants []Variant

	SourcePathConst string
	SourcePath      string

	ImplDefault bool
	ImplDisplay bool
	ImplFromStr bool

	AllVariantsConst string

	// Values holds one row per variant, in variant order. Its DataConst is
	// the name of the values constant.
	Values     *Struct
	GetValueFn string

	Files *FileTable
}

// FileTable is the per-variant file data of an enum built from file names.
type FileTable struct {
	FileOptions

	// Paths are the listed paths, in variant order.
	Paths []string
	// IncludePaths are Paths relative to Options.IncludeBase.
	IncludePaths []string
	// Contents holds each file's bytes when strings or bytes are requested.
	Contents [][]byte
}

func (*Struct) item() {}
func (*Enum) item()   {}
